package parser

import (
	"errors"
	"testing"
)

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile("nonexistent.json")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestParseFileMalformed(t *testing.T) {
	p, err := ParseFile("../../tests/malformed.yaml")
	if err == nil {
		// NewDocument defers some parsing; the model build must fail instead.
		_, _, err = p.Operations()
	}
	if err == nil {
		t.Fatal("Expected error for malformed document")
	}
	if !errors.Is(err, ErrMalformedSpec) {
		t.Errorf("Expected ErrMalformedSpec, got: %v", err)
	}
}

func TestServerURLMalformed(t *testing.T) {
	p, err := ParseFile("../../tests/malformed.yaml")
	if err != nil {
		return
	}

	if _, err := p.ServerURL(); !errors.Is(err, ErrMalformedSpec) {
		t.Errorf("Expected ErrMalformedSpec, got: %v", err)
	}
}

func TestServerURL(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	url, err := p.ServerURL()
	if err != nil {
		t.Fatalf("Failed to get server URL: %v", err)
	}
	if url != "https://api.franchise.example.com/v1" {
		t.Errorf("Unexpected server URL: %s", url)
	}
}

func TestServerURLDefault(t *testing.T) {
	p, err := ParseFile("../../tests/minimal.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	url, err := p.ServerURL()
	if err != nil {
		t.Fatalf("Failed to get server URL: %v", err)
	}
	if url != "http://localhost" {
		t.Errorf("Expected localhost fallback, got %s", url)
	}
}

func TestOperationsDocumentOrder(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	expected := []struct {
		method string
		path   string
	}{
		{"POST", "/franchise"},
		{"GET", "/franchise"},
		{"GET", "/franchise/{franchiseId}"},
		{"DELETE", "/franchise/{franchiseId}"},
		{"POST", "/store"},
		{"GET", "/store/{storeId}"},
		{"GET", "/reports/{unknownId}"},
		{"GET", "/status"},
		{"GET", "/admin/users"},
	}

	if len(operations) != len(expected) {
		t.Fatalf("Expected %d operations, got %d", len(expected), len(operations))
	}
	for i, want := range expected {
		if operations[i].Method != want.method || operations[i].Path != want.path {
			t.Errorf("Operation %d: expected %s %s, got %s %s",
				i, want.method, want.path, operations[i].Method, operations[i].Path)
		}
	}
}

func TestOperationsSecurityFlags(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	byID := make(map[string]bool)
	for _, op := range operations {
		byID[op.OperationID] = op.RequiresAuth
	}

	// Document-level security is the default.
	if !byID["createFranchise"] {
		t.Error("createFranchise should inherit the document-level security requirement")
	}
	// security: [] on the operation is an explicit opt-out.
	if byID["getStatus"] {
		t.Error("getStatus declares an empty security list and must not require auth")
	}
	// Excluded-at-emission operations still carry their flag at load time.
	if !byID["listAdminUsers"] {
		t.Error("listAdminUsers should inherit the document-level security requirement")
	}
}

func TestOperationsNoDocumentSecurity(t *testing.T) {
	p, err := ParseFile("../../tests/pet-store.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	for _, op := range operations {
		if op.RequiresAuth {
			t.Errorf("%s: no security requirement anywhere, RequiresAuth should be false", op.OperationID)
		}
	}
}

func TestOperationsResponseFields(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	fields := make(map[string][]string)
	for _, op := range operations {
		fields[op.OperationID] = op.ResponseFields
	}

	// Schema properties, declaration order.
	got := fields["createFranchise"]
	if len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("createFranchise response fields: expected [id name], got %v", got)
	}

	// Raw example object, keys sorted.
	got = fields["createStore"]
	if len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("createStore response fields: expected [id name], got %v", got)
	}

	if len(fields["listFranchises"]) != 0 {
		t.Errorf("listFranchises declares no JSON response, got fields %v", fields["listFranchises"])
	}
}

func TestOperationsParameters(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	for _, op := range operations {
		if op.OperationID != "getFranchise" {
			continue
		}
		if len(op.Parameters) != 1 {
			t.Fatalf("Expected 1 parameter, got %d", len(op.Parameters))
		}
		param := op.Parameters[0]
		if param.Name != "franchiseId" || param.In != "path" || !param.Required {
			t.Errorf("Unexpected parameter: %+v", param)
		}
		return
	}
	t.Fatal("getFranchise not found")
}

func TestOperationsBodyProperties(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	found := false
	for _, op := range operations {
		if op.OperationID != "createFranchise" {
			continue
		}
		found = true
		if len(op.BodyProperties) != 3 {
			t.Fatalf("Expected 3 body properties, got %d", len(op.BodyProperties))
		}
		name := op.BodyProperties[0]
		if name.Name != "name" || name.Type != "string" || !name.Required {
			t.Errorf("Unexpected first body property: %+v", name)
		}
		region := op.BodyProperties[1]
		if region.Default != "'emea'" {
			t.Errorf("Expected region default 'emea' as a JS literal, got %q", region.Default)
		}
		maxStores := op.BodyProperties[2]
		if maxStores.Type != "integer" || maxStores.Required {
			t.Errorf("Unexpected maxStores property: %+v", maxStores)
		}
	}
	if !found {
		t.Fatal("createFranchise not found")
	}
}

func TestOperationsFallbackOperationID(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	operations, _, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	found := false
	for _, op := range operations {
		if op.Method == "DELETE" && op.Path == "/franchise/{franchiseId}" {
			found = true
			if op.OperationID != "delete__franchise_franchiseId" {
				t.Errorf("Unexpected fallback operation id: %s", op.OperationID)
			}
		}
	}
	if !found {
		t.Error("DELETE /franchise/{franchiseId} not found")
	}
}

func TestOperationsWarnings(t *testing.T) {
	p, err := ParseFile("../../tests/franchise-api.json")
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}

	_, warnings, err := p.Operations()
	if err != nil {
		t.Fatalf("Failed to get operations: %v", err)
	}

	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning for the empty /legacy entry, got %d: %v", len(warnings), warnings)
	}
}
