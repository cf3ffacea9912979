package models

// Operation represents one method+path entry from the OpenAPI document,
// captured in declaration order at load time and immutable afterwards.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Tags        []string

	// RequiresAuth folds the operation-level security requirement with the
	// document-level default. An explicit empty security list on the
	// operation opts it out.
	RequiresAuth bool

	Parameters []Parameter

	// ResponseFields holds the top-level field names of the first declared
	// JSON success response (schema properties in declaration order,
	// followed by example keys).
	ResponseFields []string

	// BodyProperties holds the flattened request-body schema properties,
	// populated only for bodied methods.
	BodyProperties []BodyProperty
}

// Parameter is a declared path or query parameter.
type Parameter struct {
	Name     string
	In       string
	Required bool
}

// BodyProperty is a request-body schema property flattened for
// deterministic body synthesis. Default and Enum are pre-rendered as
// JavaScript literals; empty means the schema declares none.
type BodyProperty struct {
	Name     string
	Type     string
	Format   string
	Default  string
	Enum     string
	Required bool
}

// HasBody reports whether the operation carries a synthesizable request
// body.
func (o Operation) HasBody() bool {
	return len(o.BodyProperties) > 0
}
