package emitter

import (
	"fmt"
	"strings"

	"k6gen/internal/models"
)

// writeBody renders a deterministic JS object literal for the request body.
// Precedence: schema default, first enum value, canned value by type and
// format. Id-like string properties read from the shared state object first
// so created resources are reused downstream.
func writeBody(b *strings.Builder, varName string, properties []models.BodyProperty) {
	fmt.Fprintf(b, "    const %s = {\n", varName)
	for _, p := range properties {
		fmt.Fprintf(b, "        %s: %s,\n", p.Name, propertyValue(p))
	}
	b.WriteString("    };\n")
}

func propertyValue(p models.BodyProperty) string {
	if p.Default != "" {
		return p.Default
	}
	if p.Enum != "" {
		return p.Enum
	}

	switch p.Type {
	case "integer", "number":
		return "0"
	case "boolean":
		return "false"
	case "array":
		return "[]"
	case "object":
		return "{}"
	}

	if v, ok := formatValue(p.Format); ok {
		return v
	}
	if strings.Contains(strings.ToLower(p.Name), "id") {
		return fmt.Sprintf("trackedValues.%s || '%s_value'", p.Name, p.Name)
	}
	return fmt.Sprintf("'%s_value'", p.Name)
}

// formatValue returns a fixed canned value for well-known string formats.
// Values are constants, never derived from the clock, so emission stays
// deterministic.
func formatValue(format string) (string, bool) {
	switch format {
	case "date":
		return "'2024-01-01'", true
	case "date-time":
		return "'2024-01-01T00:00:00Z'", true
	case "email":
		return "'test@example.com'", true
	case "uri":
		return "'https://example.com'", true
	case "uuid":
		return "'123e4567-e89b-12d3-a456-426614174000'", true
	}
	return "", false
}
