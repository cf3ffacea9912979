package tracker

import (
	"regexp"
	"strings"
	"unicode"

	"k6gen/internal/models"
)

// placeholderPattern matches {param} segments in a path template.
var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Placeholders returns the named path placeholders in declaration order.
func Placeholders(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Binding links a producing operation's response field to the state key the
// generated script stores it under.
type Binding struct {
	ProducerIndex int
	OperationID   string
	Resource      string
	Field         string
	StateKey      string
}

// Table holds candidate bindings in document order. It is a static model:
// nothing is executed, matching is purely over declared names.
type Table struct {
	bindings []Binding
}

// Build scans operations for creation semantics (POST on a collection-style
// path, i.e. no trailing placeholder segment) and records a binding for
// every identifier-like response field: an exact `id`, or a field ending in
// Id/ID whose prefix matches the resource derived from the path's last
// static segment.
func Build(operations []models.Operation) *Table {
	t := &Table{}
	for i, op := range operations {
		if op.Method != "POST" || trailingPlaceholder(op.Path) {
			continue
		}
		resource := lastStaticSegment(op.Path)
		if resource == "" {
			continue
		}

		seen := make(map[string]bool)
		for _, field := range op.ResponseFields {
			key, ok := stateKey(field, resource)
			if !ok || seen[key] {
				continue
			}
			seen[key] = true
			t.bindings = append(t.bindings, Binding{
				ProducerIndex: i,
				OperationID:   op.OperationID,
				Resource:      resource,
				Field:         field,
				StateKey:      key,
			})
		}
	}
	return t
}

// Bindings returns all recorded bindings in document order.
func (t *Table) Bindings() []Binding {
	return t.bindings
}

// ProducedBy returns the bindings recorded for the operation at the given
// document index.
func (t *Table) ProducedBy(index int) []Binding {
	var produced []Binding
	for _, b := range t.bindings {
		if b.ProducerIndex == index {
			produced = append(produced, b)
		}
	}
	return produced
}

// Resolve matches a consumer's path placeholder against bindings recorded
// for structurally preceding producers. Exact field or state-key matches are
// considered before case-insensitive suffix matches against the state key;
// within a pass, document order breaks ties. A false return marks the
// placeholder unbound, which the emitter degrades to a literal fallback.
func (t *Table) Resolve(consumerIndex int, placeholder string) (Binding, bool) {
	for _, b := range t.bindings {
		if b.ProducerIndex >= consumerIndex {
			break
		}
		if b.Field == placeholder || b.StateKey == placeholder {
			return b, true
		}
	}

	lower := strings.ToLower(placeholder)
	for _, b := range t.bindings {
		if b.ProducerIndex >= consumerIndex {
			break
		}
		if strings.HasSuffix(lower, strings.ToLower(b.StateKey)) {
			return b, true
		}
	}

	return Binding{}, false
}

// stateKey derives the shared-state key a response field is tracked under.
// A bare `id` becomes `<resource>Id`; an already resource-prefixed field is
// kept verbatim.
func stateKey(field, resource string) (string, bool) {
	if field == "id" {
		return camelIdentifier(singular(resource)) + "Id", true
	}
	if len(field) > 2 && strings.HasSuffix(strings.ToLower(field), "id") {
		prefix := field[:len(field)-2]
		if strings.EqualFold(prefix, resource) || strings.EqualFold(prefix, singular(resource)) {
			return field, true
		}
	}
	return "", false
}

func trailingPlaceholder(path string) bool {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	last := segments[len(segments)-1]
	return strings.HasPrefix(last, "{") && strings.HasSuffix(last, "}")
}

func lastStaticSegment(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		return seg
	}
	return ""
}

// singular trims a plural collection segment so `/pets` matches `petId`.
func singular(segment string) string {
	if len(segment) > 1 && strings.HasSuffix(segment, "s") && !strings.HasSuffix(segment, "ss") {
		return segment[:len(segment)-1]
	}
	return segment
}

// camelIdentifier turns a path segment into a valid JS identifier,
// e.g. "order-item" -> "orderItem".
func camelIdentifier(segment string) string {
	var b strings.Builder
	upperNext := false
	for _, r := range segment {
		switch {
		case r == '-' || r == '_' || r == '.':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
