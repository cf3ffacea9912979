package filter

import (
	"strings"

	"k6gen/internal/models"
)

// DefaultExcludeSegment is the administrative path segment dropped from
// emission when no override is configured.
const DefaultExcludeSegment = "/admin"

// Policy decides which operations are emitted and which receive the
// injected authorization header. The two decisions are independent.
type Policy struct {
	excludeSegment string
}

// New returns a policy excluding paths containing the given segment,
// defaulting to /admin when empty.
func New(excludeSegment string) Policy {
	if excludeSegment == "" {
		excludeSegment = DefaultExcludeSegment
	}
	return Policy{excludeSegment: excludeSegment}
}

// ExcludeSegment returns the configured administrative segment.
func (p Policy) ExcludeSegment() string {
	return p.excludeSegment
}

// Excluded reports whether the operation is dropped from emission entirely.
// Exclusion is an emission-time decision: the dependency tracker still sees
// the operation's bindings.
func (p Policy) Excluded(op models.Operation) bool {
	return strings.Contains(op.Path, p.excludeSegment)
}

// InjectAuth reports whether the emitted request carries the authorization
// header. Excluded operations are never emitted, so the question is moot
// for them.
func (p Policy) InjectAuth(op models.Operation) bool {
	return !p.Excluded(op) && op.RequiresAuth
}

// Included pairs a surviving operation with its index in the source
// document, which the dependency table is keyed by.
type Included struct {
	models.Operation
	SourceIndex int
	InjectAuth  bool
}

// Apply returns the operations surviving the exclusion rule, in document
// order.
func (p Policy) Apply(operations []models.Operation) []Included {
	var included []Included
	for i, op := range operations {
		if p.Excluded(op) {
			continue
		}
		included = append(included, Included{
			Operation:   op,
			SourceIndex: i,
			InjectAuth:  p.InjectAuth(op),
		})
	}
	return included
}
