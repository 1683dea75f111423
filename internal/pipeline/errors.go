package pipeline

import "github.com/rmarrand/sponsorhub-backend/internal/domain"

// ErrorSet accumulates field-level validation errors for one action run.
// Only the first error per field is kept, so later rules for an already
// flagged field are skipped by checking Has before running them. The
// domain.WildcardField slot collects errors with no single owning field.
type ErrorSet struct {
	byField map[string]string
	ordered []domain.FieldError
}

// NewErrorSet creates an empty error set.
func NewErrorSet() *ErrorSet {
	return &ErrorSet{byField: make(map[string]string)}
}

// Add records an error code for a field unless the field is already flagged.
func (s *ErrorSet) Add(field, code string) {
	if _, exists := s.byField[field]; exists {
		return
	}
	s.byField[field] = code
	s.ordered = append(s.ordered, domain.FieldError{Field: field, Code: code})
}

// State records an error for the field when the condition does not hold.
// Validation rules read as assertions: State(x > 0, "amount", "negative-amount").
func (s *ErrorSet) State(condition bool, field, code string) {
	if !condition {
		s.Add(field, code)
	}
}

// Has reports whether the field is already flagged.
func (s *ErrorSet) Has(field string) bool {
	_, ok := s.byField[field]
	return ok
}

// HasAny reports whether any field (including the wildcard) is flagged.
func (s *ErrorSet) HasAny() bool { return len(s.ordered) > 0 }

// All returns the recorded errors in insertion order.
func (s *ErrorSet) All() []domain.FieldError { return s.ordered }

// Map returns field → code, for JSON rendering.
func (s *ErrorSet) Map() map[string]string {
	out := make(map[string]string, len(s.byField))
	for f, c := range s.byField {
		out[f] = c
	}
	return out
}
