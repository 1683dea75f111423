package domain

// ListFilter narrows list operations. A nil Draft selects both draft and
// published records.
type ListFilter struct {
	Draft *bool
}
