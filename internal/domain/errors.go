package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrStructural    = errors.New("structural error")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)

// StructuralError reports a mandatory child element that is missing or
// malformed. It is fatal for the single entry or character being built.
type StructuralError struct {
	Element string // element being extracted, e.g. "k_ele"
	Field   string // missing or malformed child, e.g. "keb"
	Reason  string // optional detail
}

func (e *StructuralError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("structural: <%s>/<%s>: %s", e.Element, e.Field, e.Reason)
	}
	return fmt.Sprintf("structural: <%s> without <%s>", e.Element, e.Field)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// NewMissingError creates a StructuralError for an absent mandatory child.
func NewMissingError(element, field string) *StructuralError {
	return &StructuralError{Element: element, Field: field}
}

// NewMalformedError creates a StructuralError for a child whose content
// cannot be interpreted.
func NewMalformedError(element, field, reason string) *StructuralError {
	return &StructuralError{Element: element, Field: field, Reason: reason}
}
