package errors

import "strings"

// Violation is a single field-level validation failure. Path locates the
// offending field, e.g. ["Items", "<itemID>", "Quantity"].
type Violation struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

func (v Violation) Field() string {
	return strings.Join(v.Path, ".")
}

// Invalid builds a validation error carrying the given violations as details.
func Invalid(message string, violations ...Violation) *Error {
	err := New(CodeValidation, message)
	if len(violations) > 0 {
		err.WithDetails(violations)
	}
	return err
}

// ViolationsOf returns the violations attached to a validation error, if any.
func ViolationsOf(err error) []Violation {
	typed := As(err)
	if typed == nil || typed.Code() != CodeValidation {
		return nil
	}
	violations, _ := typed.Details().([]Violation)
	return violations
}
