package normalize

import "fmt"

// ValidationError reports malformed or incomplete field input. It is always
// recoverable: the submitter fixes the payload and resubmits. Nothing is
// persisted when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
