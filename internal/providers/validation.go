package providers

import "fmt"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidateDiff rejects an empty diff. Callers are expected to skip the
// request instead of sending one.
func ValidateDiff(diff string) error {
	if len(diff) == 0 {
		return &ValidationError{Field: "diff", Message: "cannot be empty"}
	}
	return nil
}
