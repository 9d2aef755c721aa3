package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrReceiptNotFound is returned when no receipt exists for an ID
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrReceiptExists is returned when saving over an already stored receipt
	ErrReceiptExists = errors.New("receipt already exists")
)

// ValidationError reports a submitted field that cannot be accepted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
