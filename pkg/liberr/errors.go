package liberr

import (
	"errors"
	"fmt"
)

// ErrUnauthorizedScope means the caller's identity could not be resolved
// to a visibility scope. Anything depending on the scope must abort with
// this error instead of falling back to an unscoped read.
var ErrUnauthorizedScope = errors.New("unauthorized scope")

// InvalidFieldValueError reports a categorical field whose supplied value
// is outside the allowed set. Raised before any write is attempted.
type InvalidFieldValueError struct {
	Field string
	Value string
}

func (e *InvalidFieldValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
}

func InvalidFieldValue(field, value string) error {
	return &InvalidFieldValueError{Field: field, Value: value}
}

// IsInvalidFieldValue reports whether err is (or wraps) an
// InvalidFieldValueError.
func IsInvalidFieldValue(err error) bool {
	var target *InvalidFieldValueError
	return errors.As(err, &target)
}
