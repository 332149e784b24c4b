package mutate

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// BuiltInFieldError is returned when an operation reserved for custom fields
// targets a built-in field.
type BuiltInFieldError struct {
	FieldID string
}

func (e BuiltInFieldError) Error() string {
	return fmt.Sprintf("field %s is built in and cannot be deleted", e.FieldID)
}

var ErrEmptyName = errors.New("name is required")

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
