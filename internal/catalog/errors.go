package catalog

import "errors"

// ErrNotFound is returned by operations that require an existing record,
// such as updating the embedding of a specific identifier. Read paths
// that tolerate absence return (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// ValidationError signals malformed input. It is raised before any
// storage is touched, so a save that returns one has no side effects.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
