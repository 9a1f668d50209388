package settle

import (
	"errors"

	"github.com/mmynk/eventsplit/internal/storage"
)

// ErrNotFound is returned for an unknown event, member or expense position.
// It is the storage sentinel, so errors.Is matches errors from either layer.
var ErrNotFound = storage.ErrNotFound

// ValidationError reports user input that was rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
