package models

import "errors"

// Domain error kinds. Callers wrap them with context and test with errors.Is.
var (
	// ErrNotFound marks a symbol absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter marks a caller-supplied option outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData marks a computation with no usable common data.
	ErrInsufficientData = errors.New("insufficient data")
)

// ErrorKind returns a short label for err, used for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	default:
		return "internal"
	}
}
