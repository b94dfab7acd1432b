package scratch

import (
	"errors"
	"net/http"
)

var (
	// ErrEmptyName indicates an empty file name was provided.
	ErrEmptyName = errors.New("file name must not be empty")
	// ErrInvalidName indicates the file name escapes the scratch directory.
	ErrInvalidName = errors.New("file name contains invalid path segment")
)

// MapHTTPStatus maps scratch errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEmptyName) || errors.Is(err, ErrInvalidName) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
