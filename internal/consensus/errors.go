package consensus

import (
	"errors"
	"net/http"
)

var (
	// ErrUnknownModel indicates a requested algorithm name that is not in
	// the registry.
	ErrUnknownModel = errors.New("unknown consensus model")
	// ErrUnknownQuestion indicates a question absent from the dataset.
	ErrUnknownQuestion = errors.New("question not present in dataset")
	// ErrNoAnnotations indicates a question with no usable annotations.
	ErrNoAnnotations = errors.New("no annotations for question")
)

// MapHTTPStatus maps consensus errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownModel) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
