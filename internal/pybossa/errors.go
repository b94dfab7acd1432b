package pybossa

import (
	"errors"
	"net/http"
)

var (
	// ErrBadExportURL indicates the caller-supplied export URL does not
	// match the expected .../project/<name>/tasks... shape.
	ErrBadExportURL = errors.New("export url does not match project tasks shape")
	// ErrUpstream indicates the upstream API returned an error status or an
	// unreadable body.
	ErrUpstream = errors.New("upstream api request failed")
	// ErrBadProjectInfo indicates the project-info response did not carry a
	// parseable question configuration.
	ErrBadProjectInfo = errors.New("project info lacks question configuration")
)

// MapHTTPStatus maps upstream client errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrBadExportURL) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUpstream) || errors.Is(err, ErrBadProjectInfo) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
