package archive

import (
	"errors"
	"net/http"
)

var (
	// ErrUnexpectedFile indicates an archive whose members violate the
	// upstream naming contract: wrong member count, no info-only member,
	// or mismatched base names between the paired members.
	ErrUnexpectedFile = errors.New("unexpected file in archive")
	// ErrCorruptArchive indicates a response body that is not a readable ZIP.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// MapHTTPStatus maps archive errors to HTTP status codes. Malformed upstream
// archives surface as bad-gateway since the remote API broke its contract.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnexpectedFile) || errors.Is(err, ErrCorruptArchive) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
