package exports

import (
	"errors"
	"net/http"

	"consensor/internal/consensus"
	"consensor/internal/pybossa"
	"consensor/pkg/archive"
	"consensor/pkg/scratch"
)

var (
	// ErrMissingExportURL indicates the pbapi query parameter was absent.
	ErrMissingExportURL = errors.New("missing pbapi query parameter")
	// ErrUnknownFormat indicates a format value other than csv or json.
	ErrUnknownFormat = errors.New("format must be csv or json")
)

// statusMappers are the per-package mappings of the packages the pipeline
// composes, consulted in pipeline order.
var statusMappers = []func(error) int{
	consensus.MapHTTPStatus,
	pybossa.MapHTTPStatus,
	archive.MapHTTPStatus,
	scratch.MapHTTPStatus,
}

// MapHTTPStatus maps pipeline errors to HTTP status codes. The pipeline's own
// argument errors are the caller's fault; everything else delegates to the
// composed packages, whose mappers own their sentinels.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingExportURL) || errors.Is(err, ErrUnknownFormat) {
		return http.StatusBadRequest
	}
	for _, mapper := range statusMappers {
		if status := mapper(err); status != http.StatusInternalServerError {
			return status
		}
	}
	return http.StatusInternalServerError
}
