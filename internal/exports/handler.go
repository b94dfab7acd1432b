package exports

import (
	"io"
	"log/slog"
	"net/http"

	"consensor/internal/config"
	"consensor/internal/pybossa"
	"consensor/pkg/handlers"
	"consensor/pkg/routes"
)

// Query parameter names for the export endpoint.
const (
	ParamExportURL = "pbapi"
	ParamFormat    = "format"
	ParamModel     = "model"
)

// mirroredHeaders is the allow-list of upstream response headers copied onto
// the outbound response.
var mirroredHeaders = []string{"Connection"}

// Handler provides the HTTP endpoint for export requests.
type Handler struct {
	sys      System
	defaults config.ConsensusConfig
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given system, defaults, and logger.
func NewHandler(sys System, defaults config.ConsensusConfig, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		defaults: defaults,
		logger:   logger.With("handler", "exports"),
	}
}

// Routes returns the route group definition for the export endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/", Handler: h.Export},
		},
	}
}

// Export parses and defaults the query arguments, runs the pipeline, and
// streams the resulting bundle. The caller's cookies pass through to the
// upstream API as authentication.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req := Request{
		ExportURL: r.URL.Query().Get(ParamExportURL),
		Format:    queryDefault(r, ParamFormat, h.defaults.DefaultFormat),
		Model:     queryDefault(r, ParamModel, h.defaults.DefaultModel),
		Auth:      pybossa.Auth{Cookies: r.Cookies()},
	}

	result, err := h.sys.Run(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	for _, name := range mirroredHeaders {
		if v := result.Upstream.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result.Bundle); err != nil {
		h.logger.Error("bundle streaming failed", "error", err)
	}
}

func queryDefault(r *http.Request, param, fallback string) string {
	if v := r.URL.Query().Get(param); v != "" {
		return v
	}
	return fallback
}
