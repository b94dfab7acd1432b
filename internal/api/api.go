// Package api assembles the API module with the domain systems and route
// registration.
package api

import (
	"net/http"

	"consensor/internal/config"
	"consensor/internal/infrastructure"
	"consensor/pkg/middleware"
	"consensor/pkg/module"
)

// NewModule creates the API module with the export pipeline and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
