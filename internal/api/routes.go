package api

import (
	"net/http"

	"consensor/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Exports.Handler().Routes(),
	)
}
