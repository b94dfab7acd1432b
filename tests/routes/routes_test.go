package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"consensor/pkg/routes"
)

func TestRegister(t *testing.T) {
	var hit string
	record := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			hit = name
		}
	}

	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/exports",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/", Handler: record("list")},
		},
		Children: []routes.Group{
			{
				Prefix: "/models",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/", Handler: record("models")},
				},
			},
		},
	})

	t.Run("group route", func(t *testing.T) {
		hit = ""
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/exports/", nil))
		if hit != "list" {
			t.Errorf("hit = %q, want list", hit)
		}
	})

	t.Run("child prefixes compose", func(t *testing.T) {
		hit = ""
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/exports/models/", nil))
		if hit != "models" {
			t.Errorf("hit = %q, want models", hit)
		}
	})

	t.Run("method is part of the pattern", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("POST", "/exports/", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", w.Code)
		}
	})
}
