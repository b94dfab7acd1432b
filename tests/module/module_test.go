package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"consensor/pkg/module"
)

func echoPath() (http.HandlerFunc, *string) {
	var path string
	return func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}, &path
}

func TestModulePrefixStripping(t *testing.T) {
	mux := http.NewServeMux()
	handler, path := echoPath()
	mux.HandleFunc("GET /exports", handler)

	m := module.New("/api", mux)

	t.Run("nested path", func(t *testing.T) {
		w := httptest.NewRecorder()
		m.Serve(w, httptest.NewRequest("GET", "/api/exports", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if *path != "/exports" {
			t.Errorf("inner path = %q, want /exports", *path)
		}
	})

	t.Run("bare prefix maps to root", func(t *testing.T) {
		rootMux := http.NewServeMux()
		rootHandler, rootPath := echoPath()
		rootMux.HandleFunc("GET /{$}", rootHandler)
		root := module.New("/api", rootMux)

		w := httptest.NewRecorder()
		root.Serve(w, httptest.NewRequest("GET", "/api", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if *rootPath != "/" {
			t.Errorf("inner path = %q, want /", *rootPath)
		}
	})
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {})

	m := module.New("/api", mux)
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	w := httptest.NewRecorder()
	m.Serve(w, httptest.NewRequest("GET", "/api/", nil))
	if got := w.Header().Get("X-Module"); got != "api" {
		t.Errorf("X-Module = %q, middleware did not run", got)
	}
}

func TestModulePrefixValidation(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run("invalid "+prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	mux := http.NewServeMux()
	handler, path := echoPath()
	mux.HandleFunc("GET /exports", handler)

	router := module.NewRouter()
	router.Mount(module.New("/api", mux))

	var nativeHit bool
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		nativeHit = true
	})

	t.Run("module match", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/exports", nil))
		if w.Code != http.StatusOK || *path != "/exports" {
			t.Errorf("status = %d, path = %q", w.Code, *path)
		}
	})

	t.Run("trailing slash normalized", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/exports/", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("native fallback", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
		if !nativeHit {
			t.Error("native handler not hit")
		}
	})

	t.Run("unmatched path", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/nowhere", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}
