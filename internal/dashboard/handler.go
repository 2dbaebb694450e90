// Package dashboard serves the built portfolio SPA.
package dashboard

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Handler returns an http.Handler that serves the built SPA from dir.
// For any request that doesn't match a static file and isn't an API route,
// it serves index.html so the client-side router can take over. If dir does
// not exist (dev builds without a bundled frontend), every request 404s.
func Handler(dir string) http.Handler {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "dashboard not available", http.StatusNotFound)
		})
	}

	fileServer := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Don't serve SPA for API routes, health endpoints, or metrics
		if strings.HasPrefix(r.URL.Path, "/api/") ||
			r.URL.Path == "/healthz" ||
			r.URL.Path == "/readyz" ||
			r.URL.Path == "/metrics" {
			http.NotFound(w, r)
			return
		}

		// Try to serve the file directly
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(path, "/")))); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		// File not found -- serve index.html for client-side routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
