package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/seekr/internal/engine"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *engine.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/search", h.Search)
	r.Post("/reindex", h.Reindex)
	r.Post("/embed", h.Embed)
	r.Get("/status", h.Status)
	r.Get("/documents", h.Documents)

	r.Get("/collections", h.ListCollections)
	r.Post("/collections", h.CreateCollection)
	r.Delete("/collections/{name}", h.DeleteCollection)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// HealthRoutes mounts the unauthenticated liveness and readiness probes.
// Readiness fails while the index store is unreachable. With check=integrity
// it also runs the store integrity check.
func HealthRoutes(r chi.Router, svc *engine.Service) {
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		if r.URL.Query().Get("check") == "integrity" {
			if err := svc.CheckIntegrity(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "corrupt"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
