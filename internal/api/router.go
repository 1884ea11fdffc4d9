package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Issues.
	r.Get("/issues", h.ListIssues)
	r.Get("/issues/{key}", h.GetIssue)

	// Search.
	r.Get("/search", h.Search)

	// Board.
	r.Get("/board", h.Board)

	// Sync control.
	r.Get("/status", h.Status)
	r.Post("/sync", h.TriggerSync)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
