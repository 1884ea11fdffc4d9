package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListIssues handles GET /api/issues with an optional exact-status filter.
func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	items, err := h.svc.ListIssues(status)
	if err != nil {
		slog.Error("list issues failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []IssueListItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues": items,
		"total":  len(items),
	})
}

// GetIssue handles GET /api/issues/{key}.
func (h *Handler) GetIssue(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	detail, err := h.svc.GetIssue(key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get issue failed", slog.String("key", key), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Board handles GET /api/board, serving the raw board Markdown.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Board()
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("board not generated yet"))
		} else {
			slog.Error("board read failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Status handles GET /api/status, returning the last sync run.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Status()
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if run == nil {
		writeJSON(w, http.StatusOK, map[string]any{"last_run": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"last_run": run})
}

// TriggerSync handles POST /api/sync.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.TriggerSync(r.Context())
	if err != nil {
		slog.Error("triggered sync failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("sync failed: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
