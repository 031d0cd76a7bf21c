package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type BroadcastHandler struct {
	Repo  repository.BroadcastRepository
	Audit repository.AuditLogRepository
}

func (h BroadcastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/broadcasts/latest", h.latest)
}

func (h BroadcastHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/admin/broadcasts", h.list)
	r.Post("/admin/broadcasts", h.create)
}

// latest feeds the client banner. No broadcast yet means an empty body, not
// an error.
func (h BroadcastHandler) latest(w http.ResponseWriter, r *http.Request) {
	b, err := h.Repo.Latest(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"broadcast": nil})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"broadcast": broadcastResponse(*b)})
}

type createBroadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h BroadcastHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createBroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Title == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "title and message are required")
		return
	}
	b, err := h.Repo.Create(r.Context(), req.Title, req.Message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_, _ = h.Audit.Create(r.Context(), repository.CreateAuditLogInput{
		Title:   "Broadcast published",
		Message: req.Title,
		Actor:   user.Email,
		Type:    domain.AuditBroadcast,
	})
	writeJSON(w, http.StatusCreated, broadcastResponse(*b))
}

func (h BroadcastHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	items, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, b := range items {
		out = append(out, broadcastResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func broadcastResponse(b domain.Broadcast) map[string]any {
	return map[string]any{
		"id":        b.ID,
		"title":     b.Title,
		"message":   b.Message,
		"isActive":  b.IsActive,
		"createdAt": b.CreatedAt,
	}
}
