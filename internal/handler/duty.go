package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type DutyHandler struct {
	Repo repository.DutyRepository
}

func (h DutyHandler) RegisterRoutes(r chi.Router) {
	r.Post("/duty", h.toggle)
}

func (h DutyHandler) toggle(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		IsOnDuty  *bool    `json:"isOnDuty"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.IsOnDuty == nil {
		writeError(w, http.StatusBadRequest, "isOnDuty is required")
		return
	}
	var coords *domain.LatLng
	if req.Latitude != nil && req.Longitude != nil {
		coords = &domain.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	if _, err := h.Repo.Toggle(r.Context(), user.ID, *req.IsOnDuty, coords); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"isOnDuty": *req.IsOnDuty,
	})
}
