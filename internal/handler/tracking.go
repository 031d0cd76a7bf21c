package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

// TrackingHandler ingests GPS samples. Any authenticated principal may
// submit; in practice only employee devices do. Samples are recorded whether
// or not the reporter is on duty.
type TrackingHandler struct {
	Repo repository.LocationRepository
}

func (h TrackingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tracking", h.record)
}

func (h TrackingHandler) record(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Timestamp *string  `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	var at time.Time
	if req.Timestamp != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timestamp")
			return
		}
		at = parsed
	}
	if _, err := h.Repo.RecordSample(r.Context(), user.ID, *req.Latitude, *req.Longitude, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
