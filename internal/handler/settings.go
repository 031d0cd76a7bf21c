package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	Service *service.SettingsService
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/settings", h.get)
	r.Put("/admin/settings", h.update)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(settings))
}

type updateSettingsRequest struct {
	DefaultDomain string `json:"defaultDomain"`
}

func (h SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	domainName := strings.ToLower(strings.TrimSpace(req.DefaultDomain))
	if domainName == "" || strings.Contains(domainName, "@") {
		writeError(w, http.StatusBadRequest, "invalid default domain")
		return
	}
	saved, err := h.Service.Save(r.Context(), domain.GlobalSettings{DefaultDomain: domainName})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(saved))
}

func settingsResponse(s domain.GlobalSettings) map[string]any {
	return map[string]any{
		"defaultDomain": s.DefaultDomain,
		"updatedAt":     s.UpdatedAt,
	}
}
