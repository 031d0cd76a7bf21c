package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type CollectionHandler struct {
	Repo  repository.CollectionRepository
	Users repository.UserRepository
}

func (h CollectionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/employee/collections", h.create)
	r.Get("/employee/collections", h.listOwn)
}

func (h CollectionHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ownerID, err := resolveTenantID(r.Context(), *user, h.Users)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		ShopID      int64    `json:"shopId"`
		Amount      float64  `json:"amount"`
		PaymentMode string   `json:"paymentMode"`
		Remarks     string   `json:"remarks"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ShopID == 0 {
		writeError(w, http.StatusBadRequest, "shopId is required")
		return
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	mode := domain.PaymentMode(req.PaymentMode)
	if !domain.ValidPaymentMode(mode) {
		writeError(w, http.StatusBadRequest, "invalid paymentMode")
		return
	}
	var coords *domain.LatLng
	if req.Latitude != nil && req.Longitude != nil {
		coords = &domain.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	c, err := h.Repo.Create(r.Context(), repository.CreateCollectionInput{
		OwnerID:     ownerID,
		ShopID:      req.ShopID,
		EmployeeID:  user.ID,
		Amount:      req.Amount,
		PaymentMode: mode,
		Remarks:     req.Remarks,
		Coords:      coords,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"collection": collectionResponse(*c),
	})
}

func (h CollectionHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Repo.ListForEmployee(r.Context(), user.ID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, collectionResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func collectionResponse(c domain.Collection) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"shopId":      c.ShopID,
		"employeeId":  c.EmployeeID,
		"amount":      c.Amount,
		"paymentMode": string(c.PaymentMode),
		"remarks":     c.Remarks,
		"latitude":    floatOrNil(c.Latitude),
		"longitude":   floatOrNil(c.Longitude),
		"collectedAt": c.CollectedAt.Format(time.RFC3339),
	}
}
