package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"fieldtrack-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	Users     repository.UserRepository
	Dashboard repository.DashboardRepository
	Audit     repository.AuditLogRepository
	Auth      *service.AuthService
}

func (h AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/owners", h.listOwners)
	r.Post("/admin/owners", h.createOwner)
	r.Get("/admin/owners/{ownerID}", h.getOwner)
	r.Put("/admin/owners/{ownerID}", h.updateOwner)
	r.Delete("/admin/owners/{ownerID}", h.deleteOwner)
	r.Post("/admin/masquerade/{userID}", h.masquerade)
	r.Get("/admin/audit-logs", h.auditLogs)
}

type createOwnerRequest struct {
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Password           string     `json:"password"`
	PlanType           string     `json:"planType"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry"`
	OwnedDomain        *string    `json:"ownedDomain"`
}

func (h AdminHandler) createOwner(w http.ResponseWriter, r *http.Request) {
	var req createOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	hash, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	owner, err := h.Users.Create(r.Context(), repository.CreateUserParams{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Role:               domain.RoleOwner,
		PasswordHash:       &hash,
		PlanType:           req.PlanType,
		SubscriptionStatus: req.SubscriptionStatus,
		SubscriptionExpiry: req.SubscriptionExpiry,
		OwnedDomain:        req.OwnedDomain,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ownerResponse(*owner))
}

func (h AdminHandler) listOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.Users.ListOwners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(owners))
	for _, o := range owners {
		out = append(out, ownerResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h AdminHandler) getOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.lookupOwner(w, r)
	if !ok {
		return
	}
	stats, err := h.Dashboard.TenantStats(r.Context(), owner.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := ownerResponse(*owner)
	resp["stats"] = map[string]any{
		"shopCount":     stats.ShopCount,
		"employeeCount": stats.EmployeeCount,
		"totalDue":      stats.TotalDue,
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateOwnerRequest struct {
	Name               *string    `json:"name"`
	Phone              *string    `json:"phone"`
	PlanType           *string    `json:"planType"`
	SubscriptionStatus *string    `json:"subscriptionStatus"`
	SubscriptionExpiry *time.Time `json:"subscriptionExpiry"`
	OwnedDomain        *string    `json:"ownedDomain"`
}

func (h AdminHandler) updateOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.lookupOwner(w, r)
	if !ok {
		return
	}
	var req updateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name != nil || req.Phone != nil {
		if _, err := h.Users.UpdateProfile(r.Context(), owner.ID, repository.UpdateUserParams{
			Name:  req.Name,
			Phone: req.Phone,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	updated, err := h.Users.UpdateSubscription(r.Context(), owner.ID, repository.UpdateSubscriptionParams{
		PlanType:           req.PlanType,
		SubscriptionStatus: req.SubscriptionStatus,
		SubscriptionExpiry: req.SubscriptionExpiry,
		OwnedDomain:        req.OwnedDomain,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ownerResponse(*updated))
}

// deleteOwner soft-deletes the owner and everything under the tenant.
func (h AdminHandler) deleteOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.lookupOwner(w, r)
	if !ok {
		return
	}
	if err := h.Users.Delete(r.Context(), owner.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// masquerade issues a session for another account. The service gates it to
// admins and writes the audit record.
func (h AdminHandler) masquerade(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	actor, err := h.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	res, err := h.Auth.IssueSessionFor(r.Context(), *actor, targetID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusForbidden, "forbidden")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeAuthResponse(w, res)
}

func (h AdminHandler) auditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	logs, err := h.Audit.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		entry := map[string]any{
			"id":       l.ID,
			"title":    l.Title,
			"message":  l.Message,
			"actor":    l.Actor,
			"type":     string(l.Type),
			"loggedAt": l.LoggedAt,
		}
		if l.OwnerID != nil {
			entry["ownerId"] = *l.OwnerID
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h AdminHandler) lookupOwner(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "ownerID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner id")
		return nil, false
	}
	owner, err := h.Users.GetByID(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "owner not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if owner.Role != domain.RoleOwner {
		writeError(w, http.StatusNotFound, "owner not found")
		return nil, false
	}
	return owner, true
}

func ownerResponse(u domain.User) map[string]any {
	resp := map[string]any{
		"id":                 u.ID,
		"name":               u.Name,
		"email":              u.Email,
		"phone":              u.Phone,
		"planType":           u.PlanType,
		"subscriptionStatus": u.SubscriptionStatus,
		"createdAt":          u.CreatedAt,
	}
	if u.SubscriptionExpiry != nil {
		resp["subscriptionExpiry"] = *u.SubscriptionExpiry
	}
	if u.OwnedDomain != nil {
		resp["ownedDomain"] = *u.OwnedDomain
	}
	return resp
}
