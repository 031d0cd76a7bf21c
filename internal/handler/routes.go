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
	"github.com/go-chi/chi/v5"
)

type RouteHandler struct {
	Repo  repository.RouteRepository
	Users repository.UserRepository
}

func (h RouteHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/owner/routes", h.list)
	r.Post("/owner/routes", h.create)
	r.Put("/owner/routes/{routeID}", h.update)
	r.Delete("/owner/routes/{routeID}", h.delete)
}

func (h RouteHandler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/employee/routes", h.today)
}

type routePayload struct {
	Name         string   `json:"name"`
	DaysOfWeek   []string `json:"daysOfWeek"`
	ShopIDs      []int64  `json:"shopIds"`
	AssignedToID *int64   `json:"assignedToId"`
}

func (h RouteHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req routePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	days, err := domain.ParseWeekdaySet(req.DaysOfWeek)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.checkAssignee(r, user.ID, req.AssignedToID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route, err := h.Repo.Create(r.Context(), user.ID, repository.CreateRouteInput{
		Name:         req.Name,
		Days:         days,
		ShopIDs:      req.ShopIDs,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, routeResponse(*route))
}

func (h RouteHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	routeID, err := strconv.ParseInt(chi.URLParam(r, "routeID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	var req routePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	days, err := domain.ParseWeekdaySet(req.DaysOfWeek)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.checkAssignee(r, user.ID, req.AssignedToID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route, err := h.Repo.Update(r.Context(), user.ID, routeID, repository.UpdateRouteInput{
		Name:         req.Name,
		Days:         days,
		ShopIDs:      req.ShopIDs,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, routeResponse(*route))
}

// checkAssignee rejects assignment to an employee outside the owner's tenant.
func (h RouteHandler) checkAssignee(r *http.Request, ownerID int64, assignedToID *int64) error {
	if assignedToID == nil {
		return nil
	}
	if _, err := h.Users.GetEmployeeForOwner(r.Context(), ownerID, *assignedToID); err != nil {
		return errors.New("assigned employee not found")
	}
	return nil
}

func (h RouteHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	routeID, err := strconv.ParseInt(chi.URLParam(r, "routeID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	if err := h.Repo.Delete(r.Context(), user.ID, routeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h RouteHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	routes, err := h.Repo.ListForOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, routesResponse(routes))
}

// today resolves the employee's own assigned routes scheduled for the
// current weekday. Nothing scheduled is an empty list, not an error.
func (h RouteHandler) today(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	routes, err := h.Repo.ResolveToday(r.Context(), user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": routesResponse(routes)})
}

func routesResponse(routes []domain.Route) []map[string]any {
	out := make([]map[string]any, 0, len(routes))
	for _, rt := range routes {
		out = append(out, routeResponse(rt))
	}
	return out
}

func routeResponse(rt domain.Route) map[string]any {
	stops := make([]map[string]any, 0, len(rt.Stops))
	for _, stop := range rt.Stops {
		entry := map[string]any{
			"order":  stop.Order,
			"shopId": stop.ShopID,
		}
		if stop.Shop != nil {
			entry["shop"] = shopResponse(*stop.Shop)
		}
		stops = append(stops, entry)
	}
	resp := map[string]any{
		"id":         rt.ID,
		"name":       rt.Name,
		"daysOfWeek": rt.Days.Tokens(),
		"stops":      stops,
	}
	if rt.AssignedToID != nil {
		resp["assignedToId"] = *rt.AssignedToID
	}
	return resp
}
