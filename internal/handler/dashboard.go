package handler

import (
	"net/http"
	"time"

	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	Repo   repository.DashboardRepository
	Routes repository.RouteRepository
	Users  repository.UserRepository
}

func (h DashboardHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Get("/owner/dashboard", h.ownerSummary)
}

func (h DashboardHandler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/employee/dashboard", h.employeeSummary)
}

func (h DashboardHandler) ownerSummary(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	summary, err := h.Repo.OwnerSummary(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"shopCount":        summary.ShopCount,
		"employeeCount":    summary.EmployeeCount,
		"onDutyCount":      summary.OnDutyCount,
		"routeCount":       summary.RouteCount,
		"totalDue":         summary.TotalDue,
		"todayCollected":   summary.TodayCollected,
		"todayCollections": summary.TodayCollections,
	})
}

// employeeSummary combines today's collection totals, duty state, and the
// routes scheduled for the current weekday.
func (h DashboardHandler) employeeSummary(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	me, err := h.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	summary, err := h.Repo.EmployeeSummary(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	routes, err := h.Routes.ResolveToday(r.Context(), user.ID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isOnDuty":         me.IsOnDuty,
		"todayCollected":   summary.TodayCollected,
		"todayCollections": summary.TodayCollections,
		"todayRoutes":      routesResponse(routes),
	})
}
