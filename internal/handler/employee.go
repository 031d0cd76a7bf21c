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

type EmployeeHandler struct {
	Users     repository.UserRepository
	Duty      repository.DutyRepository
	Locations repository.LocationRepository
	Auth      *service.AuthService
	Settings  *service.SettingsService
}

func (h EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/owner/employees", h.list)
	r.Post("/owner/employees", h.create)
	r.Get("/owner/employees/{employeeID}", h.get)
	r.Put("/owner/employees/{employeeID}", h.update)
	r.Delete("/owner/employees/{employeeID}", h.delete)
	r.Get("/owner/employees/{employeeID}/history", h.history)
}

type createEmployeeRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "name and username are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	owner, err := h.Users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	email := service.ExpandUsername(req.Username, owner.OwnedDomain, settings.DefaultDomain)

	hash, err := h.Auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	employee, err := h.Users.Create(r.Context(), repository.CreateUserParams{
		OwnerID:      &user.ID,
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		Role:         domain.RoleEmployee,
		PasswordHash: &hash,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, employeeResponse(*employee))
}

func (h EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employee, ok := h.lookup(w, r, user.ID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, employeeResponse(*employee))
}

func (h EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employees, err := h.Users.ListEmployees(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(employees))
	for _, e := range employees {
		out = append(out, employeeResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateEmployeeRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

func (h EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employee, ok := h.lookup(w, r, user.ID)
	if !ok {
		return
	}
	var req updateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}
		hash, err := h.Auth.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := h.Users.UpdatePassword(r.Context(), employee.ID, hash); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	updated, err := h.Users.UpdateProfile(r.Context(), employee.ID, repository.UpdateUserParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, employeeResponse(*updated))
}

// delete soft-deletes the employee; their issued tokens stop working on the
// next request because auth re-checks the account still exists.
func (h EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employee, ok := h.lookup(w, r, user.ID)
	if !ok {
		return
	}
	if err := h.Users.Delete(r.Context(), employee.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// history returns one day of duty toggles plus the GPS trail.
func (h EmployeeHandler) history(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	employee, ok := h.lookup(w, r, user.ID)
	if !ok {
		return
	}
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)")
			return
		}
		day = parsed
	}
	logs, err := h.Duty.ListDay(r.Context(), employee.ID, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	trail, err := h.Locations.Trail(r.Context(), employee.ID, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dutyLogs := make([]map[string]any, 0, len(logs))
	for _, l := range logs {
		dutyLogs = append(dutyLogs, map[string]any{
			"status":    l.Status,
			"latitude":  floatOrNil(l.Latitude),
			"longitude": floatOrNil(l.Longitude),
			"loggedAt":  l.LoggedAt,
		})
	}
	points := make([]map[string]any, 0, len(trail))
	for _, p := range trail {
		points = append(points, map[string]any{
			"latitude":   p.Latitude,
			"longitude":  p.Longitude,
			"recordedAt": p.RecordedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     day.Format("2006-01-02"),
		"dutyLogs": dutyLogs,
		"trail":    points,
	})
}

func (h EmployeeHandler) lookup(w http.ResponseWriter, r *http.Request, ownerID int64) (*domain.User, bool) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id")
		return nil, false
	}
	employee, err := h.Users.GetEmployeeForOwner(r.Context(), ownerID, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "employee not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return employee, true
}

func employeeResponse(u domain.User) map[string]any {
	resp := map[string]any{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"phone":    u.Phone,
		"isOnDuty": u.IsOnDuty,
	}
	if u.LastLatitude != nil && u.LastLongitude != nil {
		resp["lastLocation"] = map[string]any{
			"latitude":  *u.LastLatitude,
			"longitude": *u.LastLongitude,
		}
		if u.LastLocationUpdate != nil {
			resp["lastLocation"].(map[string]any)["updatedAt"] = *u.LastLocationUpdate
		}
	}
	return resp
}
