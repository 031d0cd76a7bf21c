package server

import (
	"net/http"
	"time"

	"fieldtrack-backend/internal/config"
	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	users PrincipalLookup,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	duty handler.DutyHandler,
	tracking handler.TrackingHandler,
	collections handler.CollectionHandler,
	routes handler.RouteHandler,
	shops handler.ShopHandler,
	imports handler.ImportHandler,
	employees handler.EmployeeHandler,
	dashboard handler.DashboardHandler,
	livemap handler.LiveMapHandler,
	reports handler.ReportHandler,
	broadcasts handler.BroadcastHandler,
	admin handler.AdminHandler,
	settings handler.SettingsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret, users))
		auth.RegisterProtectedRoutes(pr)
		tracking.RegisterRoutes(pr)
		broadcasts.RegisterRoutes(pr)

		// employee-level
		pr.Group(func(er chi.Router) {
			er.Use(RequireRole(domain.RoleEmployee))
			duty.RegisterRoutes(er)
			collections.RegisterRoutes(er)
			routes.RegisterEmployeeRoutes(er)
			dashboard.RegisterEmployeeRoutes(er)
		})
		// owner-level
		pr.Group(func(or chi.Router) {
			or.Use(RequireRole(domain.RoleOwner))
			shops.RegisterRoutes(or)
			routes.RegisterOwnerRoutes(or)
			imports.RegisterRoutes(or)
			employees.RegisterRoutes(or)
			dashboard.RegisterOwnerRoutes(or)
			livemap.RegisterRoutes(or)
			reports.RegisterRoutes(or)
		})
		// admin-level
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			admin.RegisterRoutes(ar)
			broadcasts.RegisterAdminRoutes(ar)
			settings.RegisterRoutes(ar)
		})
	})

	return r
}
