package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fieldtrack-backend/internal/config"
	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/handler"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server"
	"fieldtrack-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	shopRepo := repository.ShopRepository{DB: pg}
	collectionRepo := repository.CollectionRepository{DB: pg}
	dutyRepo := repository.DutyRepository{DB: pg}
	locationRepo := repository.LocationRepository{DB: pg}
	routeRepo := repository.RouteRepository{DB: pg}
	importRepo := repository.ImportRepository{DB: pg}
	broadcastRepo := repository.BroadcastRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	auditRepo := repository.AuditLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	if cfg.SeedAdminPassword != "" {
		if err := userRepo.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.Error("failed to seed admin account", "err", err)
			os.Exit(1)
		}
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Audit: auditRepo, Logger: logger}
	settingsSvc := &service.SettingsService{Repo: settingsRepo}
	if err := settingsSvc.Init(ctx, cfg.DefaultDomain); err != nil {
		logger.Error("failed to init global settings", "err", err)
		os.Exit(1)
	}
	importSvc := service.ImportService{Imports: importRepo, Audit: auditRepo, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	dutyHandler := handler.DutyHandler{Repo: dutyRepo}
	trackingHandler := handler.TrackingHandler{Repo: locationRepo}
	collectionHandler := handler.CollectionHandler{Repo: collectionRepo, Users: userRepo}
	routeHandler := handler.RouteHandler{Repo: routeRepo, Users: userRepo}
	shopHandler := handler.ShopHandler{Repo: shopRepo}
	importHandler := handler.ImportHandler{Service: importSvc}
	employeeHandler := handler.EmployeeHandler{
		Users:     userRepo,
		Duty:      dutyRepo,
		Locations: locationRepo,
		Auth:      &authSvc,
		Settings:  settingsSvc,
	}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo, Routes: routeRepo, Users: userRepo}
	livemapHandler := handler.LiveMapHandler{Users: userRepo, Shops: shopRepo}
	reportHandler := handler.ReportHandler{Collections: collectionRepo}
	broadcastHandler := handler.BroadcastHandler{Repo: broadcastRepo, Audit: auditRepo}
	adminHandler := handler.AdminHandler{Users: userRepo, Dashboard: dashboardRepo, Audit: auditRepo, Auth: &authSvc}
	settingsHandler := handler.SettingsHandler{Service: settingsSvc}

	router := server.NewRouter(cfg, logger, userRepo,
		healthHandler, authHandler, dutyHandler, trackingHandler, collectionHandler,
		routeHandler, shopHandler, importHandler, employeeHandler, dashboardHandler,
		livemapHandler, reportHandler, broadcastHandler, adminHandler, settingsHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
