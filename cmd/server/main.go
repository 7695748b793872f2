package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"intake-backend/internal/archive"
	"intake-backend/internal/auth"
	"intake-backend/internal/cache"
	"intake-backend/internal/config"
	"intake-backend/internal/database"
	"intake-backend/internal/db"
	"intake-backend/internal/handlers"
	"intake-backend/internal/health"
	h "intake-backend/internal/http"
	"intake-backend/internal/middleware"
	"intake-backend/internal/monitoring"
	"intake-backend/internal/repositories"
	"intake-backend/internal/services"
)

func main() {
	cfg := config.Load()

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Run migrations
	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis cache (optional - degrades gracefully)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable, continuing without it: %v", err)
	}

	// Auth
	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	recordRepo := repositories.NewRecordRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	recordService := services.NewRecordService(recordRepo)
	intakeService := services.NewIntakeService(recordRepo)
	printerService := services.NewPrinterService(cfg.Printer.BaseURL)
	labelService := services.NewLabelService(recordService)
	uploader := archive.NewUploader(cfg)

	// Reap abandoned mixed-box sessions in the background
	intakeService.StartSessionReaper(context.Background())

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)
	recordHandler := handlers.NewRecordHandler(recordService)
	printHandler := handlers.NewPrintHandler(recordService, printerService, labelService, uploader)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(authHandler, intakeHandler, recordHandler, printHandler, healthHandler, authMiddleware)

	// Warehouse floor dashboard on its own port
	monitoringServer := monitoring.NewMonitoringServer(pool, cfg.Monitoring.Port, intakeService.OpenSessionCount)
	go monitoringServer.Start()

	// Wrap with panic recovery, metrics, and CORS
	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
