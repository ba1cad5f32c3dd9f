package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	kioskapi "fdms-kiosk-backend/internal/api/http"
	"fdms-kiosk-backend/internal/config"
	"fdms-kiosk-backend/internal/jobs"
	"fdms-kiosk-backend/internal/logger"
	"fdms-kiosk-backend/internal/remote/httpapi"
	"fdms-kiosk-backend/internal/scheduler"
	"fdms-kiosk-backend/internal/security"
	"fdms-kiosk-backend/internal/service"
	"fdms-kiosk-backend/internal/session"
	"fdms-kiosk-backend/internal/workflow"
)

func main() {
	// Optional .env for local development; absence is not an error
	_ = godotenv.Load()

	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FDMS Kiosk Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Remote configuration", "base_url", cfg.Remote.BaseURL, "timeout", cfg.RemoteTimeout())

	// Initialize the session store
	var sessions session.Store
	switch cfg.Session.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Error("Failed to ping redis", "error", err)
			log.Fatalf("Failed to ping redis: %v", err)
		}
		logger.Info("Redis session store connected", "addr", cfg.Redis.Addr)
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL())
	default:
		logger.Info("Using in-memory session store")
		sessions = session.NewMemoryStore()
	}

	// Initialize the FDMS client; mutations carry the stored admin
	// credential when one is established
	client := httpapi.NewClient(cfg.Remote.BaseURL, cfg.RemoteTimeout(),
		httpapi.WithTokenSource(func(ctx context.Context) string {
			token, _ := sessions.Get(ctx, session.KeyAuthToken)
			return token
		}),
	)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AdminTokenExpiry())

	// Initialize Services
	adminSvc := service.NewAdminService(client, client, sessions)

	// Best-effort branding load; never blocks startup
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RemoteTimeout())
		defer cancel()
		adminSvc.LoadSettings(ctx)
	}()

	// Initialize the workflow session manager
	manager := workflow.NewManager(func() *workflow.Workflow {
		return workflow.New(client, httpapi.ReasonClient{Client: client}, sessions,
			workflow.WithSuccessExit(cfg.SuccessExit()))
	}, cfg.IdleSessionTTL())

	// Initialize maintenance jobs
	jobRunner := jobs.NewJobRunner(adminSvc, manager, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()

	// Set up HTTP server
	router := mux.NewRouter()
	kioskapi.RegisterRoutes(router, adminSvc, tokenManager, manager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Kiosk HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	cronScheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Kiosk backend stopped. Goodbye!")
}
