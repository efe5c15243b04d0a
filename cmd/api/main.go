package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camarpe/camarpe-backend/internal/api"
	"github.com/camarpe/camarpe-backend/internal/api/handlers"
	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/cron"
	"github.com/camarpe/camarpe-backend/internal/db"
	"github.com/camarpe/camarpe-backend/internal/email"
	"github.com/camarpe/camarpe-backend/internal/logger"
	"github.com/camarpe/camarpe-backend/internal/notification"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/seed"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/socket"
	"github.com/camarpe/camarpe-backend/internal/vault"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// ============================================
	// Load environment and configuration
	// ============================================
	envErr := godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// ============================================
	// PostgreSQL (pgxpool + sqlx)
	// ============================================
	pg, err := db.NewPostgresDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()

	repos := repository.NewRepositories(pg.Pool, pg.SQL)

	// ============================================
	// Redis (optional)
	// ============================================
	var cache service.Cache
	cacheStatus := "disabled"
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(cfg.RedisURL, log)
		if err != nil {
			log.Warn("failed to connect to Redis, continuing without cache", zap.Error(err))
		} else {
			defer redisDB.Close()
			cache = redisDB
			cacheStatus = "connected"
		}
	}

	// ============================================
	// Credential vault (optional)
	// ============================================
	cipher, err := vault.New(cfg.EncryptionKey, cfg.EncryptionSalt)
	if err != nil {
		log.Warn("credential vault disabled", zap.Error(err))
		cipher = nil
	}

	// ============================================
	// Email (optional)
	// ============================================
	var mailer service.Mailer
	emailStatus := "disabled"
	if cfg.SMTPHost != "" {
		mailer = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		}, log)
		emailStatus = "configured"
	} else {
		log.Info("email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// WebSocket hub and notifications
	// ============================================
	hub := socket.NewHub(log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	var origins []string
	if cfg.IsProduction() {
		origins = []string{cfg.FrontendURL}
	}
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret, origins...)
	notifier := notification.NewService(socket.NewBroadcaster(hub), log)

	// ============================================
	// Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		Notifier: notifier,
		Mailer:   mailer,
		Cache:    cache,
		Vault:    cipher,
		Log:      log,
	})

	if !cfg.IsProduction() {
		if err := seed.SeedData(ctx, services.User, log); err != nil {
			log.Warn("seed failed", zap.Error(err))
		}
	}

	// ============================================
	// Scheduler
	// ============================================
	scheduler := cron.NewScheduler(services.DailyAlerts, time.Local, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// ============================================
	// HTTP
	// ============================================
	router := api.NewRouter(api.RouterDeps{
		Handlers:       handlers.NewHandlers(services, cfg, log),
		Auth:           services.Auth,
		AllowedOrigins: origins,
		WebSocket:      wsHandler.HandleWebSocket,
		Health: func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":     "healthy",
				"timestamp":  time.Now(),
				"cache":      cacheStatus,
				"email":      emailStatus,
				"ws_clients": hub.ConnectedClients(),
			})
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
