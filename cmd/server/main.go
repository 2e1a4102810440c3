package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmobiliaria/server/config"
	"inmobiliaria/server/internal/api"
	"inmobiliaria/server/internal/auth"
	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/geocoding"
	"inmobiliaria/server/internal/models"
	"inmobiliaria/server/internal/processor"
	"inmobiliaria/server/internal/queue"
	"inmobiliaria/server/internal/scheduler"
	"inmobiliaria/server/internal/telegram"
)

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid LOG_LEVEL %q, defaulting to info", level)
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// loadTelegramConfig returns the stored Telegram settings, falling back to
// the environment when nothing was saved from the back office yet.
func loadTelegramConfig(ctx context.Context, db *database.Database, cfg *config.Config) (*models.TelegramConfig, error) {
	stored, err := db.GetTelegramConfig(ctx)
	if err != nil || stored != nil {
		return stored, err
	}

	token := cfg.Notifications.TelegramBotToken
	chatID := cfg.Notifications.TelegramChatID
	return &models.TelegramConfig{
		IsEnabled: token != "" && chatID != "",
		BotToken:  token,
		ChatID:    chatID,
	}, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must not be empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Admin accounts
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(db, tokens, logger)
	if _, err := authService.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.WithError(err).Fatal("Failed to seed admin account")
	}

	// Lead notifications
	telegramService := telegram.NewService(logger)
	telegramConfig, err := loadTelegramConfig(ctx, db, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to load Telegram configuration")
	} else {
		telegramService.UpdateConfig(telegramConfig)
	}

	leadQueue := queue.NewLeadQueue(cfg.Notifications.QueueSize, logger)
	notifier := processor.NewNotifier(leadQueue, telegramService, db, cfg, logger)
	notifier.Start()
	leadQueue.Start()

	// Geocoding of listing locations
	cacheDir := cfg.Geocoding.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "inmobiliaria", "geocode_cache")
	}
	geocoder := geocoding.NewGeocoder(logger, geocoding.Options{
		Country:  cfg.Geocoding.Country,
		CacheDir: cacheDir,
	})
	geocodeScheduler := scheduler.NewScheduler(db, geocoder, cfg.Geocoding.Interval, logger)
	geocodeScheduler.Start()

	handler, err := api.NewHandler(db, api.Services{
		Auth:        authService,
		LeadQueue:   leadQueue,
		Telegram:    telegramService,
		GeocodeJobs: geocodeScheduler,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create API handler")
	}
	router := api.NewRouter(handler, tokens, cfg.Server.CORSOrigins, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	geocodeScheduler.Stop()
	notifier.Stop()
	leadQueue.Close()
	logger.Info("Server stopped")
}
