package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopit-dev/shopit-backend/config"
	"github.com/shopit-dev/shopit-backend/internal/app/controller"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/internal/app/service"
	"github.com/shopit-dev/shopit-backend/internal/db"
	apperrors "github.com/shopit-dev/shopit-backend/internal/errors"
	"github.com/shopit-dev/shopit-backend/internal/middleware"
	"github.com/shopit-dev/shopit-backend/internal/router"
	"github.com/shopit-dev/shopit-backend/internal/scheduler"
	"github.com/shopit-dev/shopit-backend/internal/storage"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/mailer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	// Error responses include stack detail only in development
	apperrors.SetMode(cfg.Server.Environment)

	logger.Info("Starting ShopIT Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	// Initialize services
	notifier := mailer.NewSMTPNotifier(cfg.SMTP)
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.SessionLifetime,
	)
	passwordResetService := service.NewPasswordResetService(
		userRepo,
		notifier,
		cfg.JWT.Secret,
		cfg.JWT.SessionLifetime,
	)
	productService := service.NewProductService(productRepo)

	// Initialize storage
	avatarStorage := storage.NewAvatarStorage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService, cfg)
	productController := controller.NewProductController(productService, cfg.Catalog.PageSize)
	uploadController := controller.NewUploadController(avatarStorage, authService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.JWT.Secret)

	// Start the reset token cleanup scheduler
	resetScheduler := scheduler.NewResetTokenScheduler(userRepo)
	if err := resetScheduler.Start(); err != nil {
		logger.Fatal("Failed to start reset token scheduler", err)
	}
	defer resetScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
