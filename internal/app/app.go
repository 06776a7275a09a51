package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messaging_backend/internal/auth"
	"messaging_backend/internal/config"
	"messaging_backend/internal/database"
	"messaging_backend/internal/email"
	"messaging_backend/internal/handlers"
	"messaging_backend/internal/logger"
	"messaging_backend/internal/middleware"
	"messaging_backend/internal/routes"
	"messaging_backend/internal/services"
	"messaging_backend/internal/validator"
	"messaging_backend/internal/workers"
	"messaging_backend/pkg/apperrors"
	"messaging_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// Run starts the server and blocks until SIGINT/SIGTERM.
func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(!cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(ctx, cfg.Database.DSN, cfg.Server.Env)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	logger.Info("Database connected")

	if err := database.Migrate(ctx, gormDB); err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.RefreshTTL())
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	emailProvider, err := newEmailProvider(cfg)
	if err != nil {
		return err
	}

	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(ctx)

	container := services.NewServiceContainer(
		services.NewRepositories(),
		tokens,
		emailProvider,
		wsManager,
		services.AuthServiceConfig{
			APIURL:        cfg.Server.APIURL,
			ResetTokenTTL: services.DefaultResetTokenTTL,
		},
	)

	if err := seedSuperAdmin(ctx, gormDB, container.UserService, cfg); err != nil {
		return fmt.Errorf("failed to seed super admin: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	workers.NewPeriodicWorker("rate-limit-cleanup", cfg.RateLimit.Window, func(context.Context) (int, error) {
		return limiter.Cleanup(), nil
	}).Start(ctx)

	ginRouter := SetupRouter(cfg, gormDB, container, wsManager, limiter)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server startup error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// SetupRouter builds the gin engine with the global middleware chain and the route table.
func SetupRouter(
	cfg *config.Config,
	db *gorm.DB,
	container *services.ServiceContainer,
	wsManager *ws.WebSocketManager,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appHandlers := initializeHandlers(container)
	gate := middleware.NewAuthGate(container.Tokens)

	var wsHandler *ws.WebSocketHandler
	if wsManager != nil {
		wsHandler = ws.NewWebSocketHandler(wsManager, cfg.Server.CORSOrigins)
	}

	opts := routes.Options{
		Gate:       gate,
		EnableDocs: !cfg.IsProduction(),
	}
	if limiter != nil {
		opts.AuthLimiter = limiter.Middleware()
	}

	ginRouter := initializeGinRouter(cfg, db)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, opts)
	return ginRouter
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:    handlers.NewAuthHandler(baseHandler, container.AuthService),
		UserHandler:    handlers.NewUserHandler(baseHandler, container.UserService),
		MessageHandler: handlers.NewMessageHandler(baseHandler, container.MessageService),
		HealthHandler:  handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// newEmailProvider returns the SMTP relay when mail is enabled, otherwise a provider that only logs.
func newEmailProvider(cfg *config.Config) (email.Provider, error) {
	if !cfg.Email.Enabled {
		logger.Warn("Email delivery disabled; verification and reset links are written to the log")
		return email.LogProvider{}, nil
	}

	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("email templates: %w", err)
	}

	smtpCfg := email.DefaultConfig()
	smtpCfg.Host = cfg.Email.SMTPHost
	smtpCfg.Port = cfg.Email.SMTPPort
	smtpCfg.Username = cfg.Email.SMTPUsername
	smtpCfg.Password = cfg.Email.SMTPPassword
	smtpCfg.FromEmail = cfg.Email.FromEmail
	smtpCfg.FromName = cfg.Email.FromName
	smtpCfg.ResetTokenTTL = services.DefaultResetTokenTTL

	logger.Info("SMTP email provider configured", "host", smtpCfg.Host, "port", smtpCfg.Port)
	return email.NewSMTPProvider(smtpCfg, templates), nil
}

// seedSuperAdmin creates the configured super admin when nobody holds that role yet.
func seedSuperAdmin(ctx context.Context, db *gorm.DB, users services.UserService, cfg *config.Config) error {
	sa := cfg.SuperAdmin
	if sa.Email == "" || sa.Password == "" {
		logger.Warn("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD is not set. Skipping super admin seeding.")
		return nil
	}
	username := sa.Username
	if username == "" {
		username = "superadmin"
	}

	var created bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = users.EnsureSuperAdmin(ctx, tx, username, sa.Email, sa.Password)
		return err
	})
	if err != nil {
		return err
	}

	if created {
		logger.Info("Super admin created", "username", username)
	} else {
		logger.Info("Super admin already exists. Skipping creation.")
	}
	return nil
}
