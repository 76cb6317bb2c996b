package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/credguard/internal/auth"
	"github.com/BradenHooton/credguard/internal/background"
	"github.com/BradenHooton/credguard/internal/config"
	"github.com/BradenHooton/credguard/internal/handlers"
	middlewareCustom "github.com/BradenHooton/credguard/internal/middleware"
	"github.com/BradenHooton/credguard/internal/routes"
	"github.com/BradenHooton/credguard/internal/services"
	pkghttp "github.com/BradenHooton/credguard/pkg/http"
	pkglogger "github.com/BradenHooton/credguard/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("db_driver", cfg.Database.Driver))

	// Open the store and apply migrations
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStores(startupCtx, &cfg.Database, logger)
	startupCancel()
	if err != nil {
		logger.Error("failed to initialize store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	// Login guard
	policy := services.GuardPolicy{
		MaxFailedAttempts:  cfg.Auth.MaxFailedAttempts,
		LockoutDuration:    cfg.Auth.LockoutDuration,
		MinAttemptInterval: cfg.Auth.MinAttemptInterval,
	}
	auditLogger := pkglogger.NewAuditLogger(logger)

	recorder := services.NewAttemptRecorder(st.accounts, policy, logger)
	gate := services.NewAttemptGate(st.accounts, recorder, policy, logger)
	auditor := services.NewLoginAuditor(st.events, logger, cfg.Audit.Async)
	guard := services.NewLoginGuard(gate, auditor, auditLogger, logger)
	accountService := services.NewAccountService(st.accounts, st.events, logger, auditLogger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(guard, accountService, tokenManager, handlers.AuthHandlerConfig{
		Timing:            timingDelay,
		IPConfig:          ipConfig,
		DiscloseLockState: cfg.Auth.DiscloseLockState,
		Logger:            logger,
	})

	// Setup router. chi's RealIP is not used: client IPs are resolved
	// per request against TRUSTED_PROXIES.
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authHandler, tokenManager, st.pinger, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Server.LoginRateLimitPerMinute,
		IPConfig:          ipConfig,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Optional login event retention
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	var cleanupManager *background.CleanupManager
	if cfg.Audit.Retention > 0 {
		cleanupManager = background.NewCleanupManager(st.pruner, logger, cfg.Audit.CleanupInterval, cfg.Audit.Retention)
		go cleanupManager.Start(cleanupCtx)
	}

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Pending async login events are flushed before the store closes
	auditor.Close()

	logger.Info("server stopped gracefully")
}
