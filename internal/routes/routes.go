package routes

import (
	"github.com/BradenHooton/credguard/internal/auth"
	"github.com/BradenHooton/credguard/internal/handlers"
	"github.com/BradenHooton/credguard/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
	db handlers.Pinger,
	rateLimitConfig middleware.RateLimitConfig,
) {
	router.Get("/health", handlers.Health(db))

	// Public routes share one per-IP limiter
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)
	})

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager))
		r.Get("/login-history", authHandler.LoginHistory)
	})
}
