package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	userGroup := app.Group("/api/user")
	userGroup.Post("/register", cfg.Users.Register)
	userGroup.Post("/login", cfg.Users.Login)
	userGroup.Post("/refresh", cfg.Users.Refresh)
	userGroup.Post("/adminLogin", cfg.Admin.Login)
	userGroup.Get("/profile", cfg.AuthMiddleware.Handle, auth.RequireUser(), cfg.Users.Profile)

	adminGroup := app.Group("/api/admin", cfg.AuthMiddleware.HandleAdmin, auth.RequireAdmin())
	adminGroup.Get("/session", cfg.Admin.Session)
}
