package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/service"
)

// AppDependencies collects everything needed to assemble the HTTP app.
type AppDependencies struct {
	Name         string
	Version      string
	Auth         *service.AuthService
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Timeout      time.Duration
	AllowOrigins string
	Probes       map[string]handlers.Pinger
}

// NewApp builds a fiber app with the global middleware chain and every route.
func NewApp(deps AppDependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               deps.Name,
		DisableStartupMessage: true,
	})

	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:       deps.Logger,
		Metrics:      deps.Metrics,
		Timeout:      deps.Timeout,
		AllowOrigins: deps.AllowOrigins,
	})

	validator := handlers.NewRequestValidator()
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(deps.Name, deps.Version, deps.Metrics, deps.Probes),
		Users:          handlers.NewUsersHandler(deps.Auth, validator),
		Admin:          handlers.NewAdminHandler(deps.Auth, validator),
		AuthMiddleware: auth.NewAuthMiddleware(deps.Auth.Verifier()),
	})
	return app
}
