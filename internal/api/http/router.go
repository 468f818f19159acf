package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cura-agent/roster-service/internal/api/http/handlers"
	"github.com/cura-agent/roster-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Settings       *handlers.SettingsHandler
	Rosters        *handlers.RosterHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	requireAuth := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireSession()}

	authProtected := authGroup.Group("", requireAuth...)
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	settings := app.Group("/settings", requireAuth...)
	settings.Get("/profile", cfg.Settings.GetProfile)
	settings.Put("/profile", cfg.Settings.UpdateProfile)

	rosters := app.Group("/rosters", requireAuth...)
	rosters.Get("/:category", cfg.Rosters.List)
	rosters.Post("/:category", cfg.Rosters.Create)
	rosters.Get("/:category/:id", cfg.Rosters.Get)
	rosters.Patch("/:category/:id", cfg.Rosters.Update)
	rosters.Delete("/:category/:id", cfg.Rosters.Delete)

	notifications := app.Group("/notifications", requireAuth...)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Delete("/", cfg.Notifications.Clear)
}
