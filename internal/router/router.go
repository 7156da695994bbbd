package router

import (
	"github.com/labstack/echo/v4"

	"github.com/orbtao/connectify/backend/internal/actions"
	"github.com/orbtao/connectify/backend/internal/handlers"
	"github.com/orbtao/connectify/backend/internal/middleware"
	"github.com/orbtao/connectify/backend/internal/ratelimit"
	"github.com/orbtao/connectify/backend/internal/realtime"
	"github.com/orbtao/connectify/backend/pkg/config"
	"github.com/orbtao/connectify/backend/pkg/logger"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config  *config.Config
	Logger  logger.Logger
	Actions *actions.Actions
	Hub     *realtime.Hub
	Limiter ratelimit.Limiter
	// Ping backs the health check; nil means always healthy.
	Ping handlers.Pinger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	log := d.Logger.WithComponent("router")
	e.HTTPErrorHandler = handlers.ErrorHandler(d.Logger)

	health := handlers.NewHealthHandler("connectify-api", d.Ping)
	e.GET("/health", health.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth", middleware.RateLimit(d.Limiter))

	// --- Protected routes (require an active session) ---
	api := e.Group("/api/v1",
		middleware.JWTAuthMiddleware(d.Actions, d.Config.Auth.CookieName),
		middleware.RateLimit(d.Limiter),
	)

	handlers.NewAuthHandler(d.Actions, handlers.CookieOptions{
		Name:   d.Config.Auth.CookieName,
		Secure: d.Config.IsProduction(),
	}).RegisterAuthRoutes(authGroup, api)

	handlers.NewUserHandler(d.Actions).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(d.Actions).RegisterFollowRoutes(api)
	handlers.NewPostHandler(d.Actions).RegisterPostRoutes(api)
	handlers.NewLikeHandler(d.Actions).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(d.Actions).RegisterCommentRoutes(api)
	handlers.NewFeedHandler(d.Actions).RegisterFeedRoutes(api)
	handlers.NewStoryHandler(d.Actions).RegisterStoryRoutes(api)
	handlers.NewMessageHandler(d.Actions).RegisterMessageRoutes(api)
	handlers.NewNotificationHandler(d.Actions).RegisterNotificationRoutes(api)
	handlers.NewVerificationHandler(d.Actions).RegisterVerificationRoutes(api)
	handlers.NewWSHandler(d.Actions, d.Hub, d.Logger).RegisterWSRoutes(api)
	handlers.NewAdminHandler(d.Actions).RegisterAdminRoutes(api.Group("/admin"))

	log.Info("All routes configured.", "routes", len(e.Routes()))
}
