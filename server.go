package main

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/posts_backend/config"
	"github.com/HSouheill/posts_backend/controllers"
	"github.com/HSouheill/posts_backend/middleware"
	"github.com/HSouheill/posts_backend/repositories"
	"github.com/HSouheill/posts_backend/routes"
	"github.com/HSouheill/posts_backend/utils"
)

// newServer builds the echo instance with middleware and routes
func newServer(cfg *config.AppConfig, store repositories.StoreStatus, postRepo repositories.PostRepository, images *utils.ImageStore, rateLimiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = controllers.HTTPErrorHandler

	// Client IPs come from the connection unless a trusted proxy sits in front
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.BodyLimit("6M"))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		HSTS: !cfg.IsDevelopment(),
	}))

	systemController := controllers.NewSystemController(store)
	postController := controllers.NewPostController(postRepo, images)
	routes.SetupRoutes(e, cfg.UploadDir, systemController, postController)

	return e
}
