package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/posts_backend/controllers"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, uploadDir string, systemController *controllers.SystemController, postController *controllers.PostController) {
	e.Match([]string{"GET", "HEAD"}, "/", systemController.Root)
	e.Match([]string{"GET", "HEAD"}, "/health", systemController.Health)
	e.GET("/version", systemController.Version)

	RegisterPostRoutes(e, postController)

	// Uploaded images and thumbnails
	e.Static("/uploads", uploadDir)
}
