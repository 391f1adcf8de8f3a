package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/posts_backend/controllers"
)

// RegisterPostRoutes sets up all post-related routes
func RegisterPostRoutes(e *echo.Echo, postController *controllers.PostController) {
	posts := e.Group("/posts")

	posts.GET("", postController.GetPosts)
	posts.POST("", postController.CreatePost)
	posts.POST("/upload", postController.UploadPostImage)
}
