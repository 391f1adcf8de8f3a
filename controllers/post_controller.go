package controllers

import (
	"log"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/posts_backend/models"
	"github.com/HSouheill/posts_backend/repositories"
	"github.com/HSouheill/posts_backend/utils"
)

const defaultUploadDescription = "Image uploaded"

// ImageStorage stores uploaded post images
type ImageStorage interface {
	SaveImage(file *multipart.FileHeader) (*utils.StoredImage, error)
	Remove(stored *utils.StoredImage) error
}

type PostController struct {
	repo   repositories.PostRepository
	images ImageStorage
}

func NewPostController(repo repositories.PostRepository, images ImageStorage) *PostController {
	return &PostController{repo: repo, images: images}
}

// CreatePost handles POST /posts
func (pc *PostController) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, models.NewValidationError("%s", err.Error()))
	}

	post := req.ToPost()
	if err := pc.repo.Create(c.Request().Context(), &post); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.PostResponse{
		Message: "Post created successfully",
		Post:    post,
	})
}

// GetPosts handles GET /posts
func (pc *PostController) GetPosts(c echo.Context) error {
	posts, err := pc.repo.FindAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UploadPostImage handles POST /posts/upload: stores the image and creates
// a post pointing at it.
func (pc *PostController) UploadPostImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return respondError(c, models.NewValidationError("image file is required"))
	}

	stored, err := pc.images.SaveImage(file)
	if err != nil {
		return respondError(c, err)
	}

	description := c.FormValue("description")
	if description == "" {
		description = defaultUploadDescription
	}

	post := models.NewPost(description, stored.URL)
	if err := pc.repo.Create(c.Request().Context(), &post); err != nil {
		if rmErr := pc.images.Remove(stored); rmErr != nil {
			log.Printf("Failed to remove %s after failed insert: %v", stored.Path, rmErr)
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.PostResponse{
		Message: "Image uploaded successfully",
		Post:    post,
		File: &models.UploadedFile{
			Name:         stored.Name,
			OriginalName: stored.OriginalName,
			Size:         stored.Size,
			ThumbnailURL: stored.ThumbnailURL,
		},
	})
}
