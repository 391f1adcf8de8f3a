package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/HSouheill/posts_backend/models"
)

const (
	// Base URL for serving files
	baseURL = "/uploads"
	// Maximum image size (5MB)
	maxImageSize = 5 * 1024 * 1024
	// Thumbnails are scaled down to this width, keeping the aspect ratio
	thumbnailWidth = 320

	postsSubDir      = "posts"
	thumbnailsSubDir = "thumbnails"
)

// Allowed image extensions. Only formats imaging can decode are listed.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// StoredImage describes an uploaded image written to local storage
type StoredImage struct {
	Name          string
	OriginalName  string
	Size          int64
	URL           string
	ThumbnailURL  string
	Path          string
	ThumbnailPath string
}

// ImageStore saves post images and their thumbnails under BaseDir
type ImageStore struct {
	BaseDir string
}

func NewImageStore(baseDir string) *ImageStore {
	return &ImageStore{BaseDir: baseDir}
}

// InitializeStorage creates necessary directories for file storage
func (s *ImageStore) InitializeStorage() error {
	for _, dir := range []string{
		filepath.Join(s.BaseDir, postsSubDir),
		filepath.Join(s.BaseDir, thumbnailsSubDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ValidateImageFile validates file size and extension
func ValidateImageFile(filename string, size int64) error {
	if size > maxImageSize {
		return models.NewValidationError("file too large. Maximum size is %d bytes", maxImageSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return models.NewValidationError("unsupported image format. Allowed formats: jpg, jpeg, png, gif, bmp")
	}
	return nil
}

// SaveImage validates the uploaded file, stores it under a random name and
// writes a JPEG thumbnail next to it. Rejected input is a *models.ValidationError.
func (s *ImageStore) SaveImage(file *multipart.FileHeader) (*StoredImage, error) {
	if err := ValidateImageFile(file.Filename, file.Size); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open uploaded image: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read uploaded image: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, models.NewValidationError("file too large. Maximum size is %d bytes", maxImageSize)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("uploaded file is not a valid image")
	}

	if err := s.InitializeStorage(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(file.Filename))
	stored := &StoredImage{
		Name:          id + ext,
		OriginalName:  filepath.Base(file.Filename),
		Size:          int64(len(data)),
		URL:           fmt.Sprintf("%s/%s/%s%s", baseURL, postsSubDir, id, ext),
		ThumbnailURL:  fmt.Sprintf("%s/%s/%s.jpg", baseURL, thumbnailsSubDir, id),
		Path:          filepath.Join(s.BaseDir, postsSubDir, id+ext),
		ThumbnailPath: filepath.Join(s.BaseDir, thumbnailsSubDir, id+".jpg"),
	}

	if err := os.WriteFile(stored.Path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file %s: %w", stored.Path, err)
	}

	thumb := img
	if img.Bounds().Dx() > thumbnailWidth {
		thumb = imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(thumb, stored.ThumbnailPath, imaging.JPEGQuality(85)); err != nil {
		_ = os.Remove(stored.Path)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return stored, nil
}

// Remove deletes the image and its thumbnail, ignoring files already gone
func (s *ImageStore) Remove(stored *StoredImage) error {
	for _, p := range []string{stored.Path, stored.ThumbnailPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
