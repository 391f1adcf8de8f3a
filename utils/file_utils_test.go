package utils

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/posts_backend/models"
)

func fileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(maxImageSize))
	return req.MultipartForm.File["image"][0]
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestValidateImageFile(t *testing.T) {
	assert.NoError(t, ValidateImageFile("photo.JPG", 1024))
	assert.NoError(t, ValidateImageFile("photo.png", maxImageSize))

	var ve *models.ValidationError
	assert.ErrorAs(t, ValidateImageFile("photo.svg", 1024), &ve)
	assert.ErrorAs(t, ValidateImageFile("photo.png", maxImageSize+1), &ve)
}

func TestSaveImage_WritesImageAndThumbnail(t *testing.T) {
	store := NewImageStore(t.TempDir())

	stored, err := store.SaveImage(fileHeader(t, "wide.png", encodePNG(t, 1000, 500)))
	require.NoError(t, err)

	assert.FileExists(t, stored.Path)
	assert.FileExists(t, stored.ThumbnailPath)
	assert.Equal(t, "wide.png", stored.OriginalName)
	assert.Regexp(t, `^/uploads/posts/[0-9a-f-]{36}\.png$`, stored.URL)
	assert.Regexp(t, `^/uploads/thumbnails/[0-9a-f-]{36}\.jpg$`, stored.ThumbnailURL)

	thumb, err := imaging.Open(stored.ThumbnailPath)
	require.NoError(t, err)
	assert.Equal(t, thumbnailWidth, thumb.Bounds().Dx())
	assert.Equal(t, 160, thumb.Bounds().Dy())
}

func TestSaveImage_SmallImageNotUpscaled(t *testing.T) {
	store := NewImageStore(t.TempDir())

	stored, err := store.SaveImage(fileHeader(t, "tiny.png", encodePNG(t, 40, 30)))
	require.NoError(t, err)

	thumb, err := imaging.Open(stored.ThumbnailPath)
	require.NoError(t, err)
	assert.Equal(t, 40, thumb.Bounds().Dx())
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	store := NewImageStore(t.TempDir())

	_, err := store.SaveImage(fileHeader(t, "fake.png", []byte("plain text")))

	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRemove(t *testing.T) {
	store := NewImageStore(t.TempDir())
	stored, err := store.SaveImage(fileHeader(t, "a.png", encodePNG(t, 8, 8)))
	require.NoError(t, err)

	require.NoError(t, store.Remove(stored))
	assert.NoFileExists(t, stored.Path)
	assert.NoFileExists(t, stored.ThumbnailPath)

	// already gone is fine
	assert.NoError(t, store.Remove(stored))
}
