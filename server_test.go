package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/posts_backend/config"
	"github.com/HSouheill/posts_backend/middleware"
	"github.com/HSouheill/posts_backend/models"
	"github.com/HSouheill/posts_backend/repositories"
	"github.com/HSouheill/posts_backend/utils"
)

func newTestApp(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.AppConfig{Env: "development", UploadDir: t.TempDir()}
	repo := repositories.NewMemoryPostRepository()
	return newServer(cfg, repo, repo, utils.NewImageStore(cfg.UploadDir),
		middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()))
}

func request(e *echo.Echo, method, path, remoteAddr string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.RemoteAddr = remoteAddr
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createPost(e *echo.Echo, remoteAddr string, header map[string]string) int {
	return request(e, http.MethodPost, "/posts", remoteAddr, []byte(`{"description": "hello"}`), header).Code
}

func listPosts(t *testing.T, e *echo.Echo, remoteAddr string) []models.Post {
	t.Helper()
	rec := request(e, http.MethodGet, "/posts", remoteAddr, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var posts []models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	return posts
}

func TestServer_CreatesThenListAllWithDefaultLimits(t *testing.T) {
	e := newTestApp(t)

	const n = 50
	for i := 0; i < n; i++ {
		require.Equal(t, http.StatusCreated, createPost(e, "10.0.0.1:5000", nil), "create %d", i+1)
	}

	assert.Len(t, listPosts(t, e, "10.0.0.1:5000"), n)
}

func TestServer_ExhaustedCreateLimitKeepsListWorking(t *testing.T) {
	e := newTestApp(t)

	created := 0
	for i := 0; i < 1000; i++ {
		code := createPost(e, "10.0.0.1:5000", nil)
		if code == http.StatusTooManyRequests {
			break
		}
		require.Equal(t, http.StatusCreated, code)
		created++
	}
	require.Less(t, created, 1000, "create limit was never reached")

	assert.Len(t, listPosts(t, e, "10.0.0.1:5000"), created)
}

func TestServer_ForwardedHeadersDoNotSpoofClientIP(t *testing.T) {
	e := newTestApp(t)
	spoofed := map[string]string{
		echo.HeaderXRealIP:       "10.1.1.1",
		echo.HeaderXForwardedFor: "10.1.1.1",
	}

	for i := 0; i < 1000; i++ {
		if createPost(e, "6.6.6.6:4000", spoofed) == http.StatusTooManyRequests {
			break
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, createPost(e, "6.6.6.6:4000", spoofed))

	assert.Equal(t, http.StatusCreated, createPost(e, "10.1.1.1:4000", nil))
}

func TestServer_FrameworkErrorsUseErrorBody(t *testing.T) {
	e := newTestApp(t)

	rec := request(e, http.MethodGet, "/nowhere", "10.0.0.1:5000", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Not Found"}`, rec.Body.String())

	big := []byte(`{"description": "` + strings.Repeat("x", 7*1024*1024) + `"}`)
	rec = request(e, http.MethodPost, "/posts", "10.0.0.1:5000", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, listPosts(t, e, "10.0.0.1:5000"))
}
