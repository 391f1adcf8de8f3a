package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/posts_backend/repositories"
)

type SystemController struct {
	store repositories.StoreStatus
}

func NewSystemController(store repositories.StoreStatus) *SystemController {
	return &SystemController{store: store}
}

func (sc *SystemController) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Posts API is running",
	})
}

func (sc *SystemController) Health(c echo.Context) error {
	if err := sc.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

// Version reports the MongoDB server version (GET /version)
func (sc *SystemController) Version(c echo.Context) error {
	version, err := sc.store.ServerVersion(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"mongoVersion": version})
}
