package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/posts_backend/models"
)

// respondError maps the error taxonomy onto status codes
func respondError(c echo.Context, err error) error {
	var validationErr *models.ValidationError
	var persistenceErr *models.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &persistenceErr):
		log.Printf("Persistence error on %s %s: %v", c.Request().Method, c.Path(), persistenceErr)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: persistenceErr.Err.Error()})
	default:
		log.Printf("Unexpected error on %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}

// HTTPErrorHandler replaces echo's default handler so errors raised by the
// framework and middleware (404, 405, 413, panics) share the {"error": ...} body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		log.Printf("Unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, models.ErrorResponse{Error: msg})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
