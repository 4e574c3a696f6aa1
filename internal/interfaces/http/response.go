package http

import (
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"orders/internal/domain"
)

type successResponse struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondData(c echo.Context, code int, data any) error {
	return c.JSON(code, successResponse{Status: "success", Data: data})
}

func respondList[T any](c echo.Context, list []T) error {
	results := len(list)
	return c.JSON(http.StatusOK, successResponse{Status: "success", Results: &results, Data: list})
}

func respondMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, successResponse{Status: "success", Message: msg})
}

func statusCode(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrBadRequest:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrLookupFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError renders every error returned by a handler in the error
// envelope. Internal errors never leak their message.
func HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	} else {
		code = statusCode(err)
		if code != http.StatusInternalServerError {
			message = domain.Message(err)
		}
	}

	if code == http.StatusInternalServerError {
		log.FromContext(c.Request().Context()).WithField("error", err).Error("Internal error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Status: "error", Message: message})
	}
	if err != nil {
		log.FromContext(c.Request().Context()).WithField("error", err).Error("Failed to write error response")
	}
}
