package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Unrecognized errors are logged and reported as 500 without detail.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validation *models.ValidationError
		conflict   *models.ConflictError
		state      *models.StateError
		authz      *models.AuthorizationError
		notFound   *models.NotFoundError
		limited    *services.RateLimitError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validation.Message, Field: validation.Field})
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: authz.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFound.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: conflict.Error()})
	case errors.As(err, &state):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_state", Message: state.Error()})
	case errors.As(err, &limited):
		c.Header("Retry-After", limited.RetryAfterSeconds(time.Now()))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too_many_requests", Message: limited.Message})
	default:
		logger.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An unexpected error occurred"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request: " + err.Error()})
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "User context not found"})
}

// pathID parses a positive int64 path parameter, writing a 400 when it is malformed
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid " + name, Field: name})
		return 0, false
	}
	return id, true
}
