package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"evidence-backend/internal/service"
	"evidence-backend/pkg/response"
)

// respondError maps service errors to the HTTP taxonomy: validation 400,
// invalid credentials 401, permission denied 403, not found 404, rest 500.
// "Not yours" and "does not exist" both surface as 404 on purpose.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// parseIDParam reads the :id path parameter as a UUID, writing a 400 on failure
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// parseCaseFilter reads the optional ?case= query parameter
func parseCaseFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("case")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid case filter"))
		return nil, false
	}
	return &id, true
}
