package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pet3d-backend/internal/middleware"
	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

// respondError maps a service error class to its HTTP status. Internal
// details are logged, not returned.
func respondError(c *gin.Context, err error) {
	status, label := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, label = http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrInvalidInput):
		status, label = http.StatusBadRequest, "invalid input"
	case errors.Is(err, services.ErrInvalidState):
		status, label = http.StatusConflict, "invalid state"
	case errors.Is(err, services.ErrProvider):
		status, label = http.StatusBadGateway, "provider error"
	}

	logger := zerolog.Ctx(c.Request.Context())
	if status >= 500 {
		logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	_ = c.Error(err)

	body := models.ErrorResponse{Error: label}
	if status != http.StatusInternalServerError {
		body.Message = err.Error()
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid input", Message: msg})
}

// ownerID returns the caller, writing a 401 when auth did not run.
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
	}
	return id, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found", Message: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
