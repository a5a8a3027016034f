package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	logger *slog.Logger
}

// NewBase creates a new base handler.
func NewBase(logger *slog.Logger) Base {
	if logger == nil {
		logger = slog.Default()
	}
	return Base{logger: logger}
}

// WriteError writes an error response with the given status code.
func (b Base) WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// WriteServiceError maps a service error to a status code and writes it.
// Unknown errors are logged and hidden behind a generic message.
func (b Base) WriteServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reconcile.ErrInvalidRequest):
		b.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
	case errors.Is(err, storage.ErrNotFound):
		b.WriteError(c, http.StatusNotFound, dto.NotFoundError("region"))
	default:
		_ = c.Error(err)
		b.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		b.WriteError(c, http.StatusInternalServerError, dto.InternalError())
	}
}
