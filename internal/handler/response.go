package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reelgrid/reelgrid/internal/db"
	"github.com/reelgrid/reelgrid/internal/service"
	"github.com/reelgrid/reelgrid/pkg/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON error envelope of the API surface.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// handleError maps service errors onto HTTP statuses. Constraint violations
// deliberately surface as a generic failure message.
func handleError(c *gin.Context, err error) {
	log := logger.Named("handler")

	switch err.(type) {
	case *service.ValidationError:
		log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case *service.NotFoundError:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Status:    http.StatusNotFound,
			Error:     "Not Found",
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	case *service.ExternalAPIError:
		log.Error("External API error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Status:    http.StatusBadGateway,
			Error:     "Bad Gateway",
			Message:   err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	default:
		if db.IsForeignKeyViolation(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Status:    http.StatusConflict,
				Error:     "Conflict",
				Message:   "The operation could not be completed",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}

		log.Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:    http.StatusInternalServerError,
			Error:     "Internal Server Error",
			Message:   "An unexpected error occurred",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	}
}
