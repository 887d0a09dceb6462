package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lendborrow/lendborrow-api/internal/middleware"
	"github.com/lendborrow/lendborrow-api/internal/services"
	"go.uber.org/zap"
)

// sendError logs err with the request context and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	log := middleware.LogWithCorrelationID(c.Request.Context())
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Int("status", statusCode),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error(message, fields...)
	} else {
		log.Debug(message, fields...)
	}
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleSessionError maps session service errors onto HTTP status codes
func handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		sendError(c, http.StatusNotFound, "Session not found", err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// parseSessionID reads the :session_id path parameter, replying 400 when malformed
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid session ID format", err)
		return uuid.Nil, false
	}
	return id, true
}
