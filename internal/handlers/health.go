package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendborrow/lendborrow-api/internal/services"
)

type HealthHandler struct {
	sessions *services.SessionService
}

func NewHealthHandler(sessions *services.SessionService) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Health godoc
// @Summary      Health check
// @Description  Reports liveness and the number of open wallet sessions
// @Tags         health
// @Accept       json
// @Produce      json
// @Success      200  {object}  HealthResponse   "Returns health status"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: h.sessions.Count(),
	})
}
