package handler

import (
	"net/http"
	"time"

	"properly/internal/model"
	"properly/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and collaborator status
type HealthHandler struct {
	version string
	matcher *service.MatchService
	chat    *service.ChatService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, matcher *service.MatchService, chat *service.ChatService) *HealthHandler {
	return &HealthHandler{version: version, matcher: matcher, chat: chat}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:     "healthy",
		Service:    "properly",
		Version:    h.version,
		Properties: h.matcher.Count(),
		Assistant:  h.chat.Connected(),
		Time:       time.Now().UTC(),
	})
}
