package handler

import (
	"errors"
	"net/http"

	"properly/internal/model"
	"properly/internal/repository"
	"properly/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles lead capture and dashboard restore
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, h.sessions.Create(c.Request.Context(), req))
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	resp, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		sessionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Session lookup failed: " + err.Error()})
}
