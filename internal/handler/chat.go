package handler

import (
	"errors"
	"net/http"
	"strings"

	"properly/internal/model"
	"properly/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles assistant conversations
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Greeting handles GET /api/v1/chat/greeting
func (h *ChatHandler) Greeting(c *gin.Context) {
	c.JSON(http.StatusOK, h.chat.Greeting())
}

// Send handles POST /api/v1/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.chat.Send(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be blank"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stream handles POST /api/v1/chat/stream - SSE streaming reply
func (h *ChatHandler) Stream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be blank"})
		return
	}

	flusher, ok := startSSE(c)
	if !ok {
		return
	}

	sendSSE(c, "start", map[string]any{"session_id": req.SessionID})
	flusher.Flush()

	resp, err := h.chat.SendStream(c.Request.Context(), req, func(delta string) error {
		sendSSE(c, "delta", map[string]any{"text": delta})
		flusher.Flush()
		return nil
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "reply", resp)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}
