package handler

import (
	"errors"
	"net/http"

	"properly/internal/model"
	"properly/internal/service"

	"github.com/gin-gonic/gin"
)

// PreferencesHandler turns free text into questionnaire answers
type PreferencesHandler struct {
	parser  *service.PreferenceParser
	matcher *service.MatchService
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(parser *service.PreferenceParser, matcher *service.MatchService) *PreferencesHandler {
	return &PreferencesHandler{parser: parser, matcher: matcher}
}

// Parse handles POST /api/v1/preferences/parse
func (h *PreferencesHandler) Parse(c *gin.Context) {
	var req model.ParsePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	prefs, err := h.parser.Parse(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, service.ErrAssistantDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse preferences: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ParsePreferencesResponse{
		Preferences: *prefs,
		Results:     h.matcher.Results(*prefs).Results,
	})
}
