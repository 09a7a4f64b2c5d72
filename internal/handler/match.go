package handler

import (
	"errors"
	"io"
	"net/http"

	"properly/internal/catalog"
	"properly/internal/model"
	"properly/internal/service"

	"github.com/gin-gonic/gin"
)

// MatchHandler serves rankings, the catalog and the quiz definition
type MatchHandler struct {
	matcher *service.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matcher *service.MatchService) *MatchHandler {
	return &MatchHandler{matcher: matcher}
}

// bindMatchRequest decodes the answers. An empty body means no answers.
func bindMatchRequest(c *gin.Context) (model.MatchRequest, bool) {
	var req model.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return req, false
	}
	return req, true
}

// Match handles POST /api/v1/match
func (h *MatchHandler) Match(c *gin.Context) {
	req, ok := bindMatchRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.matcher.Match(req.Preferences))
}

// Results handles POST /api/v1/match/results
func (h *MatchHandler) Results(c *gin.Context) {
	req, ok := bindMatchRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.matcher.Results(req.Preferences))
}

// Dashboard handles POST /api/v1/match/dashboard
func (h *MatchHandler) Dashboard(c *gin.Context) {
	req, ok := bindMatchRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.matcher.Dashboard(req.Preferences))
}

// ListProperties handles GET /api/v1/properties
func (h *MatchHandler) ListProperties(c *gin.Context) {
	items := h.matcher.Properties()
	c.JSON(http.StatusOK, model.PropertiesResponse{Items: items, Total: len(items)})
}

// GetProperty handles GET /api/v1/properties/:id
func (h *MatchHandler) GetProperty(c *gin.Context) {
	p, err := h.matcher.Property(c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Quiz handles GET /api/v1/quiz
func (h *MatchHandler) Quiz(c *gin.Context) {
	c.JSON(http.StatusOK, service.QuizDefinition())
}
