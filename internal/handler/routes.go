package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler
type Handlers struct {
	Match       *MatchHandler
	Session     *SessionHandler
	Chat        *ChatHandler
	Preferences *PreferencesHandler
}

// RegisterRoutes mounts the API under api (normally /api/v1)
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	// Quiz and catalog
	api.GET("/quiz", h.Match.Quiz)
	api.GET("/properties", h.Match.ListProperties)
	api.GET("/properties/:id", h.Match.GetProperty)

	// Matching
	api.POST("/match", h.Match.Match)
	api.POST("/match/results", h.Match.Results)
	api.POST("/match/dashboard", h.Match.Dashboard)

	// Free-text refinement
	api.POST("/preferences/parse", h.Preferences.Parse)

	// Lead capture
	api.POST("/sessions", h.Session.Create)
	api.GET("/sessions/:id", h.Session.Get)
	api.DELETE("/sessions/:id", h.Session.Delete)

	// Assistant
	api.GET("/chat/greeting", h.Chat.Greeting)
	api.POST("/chat", h.Chat.Send)
	api.POST("/chat/stream", h.Chat.Stream)
}
