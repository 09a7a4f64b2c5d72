//go:build !embed
// +build !embed

package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles configures static file serving for development (no embedding)
func setupStaticFiles(router *gin.Engine, logger *slog.Logger) {
	logger.Info("🔧 Using local filesystem for frontend assets (development mode)")
	logger.Info("   Frontend should be served separately with: cd web && npm run dev")

	router.Static("/assets", "./web/dist/assets")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Frontend is running separately",
			"dev_url": "http://localhost:3000",
			"hint":    "Run 'cd web && npm run dev' to start the quiz frontend",
		})
	})
}
