//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the embedded quiz frontend. Unknown non-API paths
// get index.html so client-side routes such as /dashboard/<id> work.
func setupStaticFiles(router *gin.Engine, logger *slog.Logger) {
	logger.Info("📦 Using embedded frontend assets")

	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		logger.Error("failed to get dist subdirectory", "error", err)
		os.Exit(1)
	}

	index, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		logger.Error("embedded frontend has no index.html", "error", err)
		os.Exit(1)
	}

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}

		name := strings.TrimPrefix(path.Clean(urlPath), "/")
		if name == "" || name == "." {
			c.Data(http.StatusOK, "text/html; charset=utf-8", index)
			return
		}

		content, err := fs.ReadFile(distFS, name)
		if err != nil {
			// SPA fallback
			c.Data(http.StatusOK, "text/html; charset=utf-8", index)
			return
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, content)
	})
}
