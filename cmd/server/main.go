package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"properly/internal/catalog"
	"properly/internal/config"
	"properly/internal/events"
	"properly/internal/handler"
	"properly/internal/logging"
	"properly/internal/repository"
	"properly/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// stores bundles the session and interaction backends
type stores struct {
	sessions     service.SessionStore
	interactions service.InteractionStore
	close        func() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("Properly match service", "version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	// Load property catalog
	cat, err := catalog.Load(ctx, cfg.Catalog, logger)
	if err != nil {
		logger.Error("failed to load property catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("✅ Property catalog loaded", "properties", cat.Len())

	st := openStores(ctx, cfg, logger)
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	publisher := openPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close lead publisher", "error", err)
		}
	}()

	// Initialize assistant client
	var assistant service.Assistant
	if cfg.OpenAI.Enabled {
		assistant = service.NewOpenAIClient(&cfg.OpenAI, logger)
		logger.Info("✅ Assistant client initialized",
			"api_base", cfg.OpenAI.APIBase,
			"chat_model", cfg.OpenAI.ChatModel,
			"embedding_model", cfg.OpenAI.EmbeddingModel,
			"chat_temperature", cfg.OpenAI.ChatTemperature,
			"chat_max_tokens", cfg.OpenAI.ChatMaxTokens,
		)
	} else {
		logger.Warn("⚠️  Assistant is disabled - chat replies are degraded and preference parsing is unavailable")
		logger.Warn("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	matcher := service.NewMatchService(cat, cfg.Results.TopN)
	sessions := service.NewSessionService(matcher, st.sessions, publisher, logger)
	chat := service.NewChatService(assistant, matcher, sessions, st.interactions, cfg.Results, logger)
	parser := service.NewPreferenceParser(assistant, logger)

	logger.Info("✅ Services initialized")

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", handler.TraceHeader}
	corsConfig.ExposeHeaders = []string{handler.TraceHeader}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", handler.NewHealthHandler(Version, matcher, chat).Health)

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	handler.RegisterRoutes(router.Group("/api/v1"), handler.Handlers{
		Match:       handler.NewMatchHandler(matcher),
		Session:     handler.NewSessionHandler(sessions),
		Chat:        handler.NewChatHandler(chat),
		Preferences: handler.NewPreferencesHandler(parser, matcher),
	})

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, logger)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("🚀 Starting server", "addr", addr)
	logger.Info("📝 API", "url", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port))
	logger.Info("🌐 Web UI", "url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Let background interaction writes finish before the stores close
	chat.Wait()

	logger.Info("✅ Server stopped")
}

// openStores connects to PostgreSQL when configured and falls back to the
// in-memory repository otherwise
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) stores {
	if cfg.PostgreSQL.Enabled {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err == nil {
			err = repo.EnsureSchema(ctx, cfg.OpenAI.EmbeddingDimensions)
			if err == nil {
				logger.Info("✅ Connected to PostgreSQL database")
				return stores{sessions: repo, interactions: repo, close: repo.Close}
			}
			repo.Close()
		}
		logger.Warn("⚠️  PostgreSQL unavailable, keeping sessions in memory", "error", err)
	} else {
		logger.Info("PostgreSQL not configured, keeping sessions in memory")
	}

	mem := repository.NewMemoryRepository()
	return stores{sessions: mem, interactions: mem, close: func() error { return nil }}
}

// openPublisher connects the lead event publisher when RabbitMQ is configured
func openPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if !cfg.RabbitMQ.Enabled {
		return events.NoopPublisher{}
	}

	pub, err := events.NewRabbitPublisher(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Warn("⚠️  RabbitMQ unavailable, lead events are disabled", "error", err)
		return events.NoopPublisher{}
	}
	logger.Info("✅ Lead events publishing", "exchange", cfg.RabbitMQ.LeadsExchange)
	return pub
}
