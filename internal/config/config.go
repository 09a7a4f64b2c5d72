package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Catalog    CatalogConfig
	Results    ResultsConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	RabbitMQ   RabbitMQConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  []string
	ShutdownTimeout int // seconds
}

// CatalogConfig tells where the property catalog comes from
type CatalogConfig struct {
	Path       string // JSON file; empty means the embedded sample data
	SQLitePath string // optional SQLite mirror
}

// ResultsConfig holds display and chat context limits
type ResultsConfig struct {
	TopN              int
	ContextProperties int
	AssociatedMax     int
	MemoryLimit       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json, text or color
}

// OpenAIConfig holds configuration for the OpenAI-compatible assistant API
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	ChatExtraBody       string // JSON string for extra_body (e.g., {"chat_template_kwargs":{"thinking":true}})
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             int
	Enabled             bool
}

// RabbitMQConfig holds the lead event broker configuration
type RabbitMQConfig struct {
	URL             string
	LeadsExchange   string
	LeadsRoutingKey string
	Enabled         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	dsn := getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", "")))
	pgHost := getEnv("PG_HOST", "")

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                dsn,
			Host:               pgHost,
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "properly"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			Enabled:            dsn != "" || pgHost != "",
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 10),
		},
		Catalog: CatalogConfig{
			Path:       getEnv("CATALOG_PATH", ""),
			SQLitePath: getEnv("CATALOG_SQLITE_PATH", ""),
		},
		Results: ResultsConfig{
			TopN:              getEnvAsInt("RESULTS_TOP_N", 5),
			ContextProperties: getEnvAsInt("CHAT_CONTEXT_PROPERTIES", 3),
			AssociatedMax:     getEnvAsInt("CHAT_ASSOCIATED_MAX", 2),
			MemoryLimit:       getEnvAsInt("CHAT_MEMORY_LIMIT", 3),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.7),
			ChatTopP:            getEnvAsFloat("OPENAI_CHAT_TOP_P", 0),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			ChatExtraBody:       getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			LeadsExchange:   getEnv("RABBITMQ_LEADS_EXCHANGE", "properly.leads"),
			LeadsRoutingKey: getEnv("RABBITMQ_LEADS_ROUTING_KEY", "lead.captured"),
			Enabled:         getEnv("RABBITMQ_URL", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Results.TopN <= 0 {
		return fmt.Errorf("RESULTS_TOP_N must be positive, got %d", c.Results.TopN)
	}
	if c.Results.ContextProperties < 0 {
		return fmt.Errorf("CHAT_CONTEXT_PROPERTIES must not be negative, got %d", c.Results.ContextProperties)
	}
	if c.Results.AssociatedMax < 0 {
		return fmt.Errorf("CHAT_ASSOCIATED_MAX must not be negative, got %d", c.Results.AssociatedMax)
	}
	if c.Results.MemoryLimit < 0 {
		return fmt.Errorf("CHAT_MEMORY_LIMIT must not be negative, got %d", c.Results.MemoryLimit)
	}
	switch c.Logging.Format {
	case "json", "text", "color":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q, must be one of: json, text, color", c.Logging.Format)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid float value, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
