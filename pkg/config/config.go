package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Backend names accepted in GRAPH_BACKEND.
const (
	BackendFalkor = "falkor"
	BackendNeo4j  = "neo4j"
)

// Config holds all application configuration. It is resolved once at
// startup and treated as read-only afterwards.
type Config struct {
	// App
	Env string

	// Graph store
	GraphBackend string
	GraphName    string

	// FalkorDB (Redis protocol)
	FalkorHost     string
	FalkorPort     int
	FalkorUsername string
	FalkorPassword string

	// Neo4j (Bolt)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// LLM provider
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Retrieval and chat defaults
	DefaultMaxResults int
	ChatHistorySize   int

	// Web surface
	WebHost   string
	WebPort   int
	UploadDir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		GraphBackend:      getEnv("GRAPH_BACKEND", BackendFalkor),
		GraphName:         getEnv("GRAPH_NAME", "graphchat"),
		FalkorHost:        getEnv("FALKOR_HOST", "localhost"),
		FalkorPort:        getEnvInt("FALKOR_PORT", 6379),
		FalkorUsername:    getEnv("FALKOR_USERNAME", ""),
		FalkorPassword:    getEnv("FALKOR_PASSWORD", ""),
		Neo4jURI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:         getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:     getEnv("NEO4J_PASSWORD", "password"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		DefaultMaxResults: getEnvInt("DEFAULT_MAX_RESULTS", 5),
		ChatHistorySize:   getEnvInt("CHAT_HISTORY_SIZE", 10),
		WebHost:           getEnv("WEB_HOST", "0.0.0.0"),
		WebPort:           getEnvInt("WEB_PORT", 8000),
		UploadDir:         getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "graphchat-uploads")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.GraphBackend {
	case BackendFalkor:
		if c.FalkorHost == "" {
			return fmt.Errorf("FALKOR_HOST is required")
		}
		if c.FalkorPort < 1 || c.FalkorPort > 65535 {
			return fmt.Errorf("FALKOR_PORT must be between 1 and 65535")
		}
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required")
		}
		if c.Neo4jUser == "" {
			return fmt.Errorf("NEO4J_USER is required")
		}
	default:
		return fmt.Errorf("GRAPH_BACKEND must be %q or %q", BackendFalkor, BackendNeo4j)
	}
	if c.GraphName == "" {
		return fmt.Errorf("GRAPH_NAME is required")
	}
	if c.DefaultMaxResults < 1 {
		return fmt.Errorf("DEFAULT_MAX_RESULTS must be positive")
	}
	if c.ChatHistorySize < 0 {
		return fmt.Errorf("CHAT_HISTORY_SIZE must not be negative")
	}
	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("WEB_PORT must be between 1 and 65535")
	}
	// LLM keys are optional; their absence degrades chat to summarization
	return nil
}

// FalkorAddr returns the host:port address of the FalkorDB server
func (c *Config) FalkorAddr() string {
	return fmt.Sprintf("%s:%d", c.FalkorHost, c.FalkorPort)
}

// HasLLM reports whether a completion provider is configured
func (c *Config) HasLLM() bool {
	return c.OpenAIAPIKey != "" || c.OpenAIBaseURL != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
