package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Relational store
	DatabaseDriver string // sqlite or postgres
	DatabaseDSN    string

	// Generation capability
	LLMProvider       string // openai or stub
	LLMBaseURL        string
	LLMAPIKey         string
	ModelID           string
	LLMMaxRetries     int
	LLMTimeout        time.Duration
	ExtractionTimeout time.Duration

	// Circuit breaker around the generation capability
	BreakerFailureThreshold int
	BreakerOpenDuration     time.Duration

	// Neo4j mirror (optional)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		DatabaseDriver:          getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:             getEnv("DATABASE_DSN", "file:moodgraph.db"),
		LLMProvider:             getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:              getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:               getEnv("LLM_API_KEY", ""),
		ModelID:                 getEnv("MODEL_ID", "gpt-4o-mini"),
		LLMMaxRetries:           getEnvInt("LLM_MAX_RETRIES", 3),
		LLMTimeout:              getEnvSeconds("LLM_TIMEOUT_SECONDS", 30),
		ExtractionTimeout:       getEnvSeconds("EXTRACTION_TIMEOUT_SECONDS", 60),
		BreakerFailureThreshold: getEnvInt("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerOpenDuration:     getEnvSeconds("BREAKER_OPEN_SECONDS", 30),
		Neo4jURI:                getEnv("NEO4J_URI", ""),
		Neo4jUser:               getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:           getEnv("NEO4J_PASSWORD", ""),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	switch c.LLMProvider {
	case "openai":
		if c.LLMBaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required for the openai provider")
		}
		if c.ModelID == "" {
			return fmt.Errorf("MODEL_ID is required for the openai provider")
		}
	case "stub":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or stub, got %q", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	if c.ExtractionTimeout <= 0 {
		return fmt.Errorf("EXTRACTION_TIMEOUT_SECONDS must be positive")
	}
	if c.LLMMaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be at least 1")
	}
	// API key and Neo4j settings are optional for development
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MirrorEnabled reports whether the Neo4j projection should be wired
func (c *Config) MirrorEnabled() bool {
	return c.Neo4jURI != ""
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

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	case "0", "false", "FALSE", "False", "no":
		return false
	}
	return defaultValue
}
