// Package config loads configuration from environment variables and the rules file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers understood by models.New.
const (
	ProviderOpenAI     = "openai"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config holds runtime settings.
type Config struct {
	DatabaseURL         string
	LLMProvider         string
	LLMModel            string
	OpenAIAPIKey        string
	XAIAPIKey           string
	OpenRouterAPIKey    string
	GoogleAPIKey        string
	EmbeddingModel      string
	RulesFile           string
	LogLevel            slog.Level
	LogFile             string
	LLMTimeout          time.Duration
	Rephrase            bool
	MemoryEnabled       bool
	HistoryLimit        int
	TopK                int
	SimilarityThreshold float64
	UserName            string
}

// Load reads env vars and applies defaults. Call Validate before using LLM features.
func Load() Config {
	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LLMProvider:      strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
		LLMModel:         os.Getenv("LLM_MODEL"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		XAIAPIKey:        os.Getenv("XAI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
		RulesFile:        os.Getenv("RULES_FILE"),
		LogFile:          os.Getenv("LOG_FILE"),
		UserName:         os.Getenv("USER_NAME"),
	}

	cfg.LogLevel = parseLogLevel(os.Getenv("LOG_LEVEL"))
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", 30*time.Second)
	cfg.Rephrase = getEnvBool("REPHRASE", false)
	cfg.MemoryEnabled = getEnvBool("MEMORY_ENABLED", false)
	cfg.HistoryLimit = getEnvInt("HISTORY_LIMIT", 5)
	cfg.TopK = getEnvInt("TOP_K", 3)
	cfg.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", 0.7)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "lifebot.db"
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOpenAI
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.UserName == "" {
		cfg.UserName = "user"
	}

	return cfg
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderGrok:
		return c.XAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderGemini:
		return c.GoogleAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// UsesPostgres reports whether DatabaseURL points at PostgreSQL.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Validate checks the settings needed for LLM-backed commands.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGrok, ProviderOpenRouter, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("API key for provider %s is required (see OPENAI_API_KEY, XAI_API_KEY, OPENROUTER_API_KEY, GOOGLE_API_KEY)", c.LLMProvider)
	}
	if c.MemoryEnabled {
		if !c.UsesPostgres() {
			return fmt.Errorf("MEMORY_ENABLED requires a postgres DATABASE_URL with pgvector")
		}
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for conversation memory embeddings")
		}
	}
	return nil
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderGrok:
		return "grok-4-fast"
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o-mini"
	}
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
