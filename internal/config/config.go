package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MaxGenerationAttempts caps image generation attempts per call, first try included.
const MaxGenerationAttempts = 3

type Config struct {
	// Gemini API
	GeminiAPIKey       string
	FastModel          string
	ProModel           string
	ImageModel         string
	ImageEditModel     string
	ChatModel          string
	ThinkingBudget     int
	RequestTimeout     time.Duration
	GenerationAttempts int

	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Design service
	StyleConcurrency int
	PreviewTTL       time.Duration

	// Server
	Port        string
	Environment string
	LogLevel    string
}

func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		FastModel:          getEnv("GEMINI_FAST_MODEL", "gemini-2.5-flash"),
		ProModel:           getEnv("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		ImageModel:         getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		ImageEditModel:     getEnv("GEMINI_IMAGE_EDIT_MODEL", "gemini-2.5-flash-image"),
		ChatModel:          getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		ThinkingBudget:     getEnvInt("GEMINI_THINKING_BUDGET", 8192),
		RequestTimeout:     getEnvDuration("GEMINI_REQUEST_TIMEOUT", 60*time.Second),
		GenerationAttempts: getEnvInt("GEMINI_GENERATION_ATTEMPTS", 3),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "room-designs"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StyleConcurrency: getEnvInt("STYLE_CONCURRENCY", 3),
		PreviewTTL:       getEnvDuration("PREVIEW_TTL", 30*time.Minute),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.GenerationAttempts < 1 || c.GenerationAttempts > MaxGenerationAttempts {
		return fmt.Errorf("GEMINI_GENERATION_ATTEMPTS must be between 1 and %d", MaxGenerationAttempts)
	}
	if c.StyleConcurrency < 1 {
		return fmt.Errorf("STYLE_CONCURRENCY must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("GEMINI_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// StorageEnabled reports whether image bytes should be offloaded to Supabase Storage.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
