package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string // debug, info, warn, error

	// Server
	ServerAddr string

	// Open-data API (Socrata SODA)
	SodaBaseURL    string
	SodaAppToken   string        // Optional, raises the API's throttling limits
	SodaTimeout    time.Duration // Per-request timeout for the remote query
	SodaQueryLimit int           // $limit sent with every query

	// Dataset catalog
	DatasetsFile   string // Empty uses the built-in catalog
	FuzzyMinLength int    // Fuzzy values shorter than this are matched exactly

	// Background dataset checks
	DatasetChecks        bool
	DatasetCheckInterval time.Duration

	// Rate limiting
	RedisURL        string // Optional shared limiter storage, e.g. "redis://localhost:6379/0"
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Site Branding
	SiteTitle  string // env: SITE_TITLE, default: "Public Records Lookup"
	SiteFooter string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ServerAddr: getEnv("SERVER_ADDR", ":3000"),

		SodaBaseURL:    getEnv("SODA_BASE_URL", "https://data.seattle.gov"),
		SodaAppToken:   getEnv("SODA_APP_TOKEN", ""),
		SodaTimeout:    getEnvDuration("SODA_TIMEOUT", 15*time.Second),
		SodaQueryLimit: getEnvInt("SODA_QUERY_LIMIT", 1000),

		DatasetsFile:   getEnv("DATASETS_FILE", ""),
		FuzzyMinLength: getEnvInt("FUZZY_MIN_LENGTH", 3),

		DatasetChecks:        getEnvBool("DATASET_CHECKS", true),
		DatasetCheckInterval: getEnvDuration("DATASET_CHECK_INTERVAL", 5*time.Minute),

		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		SiteTitle:  getEnv("SITE_TITLE", "Public Records Lookup"),
		SiteFooter: getEnv("SITE_FOOTER", "Data provided by the City of Seattle Open Data Portal"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("ignoring invalid boolean setting", "key", key, "value", value)
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", value)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
