// Package config provides configuration management for the staking
// dashboard service. It loads configuration from environment variables and
// .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Explorer ExplorerConfig
	Market   MarketConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Tracker  TrackerConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ExplorerConfig holds block-explorer upstream configuration
type ExplorerConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	PageLimit         int
	WindowMaxPages    int
	SinceMaxPages     int
}

// MarketConfig holds price and swap-quote provider configuration
type MarketConfig struct {
	PriceBaseURL string
	QuoteBaseURL string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

// CacheConfig holds response memoizer configuration. TTLs differ per
// endpoint: the windowed-reward payload goes stale faster than the
// since-based one.
type CacheConfig struct {
	RewardsTTL time.Duration
	EarnedTTL  time.Duration
	MaxEntries int
}

// RedisConfig holds tracker persistence configuration. An empty Addr
// selects the in-memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TrackerConfig holds earnings tracker configuration. A zero RefreshInterval
// disables the background refresh worker.
type TrackerConfig struct {
	Timezone        string
	RefreshInterval time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Explorer: ExplorerConfig{
			BaseURL:           getEnv("EXPLORER_BASE_URL", "https://explorer-api.thetatoken.org/api"),
			Timeout:           getEnvAsDuration("EXPLORER_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getEnvAsFloat("EXPLORER_RPS", 10),
			Burst:             getEnvAsInt("EXPLORER_BURST", 5),
			PageLimit:         getEnvAsInt("EXPLORER_PAGE_LIMIT", 50),
			WindowMaxPages:    getEnvAsInt("EXPLORER_WINDOW_MAX_PAGES", 25),
			SinceMaxPages:     getEnvAsInt("EXPLORER_SINCE_MAX_PAGES", 40),
		},
		Market: MarketConfig{
			PriceBaseURL: getEnv("PRICE_BASE_URL", "https://api.coingecko.com/api/v3"),
			QuoteBaseURL: getEnv("QUOTE_BASE_URL", ""),
			Timeout:      getEnvAsDuration("MARKET_TIMEOUT", 10*time.Second),
			CacheTTL:     getEnvAsDuration("MARKET_CACHE_TTL", 60*time.Second),
		},
		Cache: CacheConfig{
			RewardsTTL: getEnvAsDuration("CACHE_REWARDS_TTL", 45*time.Second),
			EarnedTTL:  getEnvAsDuration("CACHE_EARNED_TTL", 120*time.Second),
			MaxEntries: getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Tracker: TrackerConfig{
			Timezone:        getEnv("TRACKER_TIMEZONE", "Local"),
			RefreshInterval: getEnvAsDuration("TRACKER_REFRESH_INTERVAL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
