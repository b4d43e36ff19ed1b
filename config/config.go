package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	HTTPPort      int
	WebhookSecret string

	// Pattern memory engine parameters
	Memory MemoryConfig

	// Market data feed configuration
	Feed FeedConfig

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Database configuration (optional signal audit log)
	DatabaseEnabled  bool
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Outbound notification listeners, comma separated URLs
	NotifyURLs []string
}

// MemoryConfig holds the pattern memory engine parameters
type MemoryConfig struct {
	SweepIntervalMinutes int
	LearningRate         float64
	SimilarityThreshold  float64
	QueryLimit           int
	BlendLimit           int
	BaseWeight           float64
	HistoryWeight        float64
}

// FeedConfig holds the market data polling parameters
type FeedConfig struct {
	Enabled         bool
	IntervalSeconds int
	// Display symbol -> CoinGecko coin id
	Symbols map[string]string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		Memory: MemoryConfig{
			SweepIntervalMinutes: getEnvInt("MEMORY_SWEEP_INTERVAL_MINUTES", 5),
			LearningRate:         getEnvFloat("MEMORY_LEARNING_RATE", 0.1),
			SimilarityThreshold:  getEnvFloat("MEMORY_SIMILARITY_THRESHOLD", 0.7),
			QueryLimit:           getEnvInt("MEMORY_QUERY_LIMIT", 10),
			BlendLimit:           getEnvInt("MEMORY_BLEND_LIMIT", 5),
			BaseWeight:           getEnvFloat("MEMORY_BASE_WEIGHT", 0.6),
			HistoryWeight:        getEnvFloat("MEMORY_HISTORY_WEIGHT", 0.4),
		},

		Feed: FeedConfig{
			Enabled:         getEnvOrDefault("FEED_ENABLED", "true") == "true",
			IntervalSeconds: getEnvInt("FEED_INTERVAL_SECONDS", 30),
			Symbols:         parseSymbols(getEnvOrDefault("FEED_SYMBOLS", "BTCUSD:bitcoin,ETHUSD:ethereum,BNBUSD:binancecoin,SOLUSD:solana")),
		},

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		DatabaseEnabled:  getEnvOrDefault("DB_ENABLED", "false") == "true",
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "amoeba_signals"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "amoeba"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "amoeba123"),

		NotifyURLs: splitList(os.Getenv("NOTIFY_URLS")),
	}
}

// SweepInterval returns the eviction throttle as a duration.
func (m MemoryConfig) SweepInterval() time.Duration {
	return time.Duration(m.SweepIntervalMinutes) * time.Minute
}

// parseSymbols parses "DISPLAY:coinid,DISPLAY:coinid" pairs.
func parseSymbols(raw string) map[string]string {
	symbols := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		symbols[parts[0]] = parts[1]
	}
	return symbols
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
