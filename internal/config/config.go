package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string

	// API Configuration
	APIPort string
	APIHost string

	// Commerce catalog service
	CommerceBaseURL string
	TenantID        string

	// Feed provider (merchant API)
	FeedBaseURL      string
	FeedTokenURL     string
	FeedClientEmail  string
	FeedPrivateKey   string
	FeedPrivateKeyID string

	// Static configuration files
	MarketsConfigPath  string
	MappingsConfigPath string

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", "sqlite://feedsync.db"),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "catalog-change-events"),
		APIPort:            getEnv("API_PORT", "8080"),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		CommerceBaseURL:    getEnv("COMMERCE_BASE_URL", "https://catalog-service.example.com"),
		TenantID:           getEnv("COMMERCE_TENANT_ID", ""),
		FeedBaseURL:        getEnv("FEED_BASE_URL", "https://merchantapi.googleapis.com"),
		FeedTokenURL:       getEnv("FEED_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		FeedClientEmail:    getEnv("FEED_CLIENT_EMAIL", ""),
		FeedPrivateKey:     getEnv("FEED_PRIVATE_KEY", ""),
		FeedPrivateKeyID:   getEnv("FEED_PRIVATE_KEY_ID", ""),
		MarketsConfigPath:  getEnv("MARKETS_CONFIG_PATH", "configs/markets.yaml"),
		MappingsConfigPath: getEnv("MAPPINGS_CONFIG_PATH", "configs/mappings.yaml"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
