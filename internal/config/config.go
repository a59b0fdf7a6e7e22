package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret  string
	JWTExpiry  time.Duration
	BCryptCost int

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// S3 Storage (receipt uploads)
	S3 S3Config

	// External data feeds
	Weather WeatherConfig
	Market  MarketConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// WeatherConfig holds the weather feed settings
type WeatherConfig struct {
	BaseURL string
	APIKey  string
	City    string
	Timeout time.Duration
}

// MarketConfig holds the market data feed settings
type MarketConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTExpiry:   getDuration("JWT_EXPIRY", 24*time.Hour),
		BCryptCost:  getInt("BCRYPT_COST", 10),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:         getEnv("ENV", "development"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "fintrack-receipts"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Weather: WeatherConfig{
			BaseURL: getEnv("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5"),
			APIKey:  getEnv("WEATHER_API_KEY", ""),
			City:    getEnv("WEATHER_CITY", "Chennai"),
			Timeout: getDuration("WEATHER_TIMEOUT", 5*time.Second),
		},
		Market: MarketConfig{
			BaseURL: getEnv("MARKET_API_URL", "https://www.alphavantage.co/query"),
			APIKey:  getEnv("MARKET_API_KEY", ""),
			Timeout: getDuration("MARKET_TIMEOUT", 5*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
