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
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	TikTok    TikTokConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret                 string
	DefaultReferralPercentage string
}

// TikTokConfig holds TikTok open API settings
type TikTokConfig struct {
	ClientKey    string
	ClientSecret string
	BaseURL      string
}

// SchedulerConfig holds stats refresh job settings
type SchedulerConfig struct {
	RefreshInterval time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	refreshHours, err := strconv.Atoi(getEnv("STATS_REFRESH_INTERVAL_HOURS", "4"))
	if err != nil || refreshHours < 1 {
		refreshHours = 4
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "creator_market"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret:                 getEnv("JWT_SECRET", ""),
			DefaultReferralPercentage: getEnv("DEFAULT_REFERRAL_PERCENTAGE", "10"),
		},
		TikTok: TikTokConfig{
			ClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
			BaseURL:      getEnv("TIKTOK_API_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			RefreshInterval: time.Duration(refreshHours) * time.Hour,
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.TikTok.ClientKey == "" || config.TikTok.ClientSecret == "" {
		return nil, fmt.Errorf("TikTok API credentials are required")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
