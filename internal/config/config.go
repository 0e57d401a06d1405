package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service
	HTTPPort int `env:"HTTP_PORT" default:"8000"`

	// Storage paths
	DatabasePath    string `env:"DATABASE_PATH" default:"./data/gameplex.db"`
	GameLibraryPath string `env:"GAME_LIBRARY_PATH" default:"./gamelibrary"`
	SavesPath       string `env:"SAVES_STORAGE_PATH" default:"./saves"`
	StaticPath      string `env:"STATIC_FILES_PATH" default:"./static"`

	// External metadata service
	RAWGAPIURL string `env:"RAWG_API_URL" default:"https://api.rawg.io/api"`
	RAWGAPIKey string `env:"RAWG_API_KEY"`

	// Upstream HTTP behaviour. Requests to RAWG and image hosts carry this
	// timeout and are never retried.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" default:"15s"`

	// Scanner
	MaxScreenshots int `env:"MAX_SCREENSHOTS" default:"6"`

	// Cloud saves: number of rotating save versions kept per (user, game)
	SavesLimit int `env:"SAVES_LIMIT" default:"6"`

	// Development
	LogLevel string `env:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env from the working directory; a missing file is fine,
	// system env vars still apply.
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8000); err != nil {
		return nil, err
	}

	// Paths
	if err := loadEnvString(&config.DatabasePath, "DATABASE_PATH", "./data/gameplex.db"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.GameLibraryPath, "GAME_LIBRARY_PATH", "./gamelibrary"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SavesPath, "SAVES_STORAGE_PATH", "./saves"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.StaticPath, "STATIC_FILES_PATH", "./static"); err != nil {
		return nil, err
	}

	// External metadata service
	if err := loadEnvString(&config.RAWGAPIURL, "RAWG_API_URL", "https://api.rawg.io/api"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RAWGAPIKey, "RAWG_API_KEY", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.UpstreamTimeout, "UPSTREAM_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	// Scanner / saves
	if err := loadEnvInt(&config.MaxScreenshots, "MAX_SCREENSHOTS", 6); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.SavesLimit, "SAVES_LIMIT", 6); err != nil {
		return nil, err
	}

	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}

	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	if c.MaxScreenshots < 0 {
		errors = append(errors, "MAX_SCREENSHOTS must not be negative")
	}
	if c.SavesLimit < 1 {
		errors = append(errors, "SAVES_LIMIT must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
