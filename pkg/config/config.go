package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageSQLite  = "sqlite"
	StorageMongoDB = "mongodb"
)

// Config holds all configuration for the application
type Config struct {
	Environment   string
	IsProduction  bool
	IsDevelopment bool
	LogLevel      string
	LogDir        string

	// Storage Configuration
	StorageDriver   string
	SQLitePath      string
	MongoDBURI      string
	MongoDBDatabase string

	// Crawler Configuration
	HTTPTimeout  time.Duration
	UserAgent    string
	PollInterval time.Duration

	// Discord Notifications
	DiscordToken    string
	NotifyChannelID string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDir:          getEnv("LOG_DIR", "logs"),
		StorageDriver:   getEnv("STORAGE_DRIVER", StorageSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", "scraper_app.db"),
		MongoDBURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
		UserAgent:       getEnv("USER_AGENT", ""),
		DiscordToken:    getEnv("DISCORD_TOKEN", ""),
		NotifyChannelID: getEnv("NOTIFY_CHANNEL_ID", ""),
	}

	// Derived properties
	cfg.IsProduction = cfg.Environment == "production"
	cfg.IsDevelopment = !cfg.IsProduction

	if cfg.MongoDBDatabase == "" {
		cfg.MongoDBDatabase = "pagecrawl"
		if cfg.IsDevelopment {
			cfg.MongoDBDatabase = "pagecrawl_dev"
		}
	}

	cfg.HTTPTimeout = time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.PollInterval = time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 60)) * time.Second

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable is required for the sqlite driver")
		}
	case StorageMongoDB:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI environment variable is required for the mongodb driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageSQLite, StorageMongoDB, c.StorageDriver)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}

	if c.NotifyChannelID != "" && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN environment variable is required when NOTIFY_CHANNEL_ID is set")
	}

	return nil
}

// NotificationsEnabled reports whether job outcomes are posted to Discord
func (c *Config) NotificationsEnabled() bool {
	return c.DiscordToken != "" && c.NotifyChannelID != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt parses an integer environment variable, falling back to the
// default when unset or malformed
func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
