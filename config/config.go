package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StateBackendSQLite = "sqlite"
	StateBackendBolt   = "bolt"
)

type Config struct {
	// Bot Configuration
	BotToken string

	// Admin Configuration
	AdminID         int64
	BackupChannelID int64
	AdminUsername   string
	AdminPassword   string
	JWTSecret       string

	// Batch Configuration
	BatchRestartAllowed bool

	// Server Configuration
	APIPort       int
	WebhookURL    string
	WebhookPath   string
	WebhookSecret string

	// Storage Configuration
	DatabasePath string
	StateBackend string
	BoltPath     string

	// Logging Configuration
	LogLevel string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:            getEnv("BOT_TOKEN", ""),
		AdminID:             getEnvInt64("ADMIN_ID", 0),
		BackupChannelID:     getEnvInt64("BACKUP_CHANNEL_ID", 0),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		BatchRestartAllowed: getEnvBool("BATCH_RESTART_ALLOWED", false),
		APIPort:             getEnvInt("API_PORT", 8080),
		WebhookURL:          getEnv("WEBHOOK_URL", ""),
		WebhookPath:         getEnv("WEBHOOK_PATH", "/webhook"),
		WebhookSecret:       getEnv("WEBHOOK_SECRET", ""),
		DatabasePath:        getEnv("DATABASE_PATH", "./data/bot.db"),
		StateBackend:        strings.ToLower(getEnv("STATE_BACKEND", StateBackendSQLite)),
		BoltPath:            getEnv("BOLT_PATH", "./data/state.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required and must be a numeric telegram user id")
	}
	if c.BackupChannelID == 0 {
		return fmt.Errorf("BACKUP_CHANNEL_ID is required and must be a numeric chat id")
	}
	switch c.StateBackend {
	case StateBackendSQLite, StateBackendBolt:
	default:
		return fmt.Errorf("STATE_BACKEND must be %q or %q, got %q", StateBackendSQLite, StateBackendBolt, c.StateBackend)
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with '/', got %q", c.WebhookPath)
	}
	if c.WebhookURL != "" && !strings.HasPrefix(c.WebhookURL, "https://") {
		return fmt.Errorf("WEBHOOK_URL must be https://, got %q", c.WebhookURL)
	}
	if c.AdminPassword != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD is set")
	}
	return nil
}

// AdminAPIEnabled reports whether the REST admin panel can issue tokens.
func (c *Config) AdminAPIEnabled() bool {
	return c.AdminPassword != "" && c.JWTSecret != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnv(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	valStr := strings.TrimSpace(getEnv(key, ""))
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}
