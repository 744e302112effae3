package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// API
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string

	// Client state
	StateDir string

	// Polling
	ChatPollInterval         time.Duration
	NotificationPollInterval time.Duration

	// Environment
	Env      string
	LogLevel string
}

func Load() *Config {
	// Load .env file in development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		BaseURL:        strings.TrimRight(getEnv("SKILLSHIKHI_API_URL", "http://localhost:3000"), "/"),
		RequestTimeout: parseDuration(getEnv("SKILLSHIKHI_REQUEST_TIMEOUT", "10s")),
		UserAgent:      getEnv("SKILLSHIKHI_USER_AGENT", "skillshikhi-go"),

		StateDir: getEnv("SKILLSHIKHI_STATE_DIR", defaultStateDir()),

		ChatPollInterval:         parseDuration(getEnv("SKILLSHIKHI_CHAT_POLL_INTERVAL", "10s")),
		NotificationPollInterval: parseDuration(getEnv("SKILLSHIKHI_NOTIF_POLL_INTERVAL", "60s")),

		Env:      getEnv("SKILLSHIKHI_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// IsDevelopment returns true in dev environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// defaultStateDir resolves the per-user state directory
func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "skillshikhi")
	}
	return ".skillshikhi"
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseDuration parses duration string with fallback to 10s
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
