package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration, read once from the environment.
type Config struct {
	Environment string
	LogLevel    slog.Level

	RedisURL string
	DataDir  string

	// SessionTTL is how long an idle session survives in storage.
	SessionTTL time.Duration
	// LockTTL bounds the per-session turn lock, so a crashed handler
	// cannot wedge a session forever.
	LockTTL time.Duration
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		SessionTTL:  time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		LockTTL:     time.Duration(getEnvInt("LOCK_TTL_SECONDS", 30)) * time.Second,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
