package main

import (
	"os"
	"strconv"
	"time"

	"github.com/dukerupert/toodo/internal/retention"
	"github.com/dukerupert/toodo/internal/server"
	"github.com/dukerupert/toodo/internal/tracker"
)

// Config is read from TOODO_* environment variables.
type Config struct {
	Port              string
	DBPath            string
	LogLevel          string
	LogFormat         string
	RetentionInterval time.Duration
	UndoWindow        time.Duration
	ClearLimit        int
	BackupPassphrase  string
}

func LoadConfig() Config {
	return Config{
		Port:              getEnv("TOODO_PORT", "8080"),
		DBPath:            getEnv("TOODO_DB_PATH", "toodo.db"),
		LogLevel:          getEnv("TOODO_LOG_LEVEL", "info"),
		LogFormat:         getEnv("TOODO_LOG_FORMAT", "text"),
		RetentionInterval: getDuration("TOODO_RETENTION_INTERVAL", retention.DefaultInterval),
		UndoWindow:        getDuration("TOODO_UNDO_WINDOW", tracker.DefaultUndoWindow),
		ClearLimit:        getInt("TOODO_CLEAR_LIMIT", 5),
		BackupPassphrase:  os.Getenv("TOODO_BACKUP_PASSPHRASE"),
	}
}

func (c Config) ServerConfig() server.Config {
	return server.Config{
		UndoWindow:        c.UndoWindow,
		RetentionInterval: c.RetentionInterval,
		ClearLimit:        c.ClearLimit,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}
