package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DBPath     string // path to the sqlite database file
	PluginsDir string // root directory holding one subdirectory per plugin
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LIFELOG_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LIFELOG_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LIFELOG_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LIFELOG_PRETTY_LOG", true),

		// Storage
		DBPath:     getenv("LIFELOG_DB_PATH", "lifelog.db"),
		PluginsDir: getenv("LIFELOG_PLUGINS_DIR", "plugins"),
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
