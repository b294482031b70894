package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want %q", cfg.ListenPort, ":8080")
	}
	if cfg.DBPath != "lifelog.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "lifelog.db")
	}
	if cfg.PluginsDir != "plugins" {
		t.Errorf("PluginsDir = %q, want %q", cfg.PluginsDir, "plugins")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 5*time.Second)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LIFELOG_LISTEN_PORT", ":9090")
	t.Setenv("LIFELOG_DB_PATH", "/tmp/test.db")
	t.Setenv("LIFELOG_PRETTY_LOG", "false")
	t.Setenv("LIFELOG_SHUTDOWN_TIMEOUT", "10s")

	cfg := Load()

	if cfg.ListenPort != ":9090" {
		t.Errorf("ListenPort = %q, want %q", cfg.ListenPort, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.PrettyLog {
		t.Error("PrettyLog = true, want false")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, 10*time.Second)
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{name: "valid duration", value: "30s", def: time.Second, expected: 30 * time.Second},
		{name: "invalid duration falls back", value: "nope", def: time.Second, expected: time.Second},
		{name: "unset falls back", value: "", def: 2 * time.Minute, expected: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_DURATION", tt.value)
			}
			if got := mustDuration("TEST_DURATION", tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true", value: "true", def: false, expected: true},
		{name: "false", value: "false", def: true, expected: false},
		{name: "garbage falls back", value: "maybe", def: true, expected: true},
		{name: "unset falls back", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_BOOL", tt.value)
			}
			if got := mustBool("TEST_BOOL", tt.def); got != tt.expected {
				t.Errorf("mustBool() = %v, want %v", got, tt.expected)
			}
		})
	}
}
