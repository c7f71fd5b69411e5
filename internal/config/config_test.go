package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.UpstreamBaseURL != "https://opentdb.com" {
		t.Errorf("UpstreamBaseURL = %q", cfg.UpstreamBaseURL)
	}
	if cfg.UpstreamTimeout != 10*time.Second || cfg.StoreTimeout != 5*time.Second {
		t.Errorf("timeouts = %s / %s", cfg.UpstreamTimeout, cfg.StoreTimeout)
	}
	if cfg.PlatformMarker != "Android" || cfg.TopCategoriesLimit != 15 || cfg.TopUserAgentsLimit != 5 {
		t.Errorf("analytics settings = %q %d %d", cfg.PlatformMarker, cfg.TopCategoriesLimit, cfg.TopUserAgentsLimit)
	}
	if !slices.Equal(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("UPSTREAM_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.UpstreamTimeout != 250*time.Millisecond {
		t.Errorf("UpstreamTimeout = %s", cfg.UpstreamTimeout)
	}
	if !slices.Equal(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"zero store timeout", "STORE_TIMEOUT", "0s"},
		{"bad duration", "UPSTREAM_TIMEOUT", "soon"},
		{"bad limit", "TOP_CATEGORIES_LIMIT", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
