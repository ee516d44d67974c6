package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("expected default port 8084, got %d", cfg.Server.Port)
	}
	if cfg.Database.DSN != "bizpulse.db" {
		t.Errorf("expected default DSN, got %q", cfg.Database.DSN)
	}
	if cfg.Upload.MaxBytes != 50<<20 {
		t.Errorf("expected default upload cap, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("expected default bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Logger.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATABASE_DSN", "/tmp/other.db")
	t.Setenv("AUTH_BCRYPT_COST", "12")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Database.DSN != "/tmp/other.db" {
		t.Errorf("expected overridden DSN, got %q", cfg.Database.DSN)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Upload.MaxBytes != 1024 {
		t.Errorf("expected upload cap 1024, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected 5s read timeout, got %v", cfg.Server.ReadTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty DSN", func(c *Config) { c.Database.DSN = "" }},
		{"zero upload cap", func(c *Config) { c.Upload.MaxBytes = 0 }},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 3 }},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 32 }},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 8084}}
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q", got)
	}
}
