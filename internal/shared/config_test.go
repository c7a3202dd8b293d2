package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mediaranker.db" {
			t.Errorf("expected database path ./mediaranker.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}
		if config.Session.Driver != "memory" {
			t.Errorf("expected memory session driver, got %s", config.Session.Driver)
		}
		if config.Session.TTL.Duration != 168*time.Hour {
			t.Errorf("expected session ttl 168h, got %v", config.Session.TTL.Duration)
		}
		if config.Credentials.GitHub.Configured() {
			t.Errorf("expected github credentials to be unset, got client_id %q", config.Credentials.GitHub.ClientID)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
		if err := config.Session.CheckSecret(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected default config to carry no usable session secret, got %v", err)
		}
	})

	t.Run("CheckSecret", func(t *testing.T) {
		tests := []struct {
			secret string
			valid  bool
		}{
			{"", false},
			{"short-secret", false},
			{strings.Repeat("x", 32), true},
		}

		for _, tt := range tests {
			err := SessionConfig{Secret: tt.secret}.CheckSecret()
			if tt.valid && err != nil {
				t.Errorf("secret %q: expected no error, got %v", tt.secret, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("secret %q: expected ErrInvalidConfig, got %v", tt.secret, err)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}
		if err := config.Session.CheckSecret(); err != nil {
			t.Errorf("expected created config to carry a generated secret: %v", err)
		}
		if config.Credentials.GitHub.ClientSecret != "" {
			t.Errorf("expected client_secret to stay empty, got %q", config.Credentials.GitHub.ClientSecret)
		}

		otherPath := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(otherPath); err != nil {
			t.Fatalf("failed to create second config file: %v", err)
		}
		other, err := LoadConfig(otherPath)
		if err != nil {
			t.Fatalf("failed to load second config: %v", err)
		}
		if other.Session.Secret == config.Session.Secret {
			t.Error("expected each created config to get its own secret")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("expected error when config file already exists")
		}
	})

	t.Run("LoadConfig partial file keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		content := "[server]\nport = 8080\n\n[session]\nttl = \"1h\"\n"
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
		if config.Session.TTL.Duration != time.Hour {
			t.Errorf("expected ttl 1h, got %v", config.Session.TTL.Duration)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host, got %s", config.Server.Host)
		}
	})

	t.Run("LoadConfig rejects unknown session driver", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[session]\ndriver = \"memcached\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[session]\nttl = \"forever\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for bad duration")
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig round trips", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.GitHub.ClientID = "abc123"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.GitHub.ClientID != "abc123" {
			t.Errorf("expected client id abc123, got %s", loaded.Credentials.GitHub.ClientID)
		}
		if loaded.Server.ReadTimeout.Duration != config.Server.ReadTimeout.Duration {
			t.Errorf("expected read timeout to round trip")
		}
	})
}
