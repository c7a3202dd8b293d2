package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel    string            `toml:"log_level"`
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Session     SessionConfig     `toml:"session"`
	Credentials CredentialsConfig `toml:"credentials"`
	RateLimit   RateLimitConfig   `toml:"ratelimit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	BaseURL      string   `toml:"base_url"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SessionConfig selects and configures the browser session store.
type SessionConfig struct {
	Driver        string   `toml:"driver"`
	Secret        string   `toml:"secret"`
	CookieName    string   `toml:"cookie_name"`
	TTL           Duration `toml:"ttl"`
	Secure        bool     `toml:"secure"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisPrefix   string   `toml:"redis_prefix"`
}

// minSecretLength is the shortest session secret accepted for signing cookies.
const minSecretLength = 32

// CheckSecret reports whether the session secret can sign cookies.
func (s SessionConfig) CheckSecret() error {
	switch {
	case s.Secret == "":
		return fmt.Errorf("%w: session.secret is required (run `setup database` to generate one)", ErrInvalidConfig)
	case len(s.Secret) < minSecretLength:
		return fmt.Errorf("%w: session.secret must be at least %d characters", ErrInvalidConfig, minSecretLength)
	}
	return nil
}

// CredentialsConfig contains OAuth provider credentials.
type CredentialsConfig struct {
	GitHub OAuthConfig `toml:"github"`
}

// OAuthConfig contains an OAuth2 client registration.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether both client id and secret are present.
func (o OAuthConfig) Configured() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// RateLimitConfig bounds requests per client IP on auth and vote endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Duration wraps [time.Duration] so TOML strings like "10s" decode directly.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	switch c.Session.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: unknown session driver %q", ErrInvalidConfig, c.Session.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("%w: server.port must be positive", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
//
// The session secret is filled in with a freshly generated value.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	secret, err := GenerateSecret()
	if err != nil {
		return err
	}
	data := bytes.Replace(exampleConf, []byte("\nsecret = \"\""), []byte(fmt.Sprintf("\nsecret = %q", secret)), 1)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
