package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	// File is an optional YAML file overlaid on top of the environment.
	File string `envconfig:"DOCDESK_CONFIG" yaml:"-"`

	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds the local view API listener.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080" yaml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" yaml:"host"`
}

// BackendConfig describes the remote document backend.
type BackendConfig struct {
	BaseURL string `envconfig:"FAST_API_URL" default:"http://localhost:8000" yaml:"base_url"`
	// Timeout of zero means requests never time out.
	Timeout           time.Duration `envconfig:"BACKEND_TIMEOUT" default:"0s" yaml:"timeout"`
	RequestsPerSecond float64       `envconfig:"BACKEND_RPS" default:"0" yaml:"requests_per_second"`
	// SessionCookie seeds the cookie jar as "name=value".
	SessionCookie   string        `envconfig:"BACKEND_SESSION_COOKIE" yaml:"session_cookie"`
	UserAgent       string        `envconfig:"BACKEND_USER_AGENT" default:"docdesk/1.0" yaml:"user_agent"`
	BreakerFailures uint32        `envconfig:"BACKEND_BREAKER_FAILURES" default:"10" yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `envconfig:"BACKEND_BREAKER_TIMEOUT" default:"30s" yaml:"breaker_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds per-IP rate limiting for the local API.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// CORSConfig lists origins allowed to call the local API with credentials.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000" yaml:"allow_origins"`
}

// Load loads configuration from environment variables, then overlays the
// optional YAML file named by DOCDESK_CONFIG.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.File != "" {
		if err := cfg.overlayFile(cfg.File); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "127.0.0.1",
		},
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8000",
			UserAgent:       "docdesk/1.0",
			BreakerFailures: 10,
			BreakerTimeout:  30 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Validate checks fields that would otherwise fail at first use.
func (c *Config) Validate() error {
	return validation.Errors{
		"backend": validation.ValidateStruct(&c.Backend,
			validation.Field(&c.Backend.BaseURL, validation.Required, is.URL),
			validation.Field(&c.Backend.Timeout, validation.Min(time.Duration(0))),
			validation.Field(&c.Backend.RequestsPerSecond, validation.Min(float64(0))),
		),
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Port, validation.Required, is.Port),
		),
		"logging": validation.ValidateStruct(&c.Logging,
			validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "error")),
		),
	}.Filter()
}

// Addr returns the listen address for the local API.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}
