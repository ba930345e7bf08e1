package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Loaded once at process start and treated as immutable afterwards.
//
// Environment Variables:
// Audio Resolution Providers:
// - RAPIDAPI_KEY: API key shared by all audio-resolution providers (required)
// - RAPIDAPI_HOSTS: comma-separated provider hosts, tried in order
//   (default: youtube-mp36.p.rapidapi.com)
//
// Transcription Backend:
// - ASSEMBLYAI_API_KEY: API key for the transcription backend (required)
// - ASSEMBLYAI_API_URL: backend base URL (default: https://api.assemblyai.com/v2)
//
// Workflow Tuning:
// - RESOLVE_MAX_ATTEMPTS: polling attempts per provider (default: 25)
// - RESOLVE_INTERVAL: sleep between polls (default: 3s)
// - RELAY_MAX_ATTEMPTS: audio relay attempts (default: 3)
// - RELAY_DELAY: sleep between relay attempts (default: 1500ms)
// - JOB_RETENTION: how long submitted-job metadata is kept (default: 24h)
// - JOB_SWEEP_CRON: schedule for pruning aged job metadata (default: hourly)
//
// Server:
// - LISTEN_ADDR: HTTP listen address (default: :8080)
// - DEFAULT_LANGUAGE: language used when a request omits one (default: zh)
type Config struct {
	Resolver ResolverConfig `json:"resolver"`
	Backend  BackendConfig  `json:"backend"`
	Jobs     JobsConfig     `json:"jobs"`
	Server   ServerConfig   `json:"server"`
}

// ResolverConfig holds the audio-resolution provider configuration.
type ResolverConfig struct {
	APIKey      string        `json:"-"`
	Providers   []Provider    `json:"providers"`
	MaxAttempts int           `json:"max_attempts"`
	Interval    time.Duration `json:"interval"`
}

// BackendConfig holds the transcription backend configuration.
type BackendConfig struct {
	APIKey           string        `json:"-"`
	BaseURL          string        `json:"base_url"`
	RelayMaxAttempts int           `json:"relay_max_attempts"`
	RelayDelay       time.Duration `json:"relay_delay"`
}

// JobsConfig holds the submitted-job registry configuration.
type JobsConfig struct {
	Retention time.Duration `json:"retention"`
	SweepExpr string        `json:"sweep_expr"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	ListenAddr      string `json:"listen_addr"`
	DefaultLanguage string `json:"default_language"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// WithProviders replaces the configured provider table.
func WithProviders(providers []Provider) Option {
	return func(c *Config) {
		c.Resolver.Providers = providers
	}
}

// WithBackendBaseURL overrides the transcription backend base URL.
func WithBackendBaseURL(u string) Option {
	return func(c *Config) {
		c.Backend.BaseURL = u
	}
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Resolver: ResolverConfig{
			APIKey:      getEnvString("RAPIDAPI_KEY", ""),
			Providers:   DefaultProviders(splitHosts(getEnvString("RAPIDAPI_HOSTS", defaultProviderHost))),
			MaxAttempts: getEnvInt("RESOLVE_MAX_ATTEMPTS", 25),
			Interval:    getEnvDuration("RESOLVE_INTERVAL", 3*time.Second),
		},
		Backend: BackendConfig{
			APIKey:           getEnvString("ASSEMBLYAI_API_KEY", ""),
			BaseURL:          getEnvString("ASSEMBLYAI_API_URL", "https://api.assemblyai.com/v2"),
			RelayMaxAttempts: getEnvInt("RELAY_MAX_ATTEMPTS", 3),
			RelayDelay:       getEnvDuration("RELAY_DELAY", 1500*time.Millisecond),
		},
		Jobs: JobsConfig{
			Retention: getEnvDuration("JOB_RETENTION", 24*time.Hour),
			SweepExpr: getEnvString("JOB_SWEEP_CRON", "0 * * * *"),
		},
		Server: ServerConfig{
			ListenAddr:      getEnvString("LISTEN_ADDR", ":8080"),
			DefaultLanguage: getEnvString("DEFAULT_LANGUAGE", LanguageChinese),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Resolver.APIKey == "" {
		return fmt.Errorf("RAPIDAPI_KEY is required")
	}
	if c.Backend.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if len(c.Resolver.Providers) == 0 {
		return fmt.Errorf("at least one audio provider is required")
	}
	if _, err := NormalizeLanguage(c.Server.DefaultLanguage); err != nil {
		return fmt.Errorf("DEFAULT_LANGUAGE: %w", err)
	}
	return nil
}

func splitHosts(raw string) []string {
	parts := strings.Split(raw, ",")
	ret := make([]string, 0, len(parts))
	for _, p := range parts {
		if host := strings.TrimSpace(p); host != "" {
			ret = append(ret, host)
		}
	}
	return ret
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment variables with default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
