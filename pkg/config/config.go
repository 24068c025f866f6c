// Package config holds the explicit configuration object of the
// contract engine. It is built once from defaults, an optional
// YAML file, optional .env files and the process environment,
// then passed to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sink kinds.
const (
	SinkConsole   = "console"
	SinkRedis     = "redis"
	SinkWebSocket = "websocket"
	SinkHTTP      = "http"
	SinkCache     = "cache"
	SinkNone      = "none"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
	LogZap     = "zap"
)

// Config configures instrumentation, result delivery and
// scenario runs.
type Config struct {
	// Enabled turns instrumentation on. When false, wrapped
	// functions are returned unchanged.
	Enabled bool `yaml:"enabled"`

	// SampleCount is the number of argument sets generated per
	// function by the auto-testing path.
	SampleCount int `yaml:"sample_count"`

	// SanitizeDepth bounds how deep recorded values are copied.
	SanitizeDepth int `yaml:"sanitize_depth"`

	Verbose   bool   `yaml:"verbose"`
	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	Sink     SinkConfig     `yaml:"sink"`
	Cache    CacheConfig    `yaml:"cache"`
	Scenario ScenarioConfig `yaml:"scenario"`
}

// SinkConfig selects and configures result destinations.
type SinkConfig struct {
	Kinds         []string `yaml:"kinds"`
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	RedisDB       int      `yaml:"redis_db"`
	RedisChannel  string   `yaml:"redis_channel"`
	WebSocketURL  string   `yaml:"websocket_url"`
	HTTPURL       string   `yaml:"http_url"`
	HTTPToken     string   `yaml:"http_token"`

	// Fallback is the capacity of the queue holding records
	// that could not be delivered. Zero disables it.
	Fallback int `yaml:"fallback"`
}

// CacheConfig sizes the result cache.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// ScenarioConfig tunes scenario runs.
type ScenarioConfig struct {
	// Timeout bounds the wait for every deferred validation
	// of a run to complete.
	Timeout time.Duration `yaml:"timeout"`

	// Concurrency bounds how many scenario files are loaded
	// in parallel.
	Concurrency int `yaml:"concurrency"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Enabled:       true,
		SampleCount:   5,
		SanitizeDepth: 8,
		LogFormat:     LogConsole,
		LogLevel:      "info",
		Sink: SinkConfig{
			Kinds:        []string{SinkConsole},
			RedisAddr:    "localhost:6379",
			RedisChannel: "contracts.records",
		},
		Cache: CacheConfig{
			Size: 1024,
			TTL:  5 * time.Minute,
		},
		Scenario: ScenarioConfig{
			Timeout:     30 * time.Second,
			Concurrency: 4,
		},
	}
}

// Load builds a configuration from defaults, the YAML file at
// path (skipped when empty) and the variables of loader
// (skipped when nil), then validates it.
func Load(path string, loader *EnvLoader) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if loader != nil {
		if err := cfg.ApplyEnv(loader); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CONTRACTS_* variables.
func (c *Config) ApplyEnv(l *EnvLoader) error {
	s := &envSetter{l: l}
	s.boolean("ENABLED", &c.Enabled)
	s.integer("SAMPLE_COUNT", &c.SampleCount)
	s.integer("SANITIZE_DEPTH", &c.SanitizeDepth)
	s.boolean("VERBOSE", &c.Verbose)
	s.str("LOG_FORMAT", &c.LogFormat)
	s.str("LOG_LEVEL", &c.LogLevel)
	s.list("SINK", &c.Sink.Kinds)
	s.str("REDIS_ADDR", &c.Sink.RedisAddr)
	s.str("REDIS_PASSWORD", &c.Sink.RedisPassword)
	s.integer("REDIS_DB", &c.Sink.RedisDB)
	s.str("REDIS_CHANNEL", &c.Sink.RedisChannel)
	s.str("WEBSOCKET_URL", &c.Sink.WebSocketURL)
	s.str("HTTP_URL", &c.Sink.HTTPURL)
	s.str("HTTP_TOKEN", &c.Sink.HTTPToken)
	s.integer("SINK_FALLBACK", &c.Sink.Fallback)
	s.integer("CACHE_SIZE", &c.Cache.Size)
	s.duration("CACHE_TTL", &c.Cache.TTL)
	s.duration("SCENARIO_TIMEOUT", &c.Scenario.Timeout)
	s.integer("SCENARIO_CONCURRENCY", &c.Scenario.Concurrency)
	return errors.Join(s.errs...)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.SampleCount < 0 {
		errs = append(errs, fmt.Errorf("sample_count must not be negative"))
	}
	if c.SanitizeDepth <= 0 {
		errs = append(errs, fmt.Errorf("sanitize_depth must be positive"))
	}
	switch c.LogFormat {
	case LogConsole, LogJSON, LogZap:
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	for _, kind := range c.Sink.Kinds {
		switch kind {
		case SinkConsole, SinkCache, SinkNone:
		case SinkRedis:
			if c.Sink.RedisAddr == "" || c.Sink.RedisChannel == "" {
				errs = append(errs, fmt.Errorf("redis sink needs redis_addr and redis_channel"))
			}
		case SinkWebSocket:
			if c.Sink.WebSocketURL == "" {
				errs = append(errs, fmt.Errorf("websocket sink needs websocket_url"))
			}
		case SinkHTTP:
			if c.Sink.HTTPURL == "" {
				errs = append(errs, fmt.Errorf("http sink needs http_url"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown sink kind %q", kind))
		}
	}
	if c.Sink.Fallback < 0 {
		errs = append(errs, fmt.Errorf("sink fallback must not be negative"))
	}
	if c.Cache.Size <= 0 {
		errs = append(errs, fmt.Errorf("cache size must be positive"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive"))
	}
	if c.Scenario.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scenario timeout must be positive"))
	}
	if c.Scenario.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("scenario concurrency must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	out.Sink.Kinds = append([]string(nil), c.Sink.Kinds...)
	out.Sink.RedisPassword = RedactSecret(c.Sink.RedisPassword)
	out.Sink.WebSocketURL = RedactURL(c.Sink.WebSocketURL)
	out.Sink.HTTPURL = RedactURL(c.Sink.HTTPURL)
	out.Sink.HTTPToken = RedactSecret(c.Sink.HTTPToken)
	return out
}

// FromEnv builds a configuration from defaults and the process
// environment only.
func FromEnv() (*Config, error) {
	return Load("", NewEnvLoader())
}
