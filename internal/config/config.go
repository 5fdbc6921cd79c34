package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Addr            string          `mapstructure:"addr"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64           `mapstructure:"max_body_bytes"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds ingress traffic. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type NormalizeConfig struct {
	MinSubstantialLength int  `mapstructure:"min_substantial_length"`
	StripReasoning       bool `mapstructure:"strip_reasoning"`
}

type CatalogConfig struct {
	BaseURL    string   `mapstructure:"base_url"`
	Languages  []string `mapstructure:"languages"`
	StoryForms []string `mapstructure:"story_forms"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.rate_limit.rps", 0)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("normalize.min_substantial_length", 30)
	v.SetDefault("normalize.strip_reasoning", false)

	v.SetDefault("catalog.base_url", "http://localhost:8000/v1/generate")
	v.SetDefault("catalog.languages", []string{})
	v.SetDefault("catalog.story_forms", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "codeai")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CODEAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Server.Addr == "" {
		warnings = append(warnings, "server.addr is empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		warnings = append(warnings, fmt.Sprintf("server.max_body_bytes %d disables the request size limit", c.Server.MaxBodyBytes))
	}
	if c.Server.RateLimit.RPS < 0 {
		warnings = append(warnings, fmt.Sprintf("server.rate_limit.rps %.2f is negative", c.Server.RateLimit.RPS))
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		warnings = append(warnings, fmt.Sprintf("server.rate_limit.burst %d rejects every request", c.Server.RateLimit.Burst))
	}

	if c.Normalize.MinSubstantialLength < 0 {
		warnings = append(warnings, fmt.Sprintf("normalize.min_substantial_length %d is negative", c.Normalize.MinSubstantialLength))
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("log.level '%s' is not recognized, using info", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("log.format '%s' is not recognized, using text", c.Log.Format))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing.sample_rate %.2f is outside range [0.0, 1.0]", c.Tracing.SampleRate))
	}

	return warnings
}

// Load reads configuration from file and environment. An empty path or a
// missing file falls back to defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
			slog.Warn("Config file not found, using defaults", "path", path)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	for _, warning := range cfg.Validate() {
		slog.Warn("Config warning", "warning", warning)
	}

	return cfg, nil
}
