// Package config loads the mcpbridge command configuration: a YAML file layered
// over Default. Command-line flags override the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/mcpbridge/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config is the complete command configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	API    APIConfig    `yaml:"api"`
	Store  StoreConfig  `yaml:"store"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL roots the ambient request of stdio tool calls.
	BaseURL string `yaml:"base_url"`
	Name    string `yaml:"name"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type APIConfig struct {
	// Group pins the exposed API version. Empty means the last one.
	Group string `yaml:"group"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"` // memory or redis
	Redis  RedisConfig `yaml:"redis"`
	Seed   SeedConfig  `yaml:"seed"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// SeedConfig describes the sample forecasts generated at startup.
type SeedConfig struct {
	Days  int    `yaml:"days"`
	Seed  uint64 `yaml:"seed"`
	Start string `yaml:"start"` // YYYY-MM-DD, empty means today
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080/",
			Name:    "mcpbridge",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Store: StoreConfig{
			Driver: "memory",
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Seed:   SeedConfig{Days: 30, Seed: 42},
		},
	}
}

// Load reads path over Default and validates the result.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	switch c.Store.Driver {
	case "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			errs = append(errs, errors.New("store.redis.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.Seed.Days < 0 {
		errs = append(errs, errors.New("store.seed.days must not be negative"))
	}
	if c.Store.Seed.Start != "" {
		if _, err := time.Parse(time.DateOnly, c.Store.Seed.Start); err != nil {
			errs = append(errs, fmt.Errorf("store.seed.start: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SeedStart returns the first seeded day, defaulting to now's date.
func (s SeedConfig) SeedStart(now time.Time) time.Time {
	if t, err := time.Parse(time.DateOnly, s.Start); err == nil {
		return t
	}
	return now.UTC()
}
