// Package config loads the volcanoweb YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Loader  LoaderConfig  `yaml:"loader"`
	Plot    PlotConfig    `yaml:"plot"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`             // default ":8080"
	ReadTimeout    time.Duration `yaml:"read_timeout"`     // default 30s
	WriteTimeout   time.Duration `yaml:"write_timeout"`    // default 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`  // default 60s
	MaxUploadBytes int64         `yaml:"max_upload_bytes"` // default 50MB
}

// SessionConfig selects where uploaded tables live between requests.
type SessionConfig struct {
	Backend string        `yaml:"backend"` // memory | redis
	TTL     time.Duration `yaml:"ttl"`     // default 2h
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`     // host:port
	Password string `yaml:"password"` // empty = no auth
	DB       int    `yaml:"db"`
}

type LoaderConfig struct {
	Delimiter string `yaml:"delimiter"` // auto | comma
	MaxRows   int    `yaml:"max_rows"`
}

type PlotConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Title      string `yaml:"title"`
	LabelCount int    `yaml:"label_count"` // default 30
	Declutter  string `yaml:"declutter"`   // rings | none
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // console | json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.RequestTimeout = 60 * time.Second
	cfg.Server.MaxUploadBytes = 50 << 20
	cfg.Session.Backend = "memory"
	cfg.Session.TTL = 2 * time.Hour
	cfg.Session.Redis.Addr = "localhost:6379"
	cfg.Loader.Delimiter = "auto"
	cfg.Loader.MaxRows = 500000
	cfg.Plot.Width = 1000
	cfg.Plot.Height = 600
	cfg.Plot.Title = "Volcano Plot"
	cfg.Plot.LabelCount = 30
	cfg.Plot.Declutter = "rings"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Load reads the YAML config at path over the defaults, then applies
// environment overrides. An empty path means defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VOLCANO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VOLCANO_REDIS_ADDR"); v != "" {
		cfg.Session.Redis.Addr = v
	}
	if v := os.Getenv("VOLCANO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks enumerated fields and limits.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: session.backend %q (memory/redis)", c.Session.Backend)
	}
	switch c.Loader.Delimiter {
	case "auto", "comma":
	default:
		return fmt.Errorf("config: loader.delimiter %q (auto/comma)", c.Loader.Delimiter)
	}
	switch c.Plot.Declutter {
	case "rings", "none":
	default:
		return fmt.Errorf("config: plot.declutter %q (rings/none)", c.Plot.Declutter)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format %q (console/json)", c.Log.Format)
	}
	if c.Plot.LabelCount < 0 {
		return fmt.Errorf("config: plot.label_count must be >= 0")
	}
	if c.Plot.Width < 200 || c.Plot.Height < 150 {
		return fmt.Errorf("config: plot size %dx%d too small", c.Plot.Width, c.Plot.Height)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: server.max_upload_bytes must be > 0")
	}
	return nil
}
