// Package config loads the server configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/mirror-engine/cycle"
)

// Config holds all mirror-engine configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	CORSOrigins  []string `yaml:"cors_origins"`
	ReadTimeout  string   `yaml:"read_timeout"`
	WriteTimeout string   `yaml:"write_timeout"`
	IdleTimeout  string   `yaml:"idle_timeout"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"` // ":memory:" for an in-memory database
}

// EngineConfig tunes comparison and the mirror worker pool.
type EngineConfig struct {
	OffCode                 string `yaml:"off_code"`
	SignificantBeginMinutes int    `yaml:"significant_begin_minutes"`
	SignificantEndMinutes   int    `yaml:"significant_end_minutes"`
	Workers                 int    `yaml:"workers"` // 0 = GOMAXPROCS
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			CORSOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
			IdleTimeout:  "60s",
		},
		Database: DatabaseConfig{
			Path: "mirror.db",
		},
		Engine: EngineConfig{
			OffCode:                 cycle.OffCode,
			SignificantBeginMinutes: cycle.DefaultBeginThresholdMinutes,
			SignificantEndMinutes:   cycle.DefaultEndThresholdMinutes,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if port := os.Getenv("MIRROR_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("MIRROR_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if path := os.Getenv("MIRROR_DB"); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv("MIRROR_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Engine.OffCode == "" {
		return fmt.Errorf("engine.off_code is required")
	}
	if c.Engine.SignificantBeginMinutes < 0 || c.Engine.SignificantEndMinutes < 0 {
		return fmt.Errorf("engine thresholds must not be negative")
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative")
	}
	for _, d := range []string{c.Server.ReadTimeout, c.Server.WriteTimeout, c.Server.IdleTimeout} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("server timeout %q: %w", d, err)
		}
	}
	return nil
}

// Thresholds returns the comparison thresholds.
func (c *Config) Thresholds() cycle.Thresholds {
	return cycle.Thresholds{
		BeginMinutes: c.Engine.SignificantBeginMinutes,
		EndMinutes:   c.Engine.SignificantEndMinutes,
	}
}

// GetReadTimeout returns the read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 15*time.Second)
}

// GetIdleTimeout returns the idle timeout as a duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return duration(c.Server.IdleTimeout, 60*time.Second)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
