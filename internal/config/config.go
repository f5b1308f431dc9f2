// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for peoplestream with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables (PEOPLESTREAM_*)
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .peoplestream.yaml (current directory)
//   - .peoplestream.yml (current directory)
//   - ~/.peoplestream/config.yaml
//
// Environment variables are applied after loading the config file.
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(expandPath(configPath), cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".peoplestream.yaml",
			".peoplestream.yml",
			filepath.Join(os.Getenv("HOME"), ".peoplestream", "config.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Source.Driver == DriverSQLite {
		cfg.Source.DSN = expandPath(cfg.Source.DSN)
	}

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w: %w", path, perrors.ErrInvalidConfig, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Malformed numeric values are ignored and the previous value is kept.
func applyEnvOverrides(cfg *Config) {
	// Server
	if addr := os.Getenv("PEOPLESTREAM_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if addr := os.Getenv("PEOPLESTREAM_METRICS_ADDR"); addr != "" {
		cfg.Server.MetricsAddr = addr
	}
	if d := os.Getenv("PEOPLESTREAM_REQUEST_TIMEOUT"); d != "" {
		if timeout, err := time.ParseDuration(d); err == nil {
			cfg.Server.RequestTimeout = timeout
		}
	}
	if d := os.Getenv("PEOPLESTREAM_SHUTDOWN_TIMEOUT"); d != "" {
		if timeout, err := time.ParseDuration(d); err == nil {
			cfg.Server.ShutdownTimeout = timeout
		}
	}

	// Streaming
	if batchSize := os.Getenv("PEOPLESTREAM_BATCH_SIZE"); batchSize != "" {
		if size, err := parsePositiveInt(batchSize); err == nil {
			cfg.Streaming.BatchSize = size
		}
	}

	// Source
	if driver := os.Getenv("PEOPLESTREAM_SOURCE_DRIVER"); driver != "" {
		cfg.Source.Driver = strings.ToLower(driver)
	}
	if dsn := os.Getenv("PEOPLESTREAM_DSN"); dsn != "" {
		cfg.Source.DSN = dsn
	}
	if endpoint := os.Getenv("PEOPLESTREAM_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.Source.GraphQLEndpoint = endpoint
	}
	if pageSize := os.Getenv("PEOPLESTREAM_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Source.PageSize = size
		}
	}

	// Logging
	if level := os.Getenv("PEOPLESTREAM_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("PEOPLESTREAM_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if parseBool(os.Getenv("PEOPLESTREAM_DEBUG")) {
		cfg.Log.Level = "debug"
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Token returns the source API token from the environment variable named by
// TokenEnv, or "" when unset.
func (c *Config) Token() string {
	if c.Source.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Source.TokenEnv)
}

// SlogLevel converts the configured level name to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", c.Log.Level, perrors.ErrInvalidConfig)
	}
	return level, nil
}

// Validate checks if the configuration contains valid values. This should be
// called after loading configuration and applying flags to catch invalid
// settings before the server starts.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server address cannot be empty: %w", perrors.ErrInvalidConfig)
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative: %w", perrors.ErrInvalidConfig)
	}
	if c.Streaming.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got: %d: %w", c.Streaming.BatchSize, perrors.ErrInvalidConfig)
	}

	switch c.Source.Driver {
	case DriverSQLite:
		if c.Source.DSN == "" {
			return fmt.Errorf("sqlite source requires a dsn: %w", perrors.ErrInvalidConfig)
		}
	case DriverGraphQL:
		if c.Source.GraphQLEndpoint == "" {
			return fmt.Errorf("graphql source requires an endpoint: %w", perrors.ErrInvalidConfig)
		}
		if c.Source.PageSize < 1 {
			return fmt.Errorf("page size must be at least 1, got: %d: %w", c.Source.PageSize, perrors.ErrInvalidConfig)
		}
	case DriverMemory:
		if c.Source.MemorySize < 0 {
			return fmt.Errorf("memory size cannot be negative: %w", perrors.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown source driver %q (want sqlite, graphql or memory): %w", c.Source.Driver, perrors.ErrInvalidConfig)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q (want json or text): %w", c.Log.Format, perrors.ErrInvalidConfig)
	}
	return nil
}
