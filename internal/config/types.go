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

// Package config types define the configuration structures used throughout
// peoplestream. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Source drivers understood by the serve command.
const (
	DriverSQLite  = "sqlite"
	DriverGraphQL = "graphql"
	DriverMemory  = "memory"
)

// Config represents the complete configuration for peoplestream.
// It is loaded once at process start and passed to the components that need it;
// nothing mutates it afterwards.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Streaming StreamingConfig `yaml:"streaming"`
	Source    SourceConfig    `yaml:"source"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listeners and request lifetimes.
// A zero RequestTimeout leaves requests bounded only by the client.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// StreamingConfig holds the flush policy defaults shared by every request.
// BatchSize applies to the batched endpoint; 16 to 64 works well, and 1 makes
// it behave like the eager endpoints.
type StreamingConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// SourceConfig selects and configures the people directory the server reads.
// This replaces any process-wide connection string: the source is built from
// this value once and handed to the server.
type SourceConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	PageSize        int    `yaml:"page_size"`
	TokenEnv        string `yaml:"token_env"`
	MemorySize      int    `yaml:"memory_size"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults suitable for a local
// SQLite database created by the seed command.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Streaming: StreamingConfig{
			BatchSize: 32,
		},
		Source: SourceConfig{
			Driver:     DriverSQLite,
			DSN:        "people.db",
			PageSize:   50,
			TokenEnv:   "PEOPLESTREAM_TOKEN",
			MemorySize: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
