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

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test server defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0", cfg.Server.RequestTimeout)
	}

	// Test streaming defaults
	if cfg.Streaming.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", cfg.Streaming.BatchSize)
	}

	// Test source defaults
	if cfg.Source.Driver != DriverSQLite {
		t.Errorf("Driver = %s, want sqlite", cfg.Source.Driver)
	}
	if cfg.Source.TokenEnv != "PEOPLESTREAM_TOKEN" {
		t.Errorf("TokenEnv = %s, want PEOPLESTREAM_TOKEN", cfg.Source.TokenEnv)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  addr: 127.0.0.1:9000
  metrics_addr: 127.0.0.1:9100
  shutdown_timeout: 3s
  request_timeout: 1m

streaming:
  batch_size: 16

source:
  driver: graphql
  graphql_endpoint: https://directory.example.com/graphql
  page_size: 100
  token_env: DIRECTORY_TOKEN

log:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// Verify server settings
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %s, want 127.0.0.1:9000", cfg.Server.Addr)
	}
	if cfg.Server.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("MetricsAddr = %s, want 127.0.0.1:9100", cfg.Server.MetricsAddr)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.RequestTimeout != time.Minute {
		t.Errorf("RequestTimeout = %v, want 1m", cfg.Server.RequestTimeout)
	}

	// Verify streaming and source
	if cfg.Streaming.BatchSize != 16 {
		t.Errorf("BatchSize = %d, want 16", cfg.Streaming.BatchSize)
	}
	if cfg.Source.Driver != DriverGraphQL {
		t.Errorf("Driver = %s, want graphql", cfg.Source.Driver)
	}
	if cfg.Source.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Source.PageSize)
	}
	if cfg.Source.TokenEnv != "DIRECTORY_TOKEN" {
		t.Errorf("TokenEnv = %s, want DIRECTORY_TOKEN", cfg.Source.TokenEnv)
	}

	// Unset values keep their defaults
	if cfg.Source.DSN != "people.db" {
		t.Errorf("DSN = %s, want default people.db", cfg.Source.DSN)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() with a missing explicit file should fail")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("streaming: [not, a, map]\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	_, err := LoadConfig(bad)
	if !errors.Is(err, perrors.ErrInvalidConfig) {
		t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadConfig_DiscoversHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".peoplestream")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("streaming:\n  batch_size: 48\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Streaming.BatchSize != 48 {
		t.Errorf("BatchSize = %d, want 48 from ~/.peoplestream/config.yaml", cfg.Streaming.BatchSize)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PEOPLESTREAM_ADDR", ":9999")
	t.Setenv("PEOPLESTREAM_METRICS_ADDR", ":9998")
	t.Setenv("PEOPLESTREAM_REQUEST_TIMEOUT", "30s")
	t.Setenv("PEOPLESTREAM_BATCH_SIZE", "64")
	t.Setenv("PEOPLESTREAM_SOURCE_DRIVER", "MEMORY")
	t.Setenv("PEOPLESTREAM_PAGE_SIZE", "not-a-number")
	t.Setenv("PEOPLESTREAM_LOG_FORMAT", "json")
	t.Setenv("PEOPLESTREAM_DEBUG", "yes")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %s, want :9999", cfg.Server.Addr)
	}
	if cfg.Server.MetricsAddr != ":9998" {
		t.Errorf("MetricsAddr = %s, want :9998", cfg.Server.MetricsAddr)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.Server.RequestTimeout)
	}
	if cfg.Streaming.BatchSize != 64 {
		t.Errorf("BatchSize = %d, want 64", cfg.Streaming.BatchSize)
	}
	if cfg.Source.Driver != DriverMemory {
		t.Errorf("Driver = %s, want memory", cfg.Source.Driver)
	}
	if cfg.Source.PageSize != 50 {
		t.Errorf("PageSize = %d, want the default 50 when the override is malformed", cfg.Source.PageSize)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
}

func TestToken(t *testing.T) {
	t.Setenv("DIRECTORY_TOKEN", "secret")

	cfg := DefaultConfig()
	cfg.Source.TokenEnv = "DIRECTORY_TOKEN"
	if got := cfg.Token(); got != "secret" {
		t.Errorf("Token() = %q, want secret", got)
	}

	cfg.Source.TokenEnv = ""
	if got := cfg.Token(); got != "" {
		t.Errorf("Token() = %q, want empty", got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Log.Level = tt.input
		got, err := cfg.SlogLevel()
		if (err != nil) != tt.wantErr {
			t.Errorf("SlogLevel(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SlogLevel(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			modify:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.Streaming.BatchSize = 0 },
			wantErr: "batch size must be at least 1",
		},
		{
			name:    "batch size of one is allowed",
			modify:  func(c *Config) { c.Streaming.BatchSize = 1 },
			wantErr: "",
		},
		{
			name:    "large batch size is allowed",
			modify:  func(c *Config) { c.Streaming.BatchSize = 500 },
			wantErr: "",
		},
		{
			name:    "empty address",
			modify:  func(c *Config) { c.Server.Addr = "" },
			wantErr: "server address cannot be empty",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Server.RequestTimeout = -time.Second },
			wantErr: "timeouts cannot be negative",
		},
		{
			name:    "unknown driver",
			modify:  func(c *Config) { c.Source.Driver = "postgres" },
			wantErr: "unknown source driver",
		},
		{
			name:    "sqlite without dsn",
			modify:  func(c *Config) { c.Source.DSN = "" },
			wantErr: "sqlite source requires a dsn",
		},
		{
			name:    "graphql without endpoint",
			modify:  func(c *Config) { c.Source.Driver = DriverGraphQL },
			wantErr: "graphql source requires an endpoint",
		},
		{
			name: "graphql with zero page size",
			modify: func(c *Config) {
				c.Source.Driver = DriverGraphQL
				c.Source.GraphQLEndpoint = "http://directory/graphql"
				c.Source.PageSize = 0
			},
			wantErr: "page size must be at least 1",
		},
		{
			name:    "memory needs no dsn",
			modify:  func(c *Config) { c.Source.Driver = DriverMemory; c.Source.DSN = "" },
			wantErr: "",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "unknown log level",
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "unknown log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() error = nil, want %s", tt.wantErr)
			} else if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %s", err, tt.wantErr)
			} else if !errors.Is(err, perrors.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"yes", true},
		{"YES", true},
		{"1", true},
		{"on", true},
		{"ON", true},
		{"false", false},
		{"FALSE", false},
		{"no", false},
		{"0", false},
		{"off", false},
		{"", false},
		{"random", false},
	}

	for _, tt := range tests {
		if got := parseBool(tt.input); got != tt.want {
			t.Errorf("parseBool(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"50", 50, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePositiveInt(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePositiveInt(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePositiveInt(%s) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
