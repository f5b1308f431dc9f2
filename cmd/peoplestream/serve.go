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

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/peoplestream/internal/config"
	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/metrics"
	"github.com/sirseerhq/peoplestream/internal/server"
	"github.com/sirseerhq/peoplestream/internal/source"
)

// serveFlags holds command-line overrides. Only flags the user set are applied.
type serveFlags struct {
	configPath     string
	addr           string
	metricsAddr    string
	batchSize      int
	driver         string
	dsn            string
	endpoint       string
	pageSize       int
	requestTimeout time.Duration
	logLevel       string
	logFormat      string
}

func newServeCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the people API",
		Long: `Serve the people API over HTTP.

Endpoints (all take a required ?pattern= name filter):
  GET /api/people                  JSON array (also /api/people/getarray)
  GET /api/people/stream-sync      NDJSON, flushed per record
  GET /api/people/stream-async     NDJSON, flushed per record, fetched in the background
  GET /api/people/stream-batched   NDJSON, flushed every --batch-size records
                                   (also /api/people/stream-pipewriter)

The array endpoint holds the whole result in memory; prefer a streaming
endpoint for large directories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&f.addr, "addr", "", "API listen address (default :8080)")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Separate listen address for /metrics (default: served on the API address)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Records per flush on the batched endpoint (default 32)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Record source: sqlite, graphql or memory")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "SQLite database path")
	cmd.Flags().StringVar(&f.endpoint, "graphql-endpoint", "", "GraphQL people directory URL")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "GraphQL page size (default 50)")
	cmd.Flags().DurationVar(&f.requestTimeout, "request-timeout", 0, "Upper bound on a single request (0 means none)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format: text or json")

	return cmd
}

// apply copies every flag the user set onto cfg.
func (f *serveFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if flags.Changed("metrics-addr") {
		cfg.Server.MetricsAddr = f.metricsAddr
	}
	if flags.Changed("batch-size") {
		cfg.Streaming.BatchSize = f.batchSize
	}
	if flags.Changed("driver") {
		cfg.Source.Driver = strings.ToLower(f.driver)
	}
	if flags.Changed("dsn") {
		cfg.Source.DSN = f.dsn
	}
	if flags.Changed("graphql-endpoint") {
		cfg.Source.GraphQLEndpoint = f.endpoint
	}
	if flags.Changed("page-size") {
		cfg.Source.PageSize = f.pageSize
	}
	if flags.Changed("request-timeout") {
		cfg.Server.RequestTimeout = f.requestTimeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
}

// runServe builds the source, metrics and server from cfg and serves until ctx ends.
func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(cfg, src, logger, metrics.New(reg)).WithGatherer(reg)

	logger.Info("starting peoplestream",
		"version", version,
		"addr", cfg.Server.Addr,
		"driver", cfg.Source.Driver,
		"batch_size", cfg.Streaming.BatchSize,
	)
	return srv.Run(ctx)
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("component", "peoplestream"), nil
}

// openSource creates the record source selected by cfg. The returned func
// releases it.
func openSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	switch cfg.Source.Driver {
	case config.DriverSQLite:
		db, err := source.OpenSQLite(ctx, cfg.Source.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil

	case config.DriverGraphQL:
		return source.NewGraphQLSource(source.GraphQLOptions{
			Endpoint:  cfg.Source.GraphQLEndpoint,
			Token:     cfg.Token(),
			PageSize:  cfg.Source.PageSize,
			UserAgent: "peoplestream/" + version,
		}), func() {}, nil

	case config.DriverMemory:
		return source.NewMemory(source.DemoPeople(cfg.Source.MemorySize)), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown source driver %q: %w", cfg.Source.Driver, perrors.ErrInvalidConfig)
	}
}
