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

// Package server exposes the people streams over HTTP.
//
// Every people route takes a required pattern query parameter, a substring
// filter on the person's name. The array route materializes the whole result
// before answering; it has no result-size bound, so large directories should be
// read through one of the streaming routes instead.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sirseerhq/peoplestream/internal/config"
	"github.com/sirseerhq/peoplestream/internal/metrics"
	"github.com/sirseerhq/peoplestream/internal/output"
	"github.com/sirseerhq/peoplestream/internal/source"
)

// Route paths.
const (
	PathArray         = "/api/people"
	PathGetArray      = "/api/people/getarray"
	PathStreamSync    = "/api/people/stream-sync"
	PathStreamAsync   = "/api/people/stream-async"
	PathStreamBatched = "/api/people/stream-batched"
	PathPipeWriter    = "/api/people/stream-pipewriter"
	PathSchema        = "/api/people/schema"
	PathHealth        = "/healthz"
	PathMetrics       = "/metrics"
)

const readHeaderTimeout = 10 * time.Second

// Server serves the people API. Its configuration is read-only once New returns.
type Server struct {
	cfg      *config.Config
	src      source.Source
	logger   *slog.Logger
	metrics  *metrics.Collectors
	gatherer prometheus.Gatherer
}

// New creates a Server reading people from src. A nil logger discards logs and
// nil metrics records nothing.
func New(cfg *config.Config, src source.Source, logger *slog.Logger, m *metrics.Collectors) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:      cfg,
		src:      src,
		logger:   logger,
		metrics:  m,
		gatherer: prometheus.DefaultGatherer,
	}
}

// WithGatherer sets the registry served on /metrics.
func (s *Server) WithGatherer(g prometheus.Gatherer) *Server {
	s.gatherer = g
	return s
}

// Handler returns the API routes. When no separate metrics address is
// configured, /metrics is served here as well.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, PathArray, s.handleArray)
	s.handle(mux, PathGetArray, s.handleArray)

	s.handle(mux, PathStreamSync, s.streamHandler(streamRoute{
		endpoint: "stream-sync",
		policy:   output.FlushPolicy{Mode: output.Eager},
	}))
	s.handle(mux, PathStreamAsync, s.streamHandler(streamRoute{
		endpoint:    "stream-async",
		async:       true,
		commitEarly: true,
		policy:      output.FlushPolicy{Mode: output.Eager},
	}))
	batched := s.streamHandler(streamRoute{
		endpoint:    "stream-batched",
		async:       true,
		commitEarly: true,
		policy:      output.FlushPolicy{Mode: output.Batched, BatchSize: s.cfg.Streaming.BatchSize},
	})
	s.handle(mux, PathStreamBatched, batched)
	s.handle(mux, PathPipeWriter, batched)

	s.handle(mux, PathSchema, s.handleSchema)
	s.handle(mux, PathHealth, s.handleHealth)
	if s.cfg.Server.MetricsAddr == "" {
		mux.Handle("GET "+PathMetrics, s.metricsHandler())
	}
	return mux
}

func (s *Server) handle(mux *http.ServeMux, path string, h http.HandlerFunc) {
	mux.HandleFunc("GET "+path, h)
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
}

func (s *Server) metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+PathMetrics, s.metricsHandler())
	mux.HandleFunc("GET "+PathHealth, s.handleHealth)
	return mux
}

// Run listens on the configured addresses and serves until ctx is cancelled,
// then shuts the listeners down gracefully.
func (s *Server) Run(ctx context.Context) error {
	api, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}

	var metricsLn net.Listener
	if s.cfg.Server.MetricsAddr != "" {
		metricsLn, err = net.Listen("tcp", s.cfg.Server.MetricsAddr)
		if err != nil {
			_ = api.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.Server.MetricsAddr, err)
		}
	}
	return s.Serve(ctx, api, metricsLn)
}

// Serve serves the API on apiLn and, when metricsLn is not nil, metrics on
// metricsLn. In-flight streams get the configured shutdown timeout to finish
// once ctx is cancelled.
func (s *Server) Serve(ctx context.Context, apiLn, metricsLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	type listener struct {
		name string
		srv  *http.Server
		ln   net.Listener
	}
	listeners := []listener{{
		name: "api",
		srv:  &http.Server{Handler: s.Handler(), ReadHeaderTimeout: readHeaderTimeout},
		ln:   apiLn,
	}}
	if metricsLn != nil {
		listeners = append(listeners, listener{
			name: "metrics",
			srv:  &http.Server{Handler: s.metricsMux(), ReadHeaderTimeout: readHeaderTimeout},
			ln:   metricsLn,
		})
	}

	for _, l := range listeners {
		g.Go(func() error {
			s.logger.Info("listening", "server", l.name, "addr", l.ln.Addr().String())
			if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", l.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, l := range listeners {
			if err := l.srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s server: %w", l.name, err))
			}
		}
		s.logger.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}
