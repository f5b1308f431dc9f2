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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/output"
	"github.com/sirseerhq/peoplestream/internal/people"
	"github.com/sirseerhq/peoplestream/internal/source"
	"github.com/sirseerhq/peoplestream/internal/stream"
)

// streamRoute describes how one streaming endpoint drives its session.
type streamRoute struct {
	endpoint    string
	async       bool
	commitEarly bool
	policy      output.FlushPolicy
}

func (s *Server) streamHandler(rt streamRoute) http.HandlerFunc {
	src := s.src
	if rt.async {
		src = source.Async(src)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		pattern, err := patternParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		res := stream.New(w, stream.Options{
			Endpoint:    rt.endpoint,
			Pattern:     pattern,
			CommitEarly: rt.commitEarly,
			Policy:      rt.policy,
			Logger:      s.logger,
			Metrics:     s.metrics,
		}).Run(ctx, src)

		if res.Outcome != stream.OutcomeSourceError {
			return
		}
		if res.Committed {
			// The status is already sent. Drop the connection without the final
			// chunk so the client sees the body end abnormally.
			panic(http.ErrAbortHandler)
		}
		writeError(w, http.StatusInternalServerError, "failed to read people")
	}
}

func (s *Server) handleArray(w http.ResponseWriter, r *http.Request) {
	pattern, err := patternParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	const endpoint = "array"
	start := time.Now()
	s.metrics.StreamStarted(endpoint)

	ps, err := source.Collect(ctx, s.src, pattern)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, perrors.ErrCancelled) {
			s.metrics.StreamFinished(endpoint, stream.OutcomeCancelled, 0, 0, time.Since(start))
			s.logger.Debug("array request cancelled", "pattern", pattern, "reason", context.Cause(ctx))
			return
		}
		s.metrics.StreamFinished(endpoint, stream.OutcomeSourceError, 0, 0, time.Since(start))
		s.logger.Error("array query failed", "pattern", pattern, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read people")
		return
	}

	body, err := marshalJSON(ps)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode people")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)

	s.metrics.StreamFinished(endpoint, stream.OutcomeCompleted, len(ps), 0, time.Since(start))
	s.logger.Info("array completed", "pattern", pattern, "records", len(ps), "duration", time.Since(start).Round(time.Millisecond).String())
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	body, err := json.MarshalIndent(people.Schema(), "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode schema")
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(append(body, '\n'))
}

// pinger is implemented by sources that can check their upstream.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if p, ok := s.src.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "unavailable")
			return
		}
	}
	fmt.Fprintln(w, "ok")
}

// requestContext bounds the request by the configured timeout, if any.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if t := s.cfg.Server.RequestTimeout; t > 0 {
		return context.WithTimeout(r.Context(), t)
	}
	return context.WithCancel(r.Context())
}

// patternParam returns the pattern query parameter. A missing or blank value is
// a validation error; otherwise the value is used as given.
func patternParam(r *http.Request) (string, error) {
	pattern := r.URL.Query().Get("pattern")
	if strings.TrimSpace(pattern) == "" {
		return "", fmt.Errorf("%w: pattern query parameter is required", perrors.ErrValidation)
	}
	return pattern, nil
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// writeError answers with a JSON error body. It must only be called before
// anything else was written to w.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Status: status})
}

// marshalJSON encodes v without HTML escaping so array bodies match the
// streamed lines byte for byte.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
