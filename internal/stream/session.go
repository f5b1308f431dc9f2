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

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/metrics"
	"github.com/sirseerhq/peoplestream/internal/neterror"
	"github.com/sirseerhq/peoplestream/internal/output"
	"github.com/sirseerhq/peoplestream/internal/source"
	"github.com/sirseerhq/peoplestream/internal/stats"
)

// ContentType is the media type of every streaming response.
const ContentType = "application/x-ndjson; charset=utf-8"

// Outcome labels used in logs and metrics.
const (
	OutcomeCompleted   = "completed"
	OutcomeCancelled   = "cancelled"
	OutcomePeerClosed  = "peer_closed"
	OutcomeSourceError = "source_error"
)

var inspector = neterror.NewInspector()

// ErrSessionFinished is returned by Write and Flush once the session is terminal.
var ErrSessionFinished = errors.New("stream session already finished")

// State is the lifecycle position of a Session.
type State int

const (
	// HeadersPending means nothing has been sent; the response can still become an error.
	HeadersPending State = iota
	// Streaming means the status and headers are committed.
	Streaming
	// Completed means the source was exhausted and every line was flushed.
	Completed
	// Aborted means the stream ended early: cancellation, peer closed or source failure.
	Aborted
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case HeadersPending:
		return "headers_pending"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further writes may happen in s.
func (s State) Terminal() bool {
	return s == Completed || s == Aborted
}

// Options configures one Session.
type Options struct {
	// Endpoint names the route in logs and metrics
	Endpoint string

	// Pattern is the validated name filter
	Pattern string

	// CommitEarly commits headers before the first fetch instead of at the first write
	CommitEarly bool

	// Policy selects the flush strategy
	Policy output.FlushPolicy

	// Logger receives lifecycle events; nil discards them
	Logger *slog.Logger

	// Metrics records outcomes; nil records nothing
	Metrics *metrics.Collectors
}

// Result describes how a Session ended.
type Result struct {
	State     State
	Committed bool
	Records   int // lines delivered by successful flushes
	Flushes   int
	Outcome   string
	Err       error
	Summary   stats.Summary
}

// Session streams people as NDJSON into an http.ResponseWriter.
// It is itself the output.Sink of its flush strategy, which is how headers get
// committed lazily on the first byte.
type Session struct {
	w       http.ResponseWriter
	sink    *output.ResponseSink
	opts    Options
	logger  *slog.Logger
	state   State
	tracker *stats.Tracker

	// ids of lines handed to the strategy but not yet delivered
	unflushed []int
}

var _ output.Sink = (*Session)(nil)

// New creates a Session writing to w.
func New(w http.ResponseWriter, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		w:       w,
		sink:    output.NewResponseSink(w),
		opts:    opts,
		logger:  logger.With("endpoint", opts.Endpoint, "pattern", opts.Pattern),
		state:   HeadersPending,
		tracker: stats.New(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Write commits the headers if needed and writes p to the response body.
func (s *Session) Write(p []byte) (int, error) {
	if s.state.Terminal() {
		return 0, ErrSessionFinished
	}
	s.commit()
	return s.sink.Write(p)
}

// Flush commits the headers if needed and pushes buffered bytes to the client.
func (s *Session) Flush() error {
	if s.state.Terminal() {
		return ErrSessionFinished
	}
	s.commit()
	return s.sink.Flush()
}

// commit sends the status line and headers. It runs at most once.
func (s *Session) commit() {
	if s.state != HeadersPending {
		return
	}
	h := s.w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	s.w.WriteHeader(http.StatusOK)
	s.state = Streaming
}

// Run opens src for the session's pattern and streams every record until the
// source is exhausted, ctx ends, the peer goes away or the source fails.
//
// When the returned Result is not Committed nothing was written to the response
// and the caller decides what to send.
func (s *Session) Run(ctx context.Context, src source.Source) Result {
	s.opts.Metrics.StreamStarted(s.opts.Endpoint)
	s.logger.Debug("stream started", "commit_early", s.opts.CommitEarly, "flush_mode", s.opts.Policy.Mode.String())

	cursor, err := src.Open(ctx, s.opts.Pattern)
	if err != nil {
		return s.finish(ctx, nil, err)
	}
	closeCursor := func() {
		if err := cursor.Close(); err != nil {
			s.logger.Warn("failed to release cursor", "error", err)
		}
	}

	if s.opts.CommitEarly {
		s.commit()
		if err := s.sink.Flush(); err != nil {
			closeCursor()
			return s.finish(ctx, nil, fmt.Errorf("%w: %w", perrors.ErrPeerClosed, err))
		}
	}

	strategy := s.opts.Policy.NewStrategy(s)
	encoder := output.NewLineEncoder()

	for {
		if err := ctx.Err(); err != nil {
			closeCursor()
			return s.finish(ctx, strategy, err)
		}

		p, err := cursor.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			closeCursor()
			if s.state == Streaming && ctx.Err() == nil && !errors.Is(err, perrors.ErrCancelled) {
				// Deliver the lines already accepted before the body is cut short.
				_, _ = strategy.Close()
				s.settle(strategy)
			}
			return s.finish(ctx, strategy, err)
		}

		if err := ctx.Err(); err != nil {
			closeCursor()
			return s.finish(ctx, strategy, err)
		}

		signal, err := strategy.Write(encoder.Encode(p))
		s.unflushed = append(s.unflushed, p.ID)
		s.settle(strategy)
		if signal == output.PeerClosed {
			closeCursor()
			return s.finish(ctx, strategy, err)
		}
	}

	closeCursor()
	signal, err := strategy.Close()
	s.settle(strategy)
	if signal == output.PeerClosed {
		return s.finish(ctx, strategy, err)
	}
	// An empty result still answers 200 with an empty body.
	s.commit()
	return s.finish(ctx, strategy, nil)
}

// settle records the ids of lines the strategy has delivered since the last call.
// Lines still buffered, or lost in a failed flush, are never recorded.
func (s *Session) settle(strategy output.Strategy) {
	n := strategy.Delivered() - s.tracker.Records()
	if n <= 0 {
		return
	}
	for _, id := range s.unflushed[:n] {
		s.tracker.Record(id)
	}
	s.unflushed = append(s.unflushed[:0], s.unflushed[n:]...)
}

// finish moves the session to its terminal state, then logs and records the outcome.
func (s *Session) finish(ctx context.Context, strategy output.Strategy, err error) Result {
	if strategy != nil {
		s.tracker.SetFlushes(strategy.Flushes())
	}
	committed := s.state != HeadersPending

	outcome := OutcomeCompleted
	switch {
	case err == nil:
	case errors.Is(err, perrors.ErrPeerClosed):
		outcome = OutcomePeerClosed
	case ctx.Err() != nil || inspector.IsCancelled(err):
		outcome = OutcomeCancelled
	case errors.Is(err, perrors.ErrSource):
		outcome = OutcomeSourceError
	case inspector.IsPeerClosed(err):
		outcome = OutcomePeerClosed
	default:
		outcome = OutcomeSourceError
	}

	if outcome == OutcomeCompleted {
		s.state = Completed
	} else {
		s.state = Aborted
	}

	summary := s.tracker.Summary(s.opts.Pattern, outcome)
	attrs := []any{
		"records", summary.Records,
		"flushes", summary.Flushes,
		"duration", summary.Duration,
		"committed", committed,
	}

	switch outcome {
	case OutcomeCompleted:
		s.logger.Info("stream completed", attrs...)
	case OutcomePeerClosed:
		s.logger.Info("client closed the stream", append(attrs, "last_id", summary.LastID)...)
	case OutcomeCancelled:
		s.logger.Debug("stream cancelled", append(attrs, "reason", context.Cause(ctx))...)
	case OutcomeSourceError:
		if committed {
			s.logger.Error("source failed mid-stream, response truncated", append(attrs, "last_id", summary.LastID, "error", err)...)
		} else {
			s.logger.Error("source failed before streaming", append(attrs, "error", err)...)
		}
	}

	s.opts.Metrics.StreamFinished(s.opts.Endpoint, outcome, summary.Records, summary.Flushes, s.tracker.Elapsed())

	return Result{
		State:     s.state,
		Committed: committed,
		Records:   summary.Records,
		Flushes:   summary.Flushes,
		Outcome:   outcome,
		Err:       err,
		Summary:   summary,
	}
}
