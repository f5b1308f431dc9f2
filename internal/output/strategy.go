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

package output

import (
	"bytes"
	"fmt"
	"strings"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

// DefaultBatchSize is the number of lines a Batched strategy holds before flushing.
const DefaultBatchSize = 32

// FlushSignal is the outcome of a write or flush.
type FlushSignal int

const (
	// Continue means the peer accepted the bytes; keep streaming.
	Continue FlushSignal = iota
	// PeerClosed means the peer is gone; stop pulling records immediately.
	PeerClosed
)

// String returns the signal name for logs.
func (s FlushSignal) String() string {
	switch s {
	case Continue:
		return "continue"
	case PeerClosed:
		return "peer_closed"
	default:
		return fmt.Sprintf("FlushSignal(%d)", int(s))
	}
}

// Mode selects a flush strategy.
type Mode int

const (
	// Eager flushes after every line.
	Eager Mode = iota
	// Batched flushes after every BatchSize lines and at the end of the stream.
	Batched
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Batched:
		return "batched"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "eager" or "batched".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eager":
		return Eager, nil
	case "batched":
		return Batched, nil
	default:
		return 0, fmt.Errorf("unknown flush mode %q: %w", s, perrors.ErrInvalidConfig)
	}
}

// FlushPolicy is fixed for the lifetime of one stream.
type FlushPolicy struct {
	Mode      Mode
	BatchSize int
}

// Validate rejects batch sizes below one.
func (p FlushPolicy) Validate() error {
	if p.Mode == Batched && p.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got: %d: %w", p.BatchSize, perrors.ErrInvalidConfig)
	}
	return nil
}

// NewStrategy creates the strategy described by p. A zero BatchSize means DefaultBatchSize.
func (p FlushPolicy) NewStrategy(sink Sink) Strategy {
	if p.Mode == Eager {
		return NewEager(sink)
	}
	size := p.BatchSize
	if size == 0 {
		size = DefaultBatchSize
	}
	return NewBatched(sink, size)
}

// Strategy decides when encoded lines written to a Sink are flushed.
//
// Once Write or Close returns PeerClosed the strategy is finished: the returned
// error carries the cause and further calls do nothing.
type Strategy interface {
	// Write accepts one encoded line. The line is copied or written before Write returns.
	Write(line []byte) (FlushSignal, error)

	// Close flushes anything still held. It is called once the source is exhausted.
	Close() (FlushSignal, error)

	// Flushes returns the number of flush operations performed so far.
	Flushes() int

	// Delivered returns the number of lines carried by successful flushes.
	Delivered() int
}

// EagerStrategy writes and flushes every line immediately.
type EagerStrategy struct {
	sink      Sink
	flushes   int
	delivered int
	closed    bool
}

// NewEager creates an EagerStrategy over sink.
func NewEager(sink Sink) *EagerStrategy {
	return &EagerStrategy{sink: sink}
}

// Write writes the line and flushes it.
func (s *EagerStrategy) Write(line []byte) (FlushSignal, error) {
	if s.closed {
		return PeerClosed, perrors.ErrPeerClosed
	}
	if _, err := s.sink.Write(line); err != nil {
		return s.peerClosed(err)
	}
	s.flushes++
	if err := s.sink.Flush(); err != nil {
		return s.peerClosed(err)
	}
	s.delivered++
	return Continue, nil
}

// Close has nothing left to flush.
func (s *EagerStrategy) Close() (FlushSignal, error) {
	if s.closed {
		return PeerClosed, perrors.ErrPeerClosed
	}
	return Continue, nil
}

// Flushes returns the number of flushes, one per written line.
func (s *EagerStrategy) Flushes() int {
	return s.flushes
}

// Delivered returns the number of lines flushed without error.
func (s *EagerStrategy) Delivered() int {
	return s.delivered
}

func (s *EagerStrategy) peerClosed(err error) (FlushSignal, error) {
	s.closed = true
	return PeerClosed, fmt.Errorf("%w: %w", perrors.ErrPeerClosed, err)
}

// BatchedStrategy accumulates lines and flushes them in groups of size.
// Memory is bounded by one batch of encoded lines.
type BatchedStrategy struct {
	sink      Sink
	size      int
	buf       bytes.Buffer
	pending   int
	flushes   int
	delivered int
	closed    bool
}

// NewBatched creates a BatchedStrategy over sink. Sizes below one are treated as one,
// which degenerates to eager flushing.
func NewBatched(sink Sink, size int) *BatchedStrategy {
	if size < 1 {
		size = 1
	}
	return &BatchedStrategy{sink: sink, size: size}
}

// Write buffers the line and flushes once size lines are pending.
func (s *BatchedStrategy) Write(line []byte) (FlushSignal, error) {
	if s.closed {
		return PeerClosed, perrors.ErrPeerClosed
	}
	s.buf.Write(line)
	s.pending++
	if s.pending < s.size {
		return Continue, nil
	}
	return s.flush()
}

// Close flushes the final partial batch, if any.
func (s *BatchedStrategy) Close() (FlushSignal, error) {
	if s.closed {
		return PeerClosed, perrors.ErrPeerClosed
	}
	if s.pending == 0 {
		return Continue, nil
	}
	return s.flush()
}

// Flushes returns the number of batches flushed.
func (s *BatchedStrategy) Flushes() int {
	return s.flushes
}

// Delivered returns the number of lines in batches flushed without error.
// Lines of a failed batch are not counted.
func (s *BatchedStrategy) Delivered() int {
	return s.delivered
}

// Pending returns the number of lines buffered but not yet flushed.
func (s *BatchedStrategy) Pending() int {
	return s.pending
}

func (s *BatchedStrategy) flush() (FlushSignal, error) {
	s.flushes++
	lines := s.pending
	_, err := s.sink.Write(s.buf.Bytes())
	s.buf.Reset()
	s.pending = 0
	if err == nil {
		err = s.sink.Flush()
	}
	if err != nil {
		s.closed = true
		return PeerClosed, fmt.Errorf("%w: %w", perrors.ErrPeerClosed, err)
	}
	s.delivered += lines
	return Continue, nil
}
