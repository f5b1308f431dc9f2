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

// Package stats tracks what a single people stream has delivered. The numbers
// end up in log lines, metrics, and the fetch command's summary, and they are
// what makes a truncated stream diagnosable: which filter, how many records
// were emitted, and the last id the client can have seen.
package stats

import (
	"encoding/json"
	"io"
	"time"
)

// Tracker collects statistics during one stream. Create a new tracker when the
// stream starts. A Tracker is owned by a single goroutine.
type Tracker struct {
	startTime time.Time
	records   int
	flushes   int
	firstID   int
	lastID    int
	seen      bool
}

// Summary is a snapshot of a Tracker.
type Summary struct {
	Pattern   string    `json:"pattern"`
	Records   int       `json:"records"`
	Flushes   int       `json:"flushes"`
	FirstID   int       `json:"first_id,omitempty"`
	LastID    int       `json:"last_id,omitempty"`
	Duration  string    `json:"duration"`
	StartedAt time.Time `json:"started_at"`
	Outcome   string    `json:"outcome"`
}

// New creates a tracker and starts its clock.
func New() *Tracker {
	return &Tracker{startTime: time.Now()}
}

// Record notes one emitted record.
func (t *Tracker) Record(id int) {
	t.records++
	if !t.seen {
		t.firstID = id
		t.seen = true
	}
	t.lastID = id
}

// SetFlushes stores the flush count reported by the flush strategy.
func (t *Tracker) SetFlushes(n int) {
	t.flushes = n
}

// Records returns the number of records emitted so far.
func (t *Tracker) Records() int {
	return t.records
}

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Summary captures the tracker's state for the given pattern and outcome.
func (t *Tracker) Summary(pattern, outcome string) Summary {
	return Summary{
		Pattern:   pattern,
		Records:   t.records,
		Flushes:   t.flushes,
		FirstID:   t.firstID,
		LastID:    t.lastID,
		Duration:  t.Elapsed().Round(time.Millisecond).String(),
		StartedAt: t.startTime,
		Outcome:   outcome,
	}
}

// WriteSummary serializes s as indented JSON.
func WriteSummary(w io.Writer, s Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}
