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

package stats

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestTracker_Record(t *testing.T) {
	tests := []struct {
		name        string
		ids         []int
		wantRecords int
		wantFirst   int
		wantLast    int
	}{
		{name: "no records", ids: nil},
		{name: "single record", ids: []int{100}, wantRecords: 1, wantFirst: 100, wantLast: 100},
		{name: "ascending ids", ids: []int{3, 7, 10}, wantRecords: 3, wantFirst: 3, wantLast: 10},
		{name: "id zero counts as seen", ids: []int{0, 4}, wantRecords: 2, wantFirst: 0, wantLast: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := New()
			for _, id := range tt.ids {
				tracker.Record(id)
			}

			s := tracker.Summary("AB", "completed")
			if s.Records != tt.wantRecords || tracker.Records() != tt.wantRecords {
				t.Errorf("Records = %d, want %d", s.Records, tt.wantRecords)
			}
			if s.FirstID != tt.wantFirst {
				t.Errorf("FirstID = %d, want %d", s.FirstID, tt.wantFirst)
			}
			if s.LastID != tt.wantLast {
				t.Errorf("LastID = %d, want %d", s.LastID, tt.wantLast)
			}
			if s.Pattern != "AB" || s.Outcome != "completed" {
				t.Errorf("Summary = %+v", s)
			}
		})
	}
}

func TestWriteSummary(t *testing.T) {
	tracker := New()
	tracker.Record(3)
	tracker.SetFlushes(1)

	var buf bytes.Buffer
	if err := WriteSummary(&buf, tracker.Summary("AB", "peer_closed")); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	for _, field := range []string{"pattern", "records", "flushes", "duration", "started_at", "outcome"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("missing field %q in %s", field, buf.String())
		}
	}
	if decoded["outcome"] != "peer_closed" {
		t.Errorf("outcome = %v", decoded["outcome"])
	}
}
