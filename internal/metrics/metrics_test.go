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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors_StreamLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.StreamStarted("stream-sync")
	c.StreamStarted("stream-sync")
	if got := testutil.ToFloat64(c.InFlight.WithLabelValues("stream-sync")); got != 2 {
		t.Fatalf("in flight = %v, want 2", got)
	}

	c.StreamFinished("stream-sync", "completed", 3, 1, 10*time.Millisecond)
	c.StreamFinished("stream-sync", "peer_closed", 1, 1, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"in flight", testutil.ToFloat64(c.InFlight.WithLabelValues("stream-sync")), 0},
		{"completed", testutil.ToFloat64(c.StreamsTotal.WithLabelValues("stream-sync", "completed")), 1},
		{"peer closed", testutil.ToFloat64(c.StreamsTotal.WithLabelValues("stream-sync", "peer_closed")), 1},
		{"records", testutil.ToFloat64(c.RecordsTotal.WithLabelValues("stream-sync")), 4},
		{"flushes", testutil.ToFloat64(c.FlushesTotal.WithLabelValues("stream-sync")), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(c.StreamDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestCollectors_Nil(t *testing.T) {
	var c *Collectors
	c.StreamStarted("x")
	c.StreamFinished("x", "completed", 1, 1, time.Second)
}

func TestNew_NilRegisterer(t *testing.T) {
	c := New(nil)
	c.StreamStarted("x")
	if got := testutil.ToFloat64(c.InFlight.WithLabelValues("x")); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}
