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

// Package metrics exposes Prometheus collectors for people streams.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "peoplestream"

// Collectors groups the stream collectors. A nil *Collectors is valid and
// records nothing.
type Collectors struct {
	StreamsTotal   *prometheus.CounterVec
	RecordsTotal   *prometheus.CounterVec
	FlushesTotal   *prometheus.CounterVec
	StreamDuration *prometheus.HistogramVec
	InFlight       *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		StreamsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total streams by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Total records written per endpoint.",
			},
			[]string{"endpoint"},
		),
		FlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flushes_total",
				Help:      "Total flushes issued per endpoint.",
			},
			[]string{"endpoint"},
		),
		StreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_duration_seconds",
				Help:      "Stream duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "streams_in_flight",
				Help:      "Streams currently being served per endpoint.",
			},
			[]string{"endpoint"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			c.StreamsTotal,
			c.RecordsTotal,
			c.FlushesTotal,
			c.StreamDuration,
			c.InFlight,
		)
	}
	return c
}

// StreamStarted marks a stream as in flight.
func (c *Collectors) StreamStarted(endpoint string) {
	if c == nil {
		return
	}
	c.InFlight.WithLabelValues(endpoint).Inc()
}

// StreamFinished records the outcome of a stream and removes it from the
// in-flight gauge.
func (c *Collectors) StreamFinished(endpoint, outcome string, records, flushes int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.InFlight.WithLabelValues(endpoint).Dec()
	c.StreamsTotal.WithLabelValues(endpoint, outcome).Inc()
	c.RecordsTotal.WithLabelValues(endpoint).Add(float64(records))
	c.FlushesTotal.WithLabelValues(endpoint).Add(float64(flushes))
	c.StreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
