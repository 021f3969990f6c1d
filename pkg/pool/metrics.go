// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pool

import (
	m "github.com/ethersphere/treehash/pkg/metrics"
)

type metrics struct {
	HashCalls    m.Counter
	FailedCalls  m.Counter
	Retries      m.Counter
	Exhausted    m.Counter
	BoundHashers m.Gauge
	CallDuration m.Histogram
}

func newMetrics() metrics {
	subsystem := "pool"

	return metrics{
		HashCalls: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_calls",
			Help:      "Total kernel calls issued to pool contexts.",
		}),
		FailedCalls: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "failed_calls",
			Help:      "Total kernel calls that returned an error.",
		}),
		Retries: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "retries",
			Help:      "Total retries scheduled after failed kernel calls.",
		}),
		Exhausted: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "exhausted",
			Help:      "Total hash requests that ran out of retries.",
		}),
		BoundHashers: m.NewGauge(m.GaugeOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "bound_hashers",
			Help:      "Number of hashers currently bound to a context.",
		}),
		CallDuration: m.NewHistogram(m.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "call_duration_seconds",
			Help:      "Histogram of kernel call durations.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 60},
		}),
	}
}
