// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics_test

import (
	"bytes"
	"strings"
	"testing"

	m "github.com/ethersphere/treehash/pkg/metrics"
)

func TestPrometheusCollectorsFromFields(t *testing.T) {
	t.Parallel()

	s := newService()
	collectors := m.PrometheusCollectorsFromFields(s)

	if l := len(collectors); l != 2 {
		t.Fatalf("got %v collectors %+v, want 2", l, collectors)
	}

	m1 := collectors[0].(m.Metric).Desc().String()
	if !strings.Contains(m1, "pool_hash_calls") {
		t.Errorf("unexpected metric %s", m1)
	}

	m2 := collectors[1].(m.Metric).Desc().String()
	if !strings.Contains(m2, "pool_call_duration_seconds") {
		t.Errorf("unexpected metric %s", m2)
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	s := newService()
	reg := m.NewRegistry()
	reg.MustRegister(m.PrometheusCollectorsFromFields(s)...)
	s.HashCalls.Add(3)

	var buf bytes.Buffer
	if err := m.WriteText(&buf, reg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "treehash_pool_hash_calls 3") {
		t.Fatalf("metric not in output:\n%s", buf.String())
	}
}

type service struct {
	// valid metrics
	HashCalls    m.Counter
	CallDuration m.Histogram
	// invalid metrics
	unexportedCount    m.Counter
	UninitializedCount m.Counter
}

func newService() *service {
	subsystem := "pool"
	return &service{
		HashCalls: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "hash_calls",
			Help:      "Number of hash calls.",
		}),
		CallDuration: m.NewHistogram(m.HistogramOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "call_duration_seconds",
			Help:      "Histogram of hash call durations.",
			Buckets:   []float64{0.01, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		unexportedCount: m.NewCounter(m.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "unexported_count",
			Help:      "This metrics should not be discoverable by metrics.PrometheusCollectorsFromFields.",
		}),
	}
}
