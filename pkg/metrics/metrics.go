// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"io"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

func NewCounter(opts CounterOpts) Counter {
	return prometheus.NewCounter(opts)
}

func NewGauge(opts GaugeOpts) Gauge {
	return prometheus.NewGauge(opts)
}

func NewHistogram(opts HistogramOpts) Histogram {
	return prometheus.NewHistogram(opts)
}

func NewRegistry() MetricsRegistererGatherer {
	return prometheus.NewRegistry()
}

func NewGoCollector() Collector {
	return collectors.NewGoCollector()
}

func NewEncoder(w io.Writer, format expfmt.Format) expfmt.Encoder {
	return expfmt.NewEncoder(w, format)
}

// WriteText gathers all metrics from g and writes them to w in the
// prometheus text exposition format.
func WriteText(w io.Writer, g MetricsRegistererGatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := NewEncoder(w, FmtText)
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}

// PrometheusCollectorsFromFields returns all exported struct fields of i
// that are initialized prometheus collectors.
func PrometheusCollectorsFromFields(i interface{}) (cs []Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}
