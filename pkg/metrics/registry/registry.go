// Copyright 2025 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry holds the process wide metrics registry with the process,
// runtime and system collectors, and optionally pushes it to a gateway.
package registry

import (
	"context"
	"time"

	"github.com/ethersphere/treehash"
	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/ethersphere/treehash/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

type Registry struct {
	register *prometheus.Registry
	cpuGauge prometheus.Gauge
	memGauge prometheus.Gauge
}

// New returns a registry with the standard collectors registered. Backend
// names the kind of contexts the hashers run on.
func New(backend string) *Registry {
	r := &Registry{
		register: prometheus.NewRegistry(),
	}

	c := collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: metrics.Namespace,
	})

	g := metrics.NewGoCollector()

	r.cpuGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "system_cpu_usage_percent",
		Help:      "System CPU usage percentage",
	})

	r.memGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "system_memory_usage_percent",
		Help:      "System memory usage percentage",
	})

	v := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metrics.Namespace,
		Name:      "info",
		Help:      "Treehash information.",
		ConstLabels: prometheus.Labels{
			"version": treehash.Version,
			"backend": backend,
		},
	})
	v.Set(1)

	r.MustRegister(c, g, v, r.cpuGauge, r.memGauge)

	return r
}

func (r *Registry) MetricsRegistry() *prometheus.Registry {
	return r.register
}

func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.register.MustRegister(cs...)
}

// SampleSystem updates the system CPU and memory gauges.
func (r *Registry) SampleSystem() error {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return err
	}
	if len(percentages) > 0 {
		r.cpuGauge.Set(percentages[0])
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return err
	}
	r.memGauge.Set(vm.UsedPercent)
	return nil
}

// PushWorker pushes the registry to the gateway at url every interval until
// the returned function is called, which pushes one last time. Pushes are
// grouped by job and instance.
func (r *Registry) PushWorker(ctx context.Context, url, job, instance string, interval time.Duration, logger logging.Logger) func() error {
	pusher := push.New(url, job).Grouping("instance", instance).Gatherer(r.register)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.SampleSystem(); err != nil {
					logger.Debugf("metrics: sample system: %v", err)
				}
				if err := pusher.Push(); err != nil {
					logger.Debugf("metrics: push failed: %v", err)
				}
			}
		}
	}()

	return func() error {
		cancel()
		<-done
		if err := r.SampleSystem(); err != nil {
			logger.Debugf("metrics: sample system: %v", err)
		}
		return pusher.Push()
	}
}
