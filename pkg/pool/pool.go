// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pool multiplexes a small, fixed set of exclusive execution contexts
// over any number of batch hashers.
//
// Hashers are bound to a slot round robin when they are created. Binding never
// blocks; every call issued through a slot is serialized by the slot lock, so
// hashers sharing a slot queue behind each other while the other slots keep
// working.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethersphere/treehash/pkg/backend"
	"github.com/ethersphere/treehash/pkg/logging"
	m "github.com/ethersphere/treehash/pkg/metrics"
	"github.com/ethersphere/treehash/pkg/poseidon"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
)

const (
	DefaultDevices          = 1
	DefaultKernelsPerDevice = 4
	DefaultCap              = 32
)

var (
	// ErrDeviceNotFound is returned when the selector cannot open a context.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrClosed is returned by Acquire after Close.
	ErrClosed = errors.New("pool closed")
)

// Options configure a Pool. Zero values take the package defaults.
type Options struct {
	Devices          int
	KernelsPerDevice int
	Cap              int
	Selector         backend.Selector
	Logger           logging.Logger
}

// Pool is a fixed-size set of execution contexts.
type Pool struct {
	slots   []*Slot
	next    atomic.Uint64
	closed  atomic.Bool
	logger  logging.Logger
	metrics metrics
}

// Slot is one execution context of the pool together with its lock.
type Slot struct {
	index  int
	device int
	pool   *Pool
	bound  atomic.Int64

	mu  sync.Mutex
	ctx backend.Context
}

// Size returns min(devices*kernelsPerDevice, cap) after defaults are applied.
func (o Options) Size() int {
	devices, kernels, limit := o.Devices, o.KernelsPerDevice, o.Cap
	if devices <= 0 {
		devices = DefaultDevices
	}
	if kernels <= 0 {
		kernels = DefaultKernelsPerDevice
	}
	if limit <= 0 {
		limit = DefaultCap
	}
	if n := devices * kernels; n < limit {
		return n
	}
	return limit
}

// New opens every context of the pool. A selector failure aborts
// construction.
func New(o Options) (*Pool, error) {
	if o.Selector == nil {
		return nil, errors.New("pool: nil selector")
	}
	if o.KernelsPerDevice <= 0 {
		o.KernelsPerDevice = DefaultKernelsPerDevice
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	size := o.Size()

	p := &Pool{
		slots:   make([]*Slot, size),
		logger:  o.Logger,
		metrics: newMetrics(),
	}
	for i := range p.slots {
		device := i / o.KernelsPerDevice
		ctx, err := o.Selector(device, i)
		if err != nil {
			return nil, fmt.Errorf("%w: device %d slot %d: %v", ErrDeviceNotFound, device, i, err)
		}
		p.slots[i] = &Slot{
			index:  i,
			device: device,
			pool:   p,
			ctx:    ctx,
		}
	}
	p.logger.Debugf("pool: opened %d contexts", size)
	return p, nil
}

// Size returns the number of contexts.
func (p *Pool) Size() int {
	return len(p.slots)
}

// Acquire binds the caller to the next slot round robin. It never blocks.
// The caller must Release the slot when done with it.
func (p *Pool) Acquire() (*Slot, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	index := (p.next.Inc() - 1) % uint64(len(p.slots))
	s := p.slots[index]
	s.bound.Inc()
	p.metrics.BoundHashers.Inc()
	p.logger.Debugf("pool: bound hasher to context %d/%d", index+1, len(p.slots))
	return s, nil
}

// Close synchronizes and clears every context.
func (p *Pool) Close() error {
	if !p.closed.CAS(false, true) {
		return nil
	}
	var mErr *multierror.Error
	for _, s := range p.slots {
		if err := s.teardown(); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("context %d: %w", s.index, err))
		}
	}
	return mErr.ErrorOrNil()
}

// Index returns the slot position in the pool.
func (s *Slot) Index() int {
	return s.index
}

// Device returns the device the slot context was opened on.
func (s *Slot) Device() int {
	return s.device
}

// Bound returns the number of hashers currently bound to the slot.
func (s *Slot) Bound() int {
	return int(s.bound.Load())
}

// Init prepares a kernel state on the slot context. It returns ErrClosed
// once the pool is closed.
func (s *Slot) Init(arity int, strength poseidon.Strength) (backend.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool.closed.Load() {
		return nil, ErrClosed
	}
	return s.ctx.Init(arity, strength)
}

// HashBatch runs one kernel call while holding the slot lock. It returns
// ErrClosed once the pool is closed.
func (s *Slot) HashBatch(state backend.State, input []uint64) ([]uint64, backend.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool.closed.Load() {
		return nil, nil, ErrClosed
	}

	start := time.Now()
	s.pool.metrics.HashCalls.Inc()
	out, next, err := s.ctx.HashBatch(state, input)
	s.pool.metrics.CallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.pool.metrics.FailedCalls.Inc()
	}
	return out, next, err
}

// AdvisedBatchSize returns the context batch size preference for arity.
func (s *Slot) AdvisedBatchSize(arity int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.AdvisedBatchSize(arity)
}

// MarkRetry records that a hasher on this slot is retrying a failed call.
func (s *Slot) MarkRetry() {
	s.pool.metrics.Retries.Inc()
}

// MarkExhausted records that a hasher on this slot gave up retrying.
func (s *Slot) MarkExhausted() {
	s.pool.metrics.Exhausted.Inc()
}

// Release unbinds a hasher. The context is synchronized and its caches are
// cleared so that nothing leaks to the next hasher using the slot.
func (s *Slot) Release() error {
	left := s.bound.Dec()
	s.pool.metrics.BoundHashers.Dec()
	if left == 0 {
		s.pool.logger.Debugf("pool: last hasher released context %d", s.index+1)
	}
	return s.teardown()
}

func (s *Slot) teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctx.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	s.pool.logger.Debugf("pool: context %d synchronized", s.index+1)
	if err := s.ctx.ClearCaches(); err != nil {
		return fmt.Errorf("clear caches: %w", err)
	}
	s.pool.logger.Debugf("pool: context %d caches cleared", s.index+1)
	return nil
}

// Metrics returns the pool collectors.
func (p *Pool) Metrics() []m.Collector {
	return m.PrometheusCollectorsFromFields(p.metrics)
}
