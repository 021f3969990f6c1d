// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package batcher provides a batch hasher of a fixed arity bound to one
// context of a pool. Failed kernel calls are retried with a fixed backoff
// while the last good kernel state is kept as the baseline.
package batcher

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ethersphere/treehash/pkg/backend"
	"github.com/ethersphere/treehash/pkg/field"
	"github.com/ethersphere/treehash/pkg/limbs"
	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/ethersphere/treehash/pkg/pool"
	"github.com/ethersphere/treehash/pkg/poseidon"
	"go.uber.org/atomic"
)

const (
	DefaultRetries = 3600
	DefaultBackoff = 5 * time.Second

	// Unbounded is reported by MaxBatchSize when neither the options nor
	// the backend constrain the batch size.
	Unbounded = math.MaxInt32
)

var (
	// ErrRetriesExhausted is returned when every attempt of a hash call failed.
	ErrRetriesExhausted = errors.New("exhausted retries")
	// ErrClosed is returned by Hash after Close.
	ErrClosed = errors.New("hasher closed")
)

// SetupError is returned by New when the kernel state cannot be initialized.
// It is never retried.
type SetupError struct {
	Arity    int
	Strength poseidon.Strength
	Err      error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("init %s arity %d kernel: %v", e.Strength, e.Arity, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Options configure a Hasher. Zero values take the package defaults.
type Options struct {
	Strength     poseidon.Strength
	MaxBatchSize int
	Retries      int
	Backoff      time.Duration
	Logger       logging.Logger
}

// Hasher hashes batches of preimages of one arity on a pool context.
type Hasher struct {
	slot         *pool.Slot
	arity        int
	strength     poseidon.Strength
	maxBatchSize int
	attempts     int
	backoff      time.Duration
	logger       logging.Logger

	mu      sync.Mutex
	state   backend.State
	retries atomic.Uint64
	closed  atomic.Bool
}

// New binds a hasher of arity to the next context of p and initializes its
// kernel state.
func New(p *pool.Pool, arity int, o Options) (*Hasher, error) {
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}

	slot, err := p.Acquire()
	if err != nil {
		return nil, err
	}
	state, err := slot.Init(arity, o.Strength)
	if err != nil {
		if rerr := slot.Release(); rerr != nil {
			o.Logger.Debugf("batcher: release context %d: %v", slot.Index()+1, rerr)
		}
		return nil, &SetupError{Arity: arity, Strength: o.Strength, Err: err}
	}

	maxBatchSize := o.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = slot.AdvisedBatchSize(arity)
	}
	if maxBatchSize <= 0 {
		maxBatchSize = Unbounded
	}

	return &Hasher{
		slot:         slot,
		arity:        arity,
		strength:     o.Strength,
		maxBatchSize: maxBatchSize,
		attempts:     o.Retries,
		backoff:      o.Backoff,
		logger:       o.Logger,
		state:        state,
	}, nil
}

// Hash returns one hash per preimage, in order. Every preimage must hold
// exactly Arity elements.
func (h *Hasher) Hash(preimages [][]field.Element) ([]field.Element, error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}
	if len(preimages) == 0 {
		return nil, nil
	}
	for i, p := range preimages {
		if len(p) != h.arity {
			return nil, fmt.Errorf("preimage %d has %d elements, want %d", i, len(p), h.arity)
		}
	}
	input := limbs.FromTuples(preimages)

	h.mu.Lock()
	defer h.mu.Unlock()

	// Close may have won the lock after the check above.
	if h.state == nil {
		return nil, ErrClosed
	}

	for attempt := 1; ; attempt++ {
		out, next, err := h.slot.HashBatch(h.state, input)
		if err == nil {
			h.state = next
			return limbs.ToElements(out)
		}
		if errors.Is(err, pool.ErrClosed) {
			return nil, fmt.Errorf("arity %d: %w", h.arity, err)
		}
		h.retries.Inc()
		left := h.attempts - attempt
		if left <= 0 {
			h.slot.MarkExhausted()
			h.logger.Errorf("batcher: arity %d hash failed after %d tries: %v", h.arity, h.attempts, err)
			return nil, fmt.Errorf("%w: after %d tries: %v", ErrRetriesExhausted, h.attempts, err)
		}
		h.slot.MarkRetry()
		h.logger.Warningf("batcher: arity %d hash failed: %v; retrying in %s, retries left: %d", h.arity, err, h.backoff, left)
		time.Sleep(h.backoff)
	}
}

// MaxBatchSize returns the preferred number of preimages per Hash call.
func (h *Hasher) MaxBatchSize() int {
	return h.maxBatchSize
}

// Arity returns the number of elements per preimage.
func (h *Hasher) Arity() int {
	return h.arity
}

// Strength returns the kernel strength.
func (h *Hasher) Strength() poseidon.Strength {
	return h.strength
}

// Retries returns the number of failed hash calls so far.
func (h *Hasher) Retries() uint64 {
	return h.retries.Load()
}

// Close synchronizes the bound context and clears its caches. Calling Close
// more than once is a no-op.
func (h *Hasher) Close() error {
	if !h.closed.CAS(false, true) {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = nil
	if err := h.slot.Release(); err != nil {
		return fmt.Errorf("release context %d: %w", h.slot.Index()+1, err)
	}
	return nil
}
