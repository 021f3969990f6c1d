// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a backend.Context that runs the Poseidon kernel on
// the host, spreading every batch over a fixed number of goroutines.
package cpu

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ethersphere/treehash/pkg/backend"
	"github.com/ethersphere/treehash/pkg/field"
	"github.com/ethersphere/treehash/pkg/limbs"
	"github.com/ethersphere/treehash/pkg/poseidon"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
	"resenje.org/singleflight"
)

const defaultCacheSize = 16

// minChunk is the smallest number of tuples handed to one worker.
const minChunk = 64

// Options configure CPU contexts.
type Options struct {
	// Workers is the number of goroutines per batch, GOMAXPROCS if zero.
	Workers int
	// BatchSize is the advised number of tuples per call, none if zero.
	BatchSize int
	// CacheSize bounds the per context constants cache.
	CacheSize int
}

type constantsKey struct {
	arity    int
	strength poseidon.Strength
}

// constantsFlight deduplicates constant derivation across contexts that
// initialize the same kernel concurrently.
var constantsFlight singleflight.Group[constantsKey, *poseidon.Constants]

// Context is a host execution context.
type Context struct {
	device    int
	slot      int
	workers   int
	batchSize int
	cache     *lru.Cache
}

// state is the kernel state handed out by Init and HashBatch.
type state struct {
	owner     *Context
	constants *poseidon.Constants
}

// New returns a context for slot on device.
func New(device, slot int, o Options) (*Context, error) {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.CacheSize <= 0 {
		o.CacheSize = defaultCacheSize
	}
	cache, err := lru.New(o.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("constants cache: %w", err)
	}
	return &Context{
		device:    device,
		slot:      slot,
		workers:   o.Workers,
		batchSize: o.BatchSize,
		cache:     cache,
	}, nil
}

// NewSelector returns a selector opening CPU contexts with options o.
func NewSelector(o Options) backend.Selector {
	return func(device, slot int) (backend.Context, error) {
		return New(device, slot, o)
	}
}

// Init implements backend.Context.
func (c *Context) Init(arity int, strength poseidon.Strength) (backend.State, error) {
	if !poseidon.Supported(arity) {
		return nil, fmt.Errorf("%w: %d", backend.ErrUnsupportedArity, arity)
	}
	key := constantsKey{arity: arity, strength: strength}
	if v, ok := c.cache.Get(key); ok {
		return &state{owner: c, constants: v.(*poseidon.Constants)}, nil
	}
	constants, _, err := constantsFlight.Do(context.Background(), key, func(context.Context) (*poseidon.Constants, error) {
		return poseidon.NewConstants(arity, strength)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, constants)
	return &state{owner: c, constants: constants}, nil
}

// HashBatch implements backend.Context. The passed state is never modified.
func (c *Context) HashBatch(s backend.State, input []uint64) ([]uint64, backend.State, error) {
	st, ok := s.(*state)
	if !ok || st.owner != c {
		return nil, nil, backend.ErrForeignState
	}
	preimages, err := limbs.ToTuples(input, st.constants.Arity)
	if err != nil {
		return nil, nil, err
	}

	out := make([]field.Element, len(preimages))
	chunk := (len(preimages) + c.workers - 1) / c.workers
	if chunk < minChunk {
		chunk = minChunk
	}
	var g errgroup.Group
	for start := 0; start < len(preimages); start += chunk {
		end := start + chunk
		if end > len(preimages) {
			end = len(preimages)
		}
		start := start
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = st.constants.Hash(preimages[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return limbs.FromElements(out), &state{owner: c, constants: st.constants}, nil
}

// AdvisedBatchSize implements backend.Context.
func (c *Context) AdvisedBatchSize(int) int {
	return c.batchSize
}

// Sync implements backend.Context. Host batches complete before HashBatch
// returns, so there is nothing to wait for.
func (c *Context) Sync() error {
	return nil
}

// ClearCaches implements backend.Context.
func (c *Context) ClearCaches() error {
	c.cache.Purge()
	return nil
}

// Device returns the device index the context was opened on.
func (c *Context) Device() int {
	return c.device
}

// Slot returns the pool slot the context was opened for.
func (c *Context) Slot() int {
	return c.slot
}

// CachedKernels returns the number of kernels with cached constants.
func (c *Context) CachedKernels() int {
	return c.cache.Len()
}
