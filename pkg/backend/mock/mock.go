// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mock provides a backend.Context wrapper that injects hash call
// failures and records how the context is driven.
package mock

import (
	"errors"
	"sync"
	"time"

	"github.com/ethersphere/treehash/pkg/backend"
	"github.com/ethersphere/treehash/pkg/poseidon"
	"go.uber.org/atomic"
)

// ErrInjected is returned by failing hash calls.
var ErrInjected = errors.New("mock: injected hash failure")

// poisoned is handed out together with injected failures. Any attempt to
// hash with it fails, which exposes callers that adopt the state of a
// failed call.
type poisoned struct{}

// Context wraps another context.
type Context struct {
	inner backend.Context

	mu       sync.Mutex
	failures int
	failFunc func(call int) bool
	initErr  error
	delay    time.Duration

	hashCalls   atomic.Int64
	failedCalls atomic.Int64
	syncCalls   atomic.Int64
	clearCalls  atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64
}

// New wraps inner with the given options.
func New(inner backend.Context, opts ...Option) *Context {
	m := &Context{inner: inner}
	for _, o := range opts {
		o.apply(m)
	}
	return m
}

// Option is the option passed to the mock context.
type Option interface {
	apply(*Context)
}

type optionFunc func(*Context)

func (f optionFunc) apply(c *Context) { f(c) }

// WithHashFailures fails the first n hash calls.
func WithHashFailures(n int) Option {
	return optionFunc(func(c *Context) {
		c.failures = n
	})
}

// WithFailFunc fails every hash call for which f returns true. Calls are
// numbered from 1.
func WithFailFunc(f func(call int) bool) Option {
	return optionFunc(func(c *Context) {
		c.failFunc = f
	})
}

// WithInitError makes Init fail with err.
func WithInitError(err error) Option {
	return optionFunc(func(c *Context) {
		c.initErr = err
	})
}

// WithCallDelay holds every hash call for d.
func WithCallDelay(d time.Duration) Option {
	return optionFunc(func(c *Context) {
		c.delay = d
	})
}

// Init implements backend.Context.
func (c *Context) Init(arity int, strength poseidon.Strength) (backend.State, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}
	return c.inner.Init(arity, strength)
}

// HashBatch implements backend.Context.
func (c *Context) HashBatch(s backend.State, input []uint64) ([]uint64, backend.State, error) {
	n := c.inflight.Inc()
	defer c.inflight.Dec()
	for {
		seen := c.maxInflight.Load()
		if n <= seen || c.maxInflight.CAS(seen, n) {
			break
		}
	}

	call := int(c.hashCalls.Inc())
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail(call) {
		c.failedCalls.Inc()
		return nil, poisoned{}, ErrInjected
	}
	if _, ok := s.(poisoned); ok {
		return nil, nil, backend.ErrForeignState
	}
	return c.inner.HashBatch(s, input)
}

func (c *Context) fail(call int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return true
	}
	return c.failFunc != nil && c.failFunc(call)
}

// AdvisedBatchSize implements backend.Context.
func (c *Context) AdvisedBatchSize(arity int) int {
	return c.inner.AdvisedBatchSize(arity)
}

// Sync implements backend.Context.
func (c *Context) Sync() error {
	c.syncCalls.Inc()
	return c.inner.Sync()
}

// ClearCaches implements backend.Context.
func (c *Context) ClearCaches() error {
	c.clearCalls.Inc()
	return c.inner.ClearCaches()
}

// HashCalls returns the number of HashBatch calls, failed ones included.
func (c *Context) HashCalls() int { return int(c.hashCalls.Load()) }

// FailedCalls returns the number of injected failures.
func (c *Context) FailedCalls() int { return int(c.failedCalls.Load()) }

// SyncCalls returns the number of Sync calls.
func (c *Context) SyncCalls() int { return int(c.syncCalls.Load()) }

// ClearCalls returns the number of ClearCaches calls.
func (c *Context) ClearCalls() int { return int(c.clearCalls.Load()) }

// MaxConcurrentCalls returns the highest number of HashBatch calls observed
// running at the same time.
func (c *Context) MaxConcurrentCalls() int { return int(c.maxInflight.Load()) }
