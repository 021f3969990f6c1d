// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend defines the contract between the hasher pool and the
// hardware (or software) execution contexts that run the batched hash kernel.
package backend

import (
	"errors"

	"github.com/ethersphere/treehash/pkg/poseidon"
)

var (
	// ErrUnsupportedArity is returned by Init for arities the kernel lacks.
	ErrUnsupportedArity = errors.New("backend: unsupported arity")
	// ErrForeignState is returned when a state is passed to a context other
	// than the one that created it, or to a kernel of another arity.
	ErrForeignState = errors.New("backend: state does not belong to this context")
)

// State is an opaque, arity specific kernel state. A state is a value: every
// successful HashBatch returns the state to use for the next call and the
// caller must drop the previous one. A failed call leaves the previous state
// valid.
type State interface{}

// Context is one exclusive execution queue. Implementations need not be safe
// for concurrent use; the pool serializes all calls made on a context.
type Context interface {
	// Init prepares the kernel state for arity and strength.
	Init(arity int, strength poseidon.Strength) (State, error)
	// HashBatch hashes input, a flat limb array of tuples of the state's
	// arity, and returns one element of limbs per tuple together with the
	// state to use next.
	HashBatch(state State, input []uint64) (output []uint64, next State, err error)
	// AdvisedBatchSize returns the preferred number of tuples per call for
	// arity, or 0 when the context has no preference.
	AdvisedBatchSize(arity int) int
	// Sync waits for all queued work on the context to complete.
	Sync() error
	// ClearCaches drops kernel caches so that no state leaks to the next user.
	ClearCaches() error
}

// Selector opens the context for pool slot on device. A failure is a setup
// error and is never retried.
type Selector func(device, slot int) (Context, error)
