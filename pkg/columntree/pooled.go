// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package columntree

import (
	"time"

	"github.com/ethersphere/treehash/pkg/batcher"
	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/ethersphere/treehash/pkg/pool"
	"github.com/ethersphere/treehash/pkg/poseidon"
)

// PooledOptions configure a builder whose hashers run on a pool.
type PooledOptions struct {
	Strength poseidon.Strength
	// ColumnBatchSize is the batch hint of the column hasher.
	ColumnBatchSize int
	// TreeBatchSize is the batch hint of both row hashers.
	TreeBatchSize int
	Retries       int
	Backoff       time.Duration
	Logger        logging.Logger
}

// NewPooled returns a builder hashing on contexts of p. The hashers are
// closed by the builder Close method.
func NewPooled(p *pool.Pool, leafCount int, o PooledOptions) (b *Builder, err error) {
	if _, err := shape(leafCount); err != nil {
		return nil, err
	}

	var hashers []*batcher.Hasher
	defer func() {
		if err == nil {
			return
		}
		for _, h := range hashers {
			if cerr := h.Close(); cerr != nil && o.Logger != nil {
				o.Logger.Debugf("columntree: close hasher: %v", cerr)
			}
		}
	}()

	newHasher := func(arity, batchSize int) (*batcher.Hasher, error) {
		h, err := batcher.New(p, arity, batcher.Options{
			Strength:     o.Strength,
			MaxBatchSize: batchSize,
			Retries:      o.Retries,
			Backoff:      o.Backoff,
			Logger:       o.Logger,
		})
		if err != nil {
			return nil, err
		}
		hashers = append(hashers, h)
		return h, nil
	}

	column, err := newHasher(ColumnArity, o.ColumnBatchSize)
	if err != nil {
		return nil, err
	}
	tree, err := newHasher(TreeArity, o.TreeBatchSize)
	if err != nil {
		return nil, err
	}
	top, err := newHasher(TopArity, o.TreeBatchSize)
	if err != nil {
		return nil, err
	}

	b, err = New(leafCount, Options{
		ColumnHasher: column,
		TreeHasher:   tree,
		TopHasher:    top,
		Strength:     o.Strength,
		Logger:       o.Logger,
	})
	if err != nil {
		return nil, err
	}
	for _, h := range hashers {
		b.closers = append(b.closers, h)
	}
	return b, nil
}
