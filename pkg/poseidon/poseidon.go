// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon

import (
	"fmt"

	"github.com/ethersphere/treehash/pkg/field"
)

// Hash returns the Poseidon hash of preimage, which must hold exactly
// c.Arity elements.
func (c *Constants) Hash(preimage []field.Element) field.Element {
	if len(preimage) != c.Arity {
		panic(fmt.Sprintf("poseidon: preimage of %d elements for arity %d", len(preimage), c.Arity))
	}
	state := make([]field.Element, c.Width)
	scratch := make([]field.Element, c.Width)
	state[0] = c.DomainTag
	copy(state[1:], preimage)

	half := c.FullRounds / 2
	rounds := c.FullRounds + c.PartialRounds
	rc := c.RoundConstants
	for r := 0; r < rounds; r++ {
		for i := range state {
			state[i].Add(&state[i], &rc[0])
			rc = rc[1:]
		}
		if r < half || r >= half+c.PartialRounds {
			for i := range state {
				quintic(&state[i])
			}
		} else {
			quintic(&state[0])
		}
		c.mix(state, scratch)
	}
	return state[1]
}

// mix multiplies state by the MDS matrix in place.
func (c *Constants) mix(state, scratch []field.Element) {
	var t field.Element
	for i, row := range c.MDS {
		scratch[i].SetZero()
		for j := range row {
			t.Mul(&row[j], &state[j])
			scratch[i].Add(&scratch[i], &t)
		}
	}
	copy(state, scratch)
}

// quintic raises x to the fifth power.
func quintic(x *field.Element) {
	var x2, x4 field.Element
	x2.Square(x)
	x4.Square(&x2)
	x.Mul(&x4, x)
}

// SimpleBatchHasher hashes batches one preimage at a time on the calling
// goroutine. It is the reference for all batched backends.
type SimpleBatchHasher struct {
	constants    *Constants
	maxBatchSize int
}

// NewSimpleBatchHasher returns a reference hasher for arity and strength.
// maxBatchSize is only reported back as a batching hint.
func NewSimpleBatchHasher(arity int, strength Strength, maxBatchSize int) (*SimpleBatchHasher, error) {
	c, err := NewConstants(arity, strength)
	if err != nil {
		return nil, err
	}
	return &SimpleBatchHasher{
		constants:    c,
		maxBatchSize: maxBatchSize,
	}, nil
}

// Hash returns one hash per preimage, in order.
func (h *SimpleBatchHasher) Hash(preimages [][]field.Element) ([]field.Element, error) {
	out := make([]field.Element, len(preimages))
	for i, p := range preimages {
		if len(p) != h.constants.Arity {
			return nil, fmt.Errorf("preimage %d has %d elements, want %d", i, len(p), h.constants.Arity)
		}
		out[i] = h.constants.Hash(p)
	}
	return out, nil
}

// MaxBatchSize returns the configured batching hint.
func (h *SimpleBatchHasher) MaxBatchSize() int {
	return h.maxBatchSize
}

// Arity returns the number of elements per preimage.
func (h *SimpleBatchHasher) Arity() int {
	return h.constants.Arity
}
