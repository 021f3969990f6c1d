// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon

import (
	"errors"
	"fmt"

	"github.com/ethersphere/treehash/pkg/field"
	"golang.org/x/crypto/sha3"
)

// ErrUnsupportedArity is returned for arities without round parameters.
var ErrUnsupportedArity = errors.New("unsupported arity")

// FullRounds is the number of full S-box rounds, split evenly around the
// partial rounds.
const FullRounds = 8

// partialRounds maps an arity to its partial round count for 128 bit
// security with a width of arity+1.
var partialRounds = map[int]int{
	2:  55,
	8:  57,
	11: 57,
}

// Supported reports whether arity has round parameters.
func Supported(arity int) bool {
	_, ok := partialRounds[arity]
	return ok
}

// Constants holds everything the permutation needs for one arity and strength.
type Constants struct {
	Arity          int
	Width          int
	Strength       Strength
	FullRounds     int
	PartialRounds  int
	DomainTag      field.Element
	RoundConstants []field.Element
	MDS            [][]field.Element
}

// NewConstants derives the constants for arity and strength.
func NewConstants(arity int, strength Strength) (*Constants, error) {
	rp, ok := partialRounds[arity]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedArity, arity)
	}
	switch strength {
	case Standard:
	case Strengthened:
		// ceil(rp * 1.25)
		rp = (rp*5 + 3) / 4
	default:
		return nil, fmt.Errorf("unknown strength %d", int(strength))
	}

	width := arity + 1
	c := &Constants{
		Arity:         arity,
		Width:         width,
		Strength:      strength,
		FullRounds:    FullRounds,
		PartialRounds: rp,
		DomainTag:     field.FromUint64(1<<uint(arity) - 1),
		MDS:           cauchy(width),
	}
	c.RoundConstants = roundConstants(width, rp, width*(FullRounds+rp))
	return c, nil
}

// MustConstants is like NewConstants but panics on error.
func MustConstants(arity int, strength Strength) *Constants {
	c, err := NewConstants(arity, strength)
	if err != nil {
		panic(err)
	}
	return c
}

// roundConstants draws n canonical field elements from the Grain LFSR
// seeded with the permutation shape. Out of range candidates are skipped.
func roundConstants(width, partialRounds, n int) []field.Element {
	g := newGrain(field.Bits, width, FullRounds, partialRounds)
	out := make([]field.Element, 0, n)
	var e field.Element
	for len(out) < n {
		if err := e.SetBytesCanonical(g.candidate(field.Bits)); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Fingerprint returns the SHA3-256 digest of the round constants followed by
// the MDS matrix rows, each element in its 32 byte big-endian encoding.
func (c *Constants) Fingerprint() [32]byte {
	h := sha3.New256()
	write := func(e *field.Element) {
		b := e.Bytes()
		_, _ = h.Write(b[:])
	}
	for i := range c.RoundConstants {
		write(&c.RoundConstants[i])
	}
	for _, row := range c.MDS {
		for i := range row {
			write(&row[i])
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// cauchy builds the width x width matrix m[i][j] = 1/(i + width + j).
func cauchy(width int) [][]field.Element {
	m := make([][]field.Element, width)
	for i := range m {
		m[i] = make([]field.Element, width)
		for j := range m[i] {
			d := field.FromUint64(uint64(i + width + j))
			m[i][j].Inverse(&d)
		}
	}
	return m
}
