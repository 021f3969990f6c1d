// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package limbs converts between field elements and the flat limb arrays
// exchanged with hashing backends.
//
// A batch of K tuples of arity A is laid out as K*A*4 uint64 values, row-major
// by tuple, then by element, then by limb.
package limbs

import (
	"errors"
	"fmt"

	"github.com/ethersphere/treehash/pkg/field"
)

var (
	// ErrLength is returned when a limb buffer does not hold a whole number
	// of elements or tuples.
	ErrLength = errors.New("wrong size limbs to convert")
	// ErrNonCanonical is returned when limbs encode a value outside the field.
	ErrNonCanonical = errors.New("non-canonical element limbs")
)

// FromElements flattens elements into limbs.
func FromElements(elems []field.Element) []uint64 {
	out := make([]uint64, len(elems)*field.Limbs)
	for i := range elems {
		l := field.ToLimbs(&elems[i])
		copy(out[i*field.Limbs:], l[:])
	}
	return out
}

// FromTuples flattens a batch of equally sized tuples. It panics if the
// tuples are not grouped uniformly, which is a caller bug.
func FromTuples(tuples [][]field.Element) []uint64 {
	if len(tuples) == 0 {
		return nil
	}
	arity := len(tuples[0])
	out := make([]uint64, 0, len(tuples)*arity*field.Limbs)
	for i, t := range tuples {
		if len(t) != arity {
			panic(fmt.Sprintf("elements must be grouped uniformly: tuple %d has %d elements, want %d", i, len(t), arity))
		}
		for j := range t {
			l := field.ToLimbs(&t[j])
			out = append(out, l[:]...)
		}
	}
	return out
}

// ToElements decodes limbs into elements.
func ToElements(flat []uint64) ([]field.Element, error) {
	if len(flat)%field.Limbs != 0 {
		return nil, fmt.Errorf("%w: %d limbs", ErrLength, len(flat))
	}
	out := make([]field.Element, len(flat)/field.Limbs)
	for i := range out {
		var l [field.Limbs]uint64
		copy(l[:], flat[i*field.Limbs:])
		e, ok := field.FromLimbs(l)
		if !ok {
			return nil, fmt.Errorf("element %d: %w", i, ErrNonCanonical)
		}
		out[i] = e
	}
	return out, nil
}

// ToTuples decodes limbs into tuples of the given arity.
func ToTuples(flat []uint64, arity int) ([][]field.Element, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("invalid arity %d", arity)
	}
	if len(flat)%(arity*field.Limbs) != 0 {
		return nil, fmt.Errorf("%w: %d limbs for arity %d", ErrLength, len(flat), arity)
	}
	elems, err := ToElements(flat)
	if err != nil {
		return nil, err
	}
	out := make([][]field.Element, len(elems)/arity)
	for i := range out {
		out[i] = elems[i*arity : (i+1)*arity : (i+1)*arity]
	}
	return out, nil
}
