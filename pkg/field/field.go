// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package field provides the scalar field element hashed by the tree builder.
// An Element is a BLS12-381 scalar held as four unsigned 64-bit limbs in
// Montgomery form; the limb order is the canonical wire order used by the
// hashing backends.
package field

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	// Limbs is the number of 64-bit limbs of one Element.
	Limbs = fr.Limbs
	// Bits is the bit length of the field modulus.
	Bits = fr.Bits
	// Bytes is the size of the big-endian byte encoding of one Element.
	Bytes = fr.Bytes
)

// Element is one field element.
type Element = fr.Element

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// FromUint64 returns the element representing v.
func FromUint64(v uint64) Element {
	var e Element
	e.SetUint64(v)
	return e
}

// FromBytes interprets b as a big-endian integer reduced modulo the field order.
func FromBytes(b []byte) Element {
	var e Element
	e.SetBytes(b)
	return e
}

// ToLimbs returns the Montgomery limbs of e.
func ToLimbs(e *Element) [Limbs]uint64 {
	return [Limbs]uint64(*e)
}

// FromLimbs builds an element from Montgomery limbs. It reports false when
// the limbs do not encode a value below the field modulus.
func FromLimbs(l [Limbs]uint64) (Element, bool) {
	e := Element(l)
	return e, canonical(l)
}

// modulus holds the field order as little-endian limbs.
var modulus = func() (q [Limbs]uint64) {
	m := fr.Modulus()
	for i := 0; i < Limbs; i++ {
		q[i] = m.Uint64()
		m.Rsh(m, 64)
	}
	return q
}()

// canonical reports whether l is strictly below the modulus, comparing from
// the most significant limb down.
func canonical(l [Limbs]uint64) bool {
	for i := Limbs - 1; i >= 0; i-- {
		switch {
		case l[i] < modulus[i]:
			return true
		case l[i] > modulus[i]:
			return false
		}
	}
	return false
}

// Format renders a short hex form of e for log lines.
func Format(e Element) string {
	b := e.Bytes()
	return fmt.Sprintf("%x", b[:])
}
