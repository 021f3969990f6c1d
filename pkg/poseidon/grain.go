// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon

// grainSize is the length of the Grain LFSR state in bits.
const grainSize = 80

// grain is the self-shrinking Grain LFSR that generates Poseidon round
// constants for a prime field with an x^alpha S-box.
type grain struct {
	bits [grainSize]uint8
	head int
}

func newGrain(fieldBits, width, fullRounds, partialRounds int) *grain {
	g := new(grain)
	n := 0
	put := func(size int, v uint64) {
		for i := size - 1; i >= 0; i-- {
			g.bits[n] = uint8(v>>uint(i)) & 1
			n++
		}
	}
	put(2, 1) // prime field
	put(4, 0) // x^alpha
	put(12, uint64(fieldBits))
	put(12, uint64(width))
	put(10, uint64(fullRounds))
	put(10, uint64(partialRounds))
	put(30, 1<<30-1)

	for i := 0; i < 2*grainSize; i++ {
		g.step()
	}
	return g
}

// step clocks the register once and returns the new bit.
func (g *grain) step() uint8 {
	at := func(i int) uint8 {
		return g.bits[(g.head+i)%grainSize]
	}
	b := at(62) ^ at(51) ^ at(38) ^ at(23) ^ at(13) ^ at(0)
	g.bits[g.head] = b
	g.head = (g.head + 1) % grainSize
	return b
}

// bit returns the next output bit. Bits are drawn in pairs and the second
// one is kept only when the first is set.
func (g *grain) bit() uint8 {
	for {
		keep := g.step()
		b := g.step()
		if keep == 1 {
			return b
		}
	}
}

// candidate returns the next n output bits as a big-endian integer, most
// significant bit first, padded on the left to whole bytes.
func (g *grain) candidate(n int) []byte {
	out := make([]byte, (n+7)/8)
	first := n % 8
	if first == 0 {
		first = 8
	}
	for i := range out {
		k := 8
		if i == 0 {
			k = first
		}
		for ; k > 0; k-- {
			out[i] = out[i]<<1 | g.bit()
		}
	}
	return out
}
