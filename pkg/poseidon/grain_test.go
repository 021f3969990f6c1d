// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon

import (
	"fmt"
	"math/big"
	"testing"
)

// The Grain stream does not depend on the field beyond its bit length, so the
// widely published BN254 constants for width 3, 8 full and 57 partial rounds
// pin the generator.
func TestGrainBN254Constants(t *testing.T) {
	t.Parallel()

	modulus, _ := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	want := []string{
		"0ee9a592ba9a9518d05986d656f40c2114c4993c11bb29938d21d47304cd8e6e",
		"00f1445235f2148c5986587169fc1bcd887b08d4d00868df5696fff40956e864",
	}

	g := newGrain(254, 3, 8, 57)
	var got []string
	for len(got) < len(want) {
		v := new(big.Int).SetBytes(g.candidate(254))
		if v.Cmp(modulus) >= 0 {
			continue
		}
		got = append(got, fmt.Sprintf("%064x", v))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("constant %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGrainCandidateWidth(t *testing.T) {
	t.Parallel()

	g := newGrain(255, 3, 8, 55)
	for i := 0; i < 32; i++ {
		b := g.candidate(255)
		if len(b) != 32 {
			t.Fatalf("got %d bytes, want 32", len(b))
		}
		if b[0]&0x80 != 0 {
			t.Fatal("top bit set in a 255 bit candidate")
		}
	}
}
