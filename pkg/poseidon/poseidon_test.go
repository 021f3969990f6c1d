// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package poseidon_test

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/ethersphere/treehash/pkg/field"
	"github.com/ethersphere/treehash/pkg/poseidon"
)

var testArities = []int{2, 8, 11}

func preimage(arity int, offset uint64) []field.Element {
	p := make([]field.Element, arity)
	for i := range p {
		p[i] = field.FromUint64(offset + uint64(i))
	}
	return p
}

func TestConstantsShape(t *testing.T) {
	t.Parallel()

	for _, arity := range testArities {
		for _, strength := range []poseidon.Strength{poseidon.Standard, poseidon.Strengthened} {
			c, err := poseidon.NewConstants(arity, strength)
			if err != nil {
				t.Fatal(err)
			}
			if c.Width != arity+1 {
				t.Fatalf("arity %d: got width %d", arity, c.Width)
			}
			if got, want := len(c.RoundConstants), c.Width*(c.FullRounds+c.PartialRounds); got != want {
				t.Fatalf("arity %d %s: got %d round constants, want %d", arity, strength, got, want)
			}
			if len(c.MDS) != c.Width {
				t.Fatalf("arity %d: got %d mds rows", arity, len(c.MDS))
			}
		}
	}
}

func TestStrengthenedAddsRounds(t *testing.T) {
	t.Parallel()

	std := poseidon.MustConstants(8, poseidon.Standard)
	str := poseidon.MustConstants(8, poseidon.Strengthened)
	if str.PartialRounds <= std.PartialRounds {
		t.Fatalf("strengthened partial rounds %d not above standard %d", str.PartialRounds, std.PartialRounds)
	}
	// ceil(57 * 1.25)
	if str.PartialRounds != 72 {
		t.Fatalf("got %d strengthened partial rounds, want 72", str.PartialRounds)
	}
}

func TestUnsupportedArity(t *testing.T) {
	t.Parallel()

	if _, err := poseidon.NewConstants(3, poseidon.Standard); !errors.Is(err, poseidon.ErrUnsupportedArity) {
		t.Fatalf("got error %v, want %v", err, poseidon.ErrUnsupportedArity)
	}
}

func TestHashDeterministicAndSensitive(t *testing.T) {
	t.Parallel()

	for _, arity := range testArities {
		arity := arity
		t.Run(fmt.Sprintf("arity_%d", arity), func(t *testing.T) {
			t.Parallel()

			c := poseidon.MustConstants(arity, poseidon.Standard)
			a := c.Hash(preimage(arity, 1))
			b := poseidon.MustConstants(arity, poseidon.Standard).Hash(preimage(arity, 1))
			if !a.Equal(&b) {
				t.Fatal("hash is not deterministic")
			}
			d := c.Hash(preimage(arity, 2))
			if a.Equal(&d) {
				t.Fatal("different preimages hash to the same value")
			}
			s := poseidon.MustConstants(arity, poseidon.Strengthened).Hash(preimage(arity, 1))
			if a.Equal(&s) {
				t.Fatal("strength variants hash to the same value")
			}
		})
	}
}

// knownAnswers holds hashes of the preimages 0..arity-1 and of all zeros.
var knownAnswers = []struct {
	arity       int
	strength    poseidon.Strength
	fingerprint string
	sequential  string
	zero        string
}{
	{
		arity:       2,
		strength:    poseidon.Standard,
		fingerprint: "b0c69ad048c1d6a95c2bbd135ad7e56718117f35b70935403e6c8618699e8ebc",
		sequential:  "06a6b9b8940d887681bff782af1ac04ca3058bdc4daa4ae377158895f34a995d",
		zero:        "2efe38243126ad40f059246771b6ddc73607608bdf570048d9bb6d409fb92ac5",
	},
	{
		arity:       8,
		strength:    poseidon.Standard,
		fingerprint: "43671d1235740f4429c320e95c316a9883ff3ca3dcde6e48da9d01705270769f",
		sequential:  "4bf0840b96c36c25488f9877ebdefea854187939e96d69d2f3f176f8e7d249d3",
		zero:        "385920cfefe8ebf2f453b7c7addede158b70d96516cfe8cce31bd529dc1c47ca",
	},
	{
		arity:       11,
		strength:    poseidon.Standard,
		fingerprint: "c00c35a9693ec03b965684d1dc581460a9820c272b95d0415c550f290dc63a81",
		sequential:  "3869fad5ccb3b5db0cb55059fecf68148f8cfea8f9d89c04a407ef1d02d56a01",
		zero:        "4245e369b6171e810a2291f05d41a504c8bebf593188ef1bbf9eeba50ebbd84d",
	},
	{
		arity:       2,
		strength:    poseidon.Strengthened,
		fingerprint: "c27d18315ce0fc3a91b8412fc80eebaa50ea98cf6a601164255d60cd82af2c7b",
		sequential:  "001f9ef1993c03e6c23470fe02ecb2f37b1747699286d908abfbe5268caa8e7a",
		zero:        "184b268c992e2ab2416edf915dc49a715442791dc9b5ca87d9c533a7f59fc3de",
	},
	{
		arity:       8,
		strength:    poseidon.Strengthened,
		fingerprint: "e84b94b420b6cba515d7ff70356bf9d4e44e112b8404ae7421ff8b49433c6b0c",
		sequential:  "3c60582a63c6f52835268ab46c378c91626cb4f82b4061cf1ab01ee0b3ed3a9a",
		zero:        "1dabb5571f525d4aa0ab4aefe87aff61df9e645e13a7c9322e209a933bd408ff",
	},
	{
		arity:       11,
		strength:    poseidon.Strengthened,
		fingerprint: "098538ef654cb9783e8a02f44026467ba0a40fc275a30e5ecb3a55ec8f1dcaf2",
		sequential:  "1d40f6912ebbee8f2f543c3c7e9b2413176b2accf92bd0eebe9786183b437602",
		zero:        "55e4148191e9212e56c6a69ee2728b5402c013e5248026ea7375add7fb1b7786",
	},
}

func TestKnownAnswers(t *testing.T) {
	t.Parallel()

	for _, tc := range knownAnswers {
		tc := tc
		t.Run(fmt.Sprintf("%d_%s", tc.arity, tc.strength), func(t *testing.T) {
			t.Parallel()

			c := poseidon.MustConstants(tc.arity, tc.strength)
			fp := c.Fingerprint()
			if got := hex.EncodeToString(fp[:]); got != tc.fingerprint {
				t.Fatalf("got fingerprint %s, want %s", got, tc.fingerprint)
			}
			if got := field.Format(c.Hash(preimage(tc.arity, 0))); got != tc.sequential {
				t.Fatalf("got sequential hash %s, want %s", got, tc.sequential)
			}
			if got := field.Format(c.Hash(make([]field.Element, tc.arity))); got != tc.zero {
				t.Fatalf("got zero hash %s, want %s", got, tc.zero)
			}
		})
	}
}

func TestSimpleBatchHasher(t *testing.T) {
	t.Parallel()

	h, err := poseidon.NewSimpleBatchHasher(11, poseidon.Standard, 64)
	if err != nil {
		t.Fatal(err)
	}
	if h.MaxBatchSize() != 64 {
		t.Fatalf("got max batch size %d, want 64", h.MaxBatchSize())
	}
	c := poseidon.MustConstants(11, poseidon.Standard)
	batch := [][]field.Element{preimage(11, 0), preimage(11, 100), preimage(11, 0)}
	got, err := h.Hash(batch)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range batch {
		want := c.Hash(p)
		if !got[i].Equal(&want) {
			t.Fatalf("result %d mismatch", i)
		}
	}
	if !got[0].Equal(&got[2]) {
		t.Fatal("equal preimages produced different hashes")
	}

	if _, err := h.Hash([][]field.Element{preimage(8, 0)}); err == nil {
		t.Fatal("expected error for wrong preimage size")
	}
}

func TestParseStrength(t *testing.T) {
	t.Parallel()

	for _, s := range []poseidon.Strength{poseidon.Standard, poseidon.Strengthened} {
		got, err := poseidon.ParseStrength(s.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("got %v, want %v", got, s)
		}
	}
	if _, err := poseidon.ParseStrength("weak"); err == nil {
		t.Fatal("expected error for unknown strength")
	}
}
