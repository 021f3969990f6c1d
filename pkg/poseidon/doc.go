// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package poseidon implements the Poseidon permutation based hash over the
// BLS12-381 scalar field for the fixed arities used by the column tree:
// 2, 8 and 11 field elements.
//
// The state has width arity+1. The first state element carries the domain
// tag 2^arity-1, the remaining ones the preimage, and the hash output is the
// second element of the permuted state. Round constants come from the Grain
// LFSR of the Poseidon paper seeded with the field size, width and round
// counts, and the MDS matrix is the Cauchy matrix 1/(x_i+y_j) with x_i = i,
// y_j = width+j. These are the parameters of the neptune hasher used by
// Filecoin sealing, so digests are interchangeable with it. The strengthened
// variant raises the partial rounds by a quarter, rounded up.
//
// Two implementations of the batch interface are provided:
//
// SimpleBatchHasher hashes every preimage one by one and is the reference
// against which accelerated backends are tested.
//
// Constants.Hash is the single preimage primitive that backends build on.
package poseidon
