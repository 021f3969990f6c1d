// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package columntree

import (
	"errors"
	"fmt"
)

const (
	// ColumnArity is the number of elements hashed into one leaf.
	ColumnArity = 11
	// TreeArity folds rows while their length is a multiple of it.
	TreeArity = 8
	// TopArity folds the remaining rows down to the root.
	TopArity = 2
)

// ErrLeafCountShape is returned for leaf counts that do not fold down to a
// single root.
var ErrLeafCountShape = errors.New("leaf count must be a positive power of two")

// shape returns the arity used to fold each row into the next one, starting
// from the leaves.
func shape(leafCount int) ([]int, error) {
	if leafCount <= 0 || leafCount&(leafCount-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrLeafCountShape, leafCount)
	}
	var arities []int
	for n := leafCount; n > 1; {
		a := TopArity
		if n%TreeArity == 0 {
			a = TreeArity
		}
		arities = append(arities, a)
		n /= a
	}
	return arities, nil
}

// rowSizes returns the number of nodes of every row, leaves first.
func rowSizes(leafCount int, arities []int) []int {
	sizes := make([]int, 0, len(arities)+1)
	n := leafCount
	sizes = append(sizes, n)
	for _, a := range arities {
		n /= a
		sizes = append(sizes, n)
	}
	return sizes
}

// TreeSize returns the number of nodes, leaves and root included, of a tree
// over leafCount leaves.
func TreeSize(leafCount int) (int, error) {
	arities, err := shape(leafCount)
	if err != nil {
		return 0, err
	}
	var size int
	for _, n := range rowSizes(leafCount, arities) {
		size += n
	}
	return size, nil
}
