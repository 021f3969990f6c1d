// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package columntree builds a Merkle tree over a stream of columns.
//
// Every column of eleven elements is hashed into one leaf. Leaf rows are
// folded eight to one while the row length allows it and two to one after
// that, until a single root remains. Columns may be pushed in batches of any
// size; hashing is done in batches sized by the hashers' hints and the
// resulting tree does not depend on how the input was split.
package columntree

import (
	"errors"
	"fmt"
	"math"

	"github.com/ethersphere/treehash/pkg/field"
	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/ethersphere/treehash/pkg/poseidon"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrLeafCount is returned when the number of columns pushed does not
	// match the leaf count the builder was created for.
	ErrLeafCount = errors.New("leaf count mismatch")
	// ErrFinalized is returned by calls made after the final batch or after
	// an error.
	ErrFinalized = errors.New("builder finalized")
)

// Column is the preimage of one leaf.
type Column [ColumnArity]field.Element

// BatchHasher hashes batches of preimages of one arity.
type BatchHasher interface {
	Hash(preimages [][]field.Element) ([]field.Element, error)
	// MaxBatchSize is a batching hint; zero or less means no preference.
	MaxBatchSize() int
}

// Options configure a Builder. Nil hashers are replaced by unbatched
// reference hashers of the configured strength.
type Options struct {
	ColumnHasher BatchHasher
	TreeHasher   BatchHasher
	TopHasher    BatchHasher
	Strength     poseidon.Strength
	Logger       logging.Logger
}

type state int

const (
	accepting state = iota
	done
)

// Builder streams columns into a tree. It is not safe for concurrent use.
type Builder struct {
	leafCount int
	arities   []int
	sizes     []int
	strength  poseidon.Strength
	logger    logging.Logger

	columnHasher BatchHasher
	treeHasher   BatchHasher
	topHasher    BatchHasher
	closers      []interface{ Close() error }

	state    state
	received int
	pending  []Column
	rows     [][]field.Element
	// folded holds how many nodes of each row were hashed into the next.
	folded []int
}

// New returns a builder for a tree over leafCount columns.
func New(leafCount int, o Options) (*Builder, error) {
	arities, err := shape(leafCount)
	if err != nil {
		return nil, err
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	b := &Builder{
		leafCount:    leafCount,
		arities:      arities,
		sizes:        rowSizes(leafCount, arities),
		strength:     o.Strength,
		logger:       o.Logger,
		columnHasher: o.ColumnHasher,
		treeHasher:   o.TreeHasher,
		topHasher:    o.TopHasher,
	}
	for _, h := range []struct {
		hasher *BatchHasher
		arity  int
	}{
		{&b.columnHasher, ColumnArity},
		{&b.treeHasher, TreeArity},
		{&b.topHasher, TopArity},
	} {
		if *h.hasher != nil {
			continue
		}
		ref, err := poseidon.NewSimpleBatchHasher(h.arity, o.Strength, 0)
		if err != nil {
			return nil, err
		}
		*h.hasher = ref
	}

	b.rows = make([][]field.Element, len(b.sizes))
	for i, n := range b.sizes {
		b.rows[i] = make([]field.Element, 0, n)
	}
	b.folded = make([]int, len(arities))
	return b, nil
}

// LeafCount returns the number of columns the builder expects.
func (b *Builder) LeafCount() int {
	return b.leafCount
}

// TreeSize returns the number of nodes of the finished tree.
func (b *Builder) TreeSize() int {
	var size int
	for _, n := range b.sizes {
		size += n
	}
	return size
}

// AddColumns pushes a batch of columns and returns the number of tree nodes,
// leaves included, produced so far.
func (b *Builder) AddColumns(columns []Column) (int, error) {
	if b.state == done {
		return 0, ErrFinalized
	}
	if b.received+len(columns) > b.leafCount {
		b.state = done
		return 0, fmt.Errorf("%w: got %d columns, want %d", ErrLeafCount, b.received+len(columns), b.leafCount)
	}
	b.pending = append(b.pending, columns...)
	b.received += len(columns)

	if err := b.flush(false); err != nil {
		b.state = done
		return 0, err
	}
	return b.produced(), nil
}

// AddFinalColumns pushes the last batch, which may be empty, and returns the
// leaves and the whole tree, leaves first and root last.
func (b *Builder) AddFinalColumns(columns []Column) (leaves, tree []field.Element, err error) {
	if b.state == done {
		return nil, nil, ErrFinalized
	}
	b.state = done

	if total := b.received + len(columns); total != b.leafCount {
		return nil, nil, fmt.Errorf("%w: got %d columns, want %d", ErrLeafCount, total, b.leafCount)
	}
	b.pending = append(b.pending, columns...)
	b.received += len(columns)

	if err := b.flush(true); err != nil {
		return nil, nil, err
	}
	for i, row := range b.rows {
		if len(row) != b.sizes[i] {
			return nil, nil, fmt.Errorf("row %d has %d nodes, want %d", i, len(row), b.sizes[i])
		}
	}

	tree = make([]field.Element, 0, b.TreeSize())
	for _, row := range b.rows {
		tree = append(tree, row...)
	}
	b.logger.Debugf("columntree: built tree of %d nodes over %d leaves, root %s", len(tree), b.leafCount, field.Format(tree[len(tree)-1]))
	return b.rows[0], tree, nil
}

func (b *Builder) produced() int {
	var n int
	for _, row := range b.rows {
		n += len(row)
	}
	return n
}

// flush hashes pending columns into leaves and folds rows upwards. Unless
// final, work is only done in whole batches of the hashers' hint.
func (b *Builder) flush(final bool) error {
	hint := batchHint(b.columnHasher)
	for len(b.pending) > 0 && (final || len(b.pending) >= hint) {
		n := min(hint, len(b.pending))
		preimages := make([][]field.Element, n)
		for i := range preimages {
			preimages[i] = b.pending[i][:]
		}
		leaves, err := hashBatch(b.columnHasher, preimages)
		if err != nil {
			return fmt.Errorf("hash columns: %w", err)
		}
		b.rows[0] = append(b.rows[0], leaves...)
		b.pending = b.pending[n:]
	}
	if len(b.pending) == 0 {
		b.pending = nil
	}

	for level, arity := range b.arities {
		h := b.hasherFor(arity)
		hint := batchHint(h)
		for {
			groups := (len(b.rows[level]) - b.folded[level]) / arity
			if groups == 0 || (!final && groups < hint) {
				break
			}
			n := min(hint, groups)
			row := b.rows[level][b.folded[level] : b.folded[level]+n*arity]
			preimages := make([][]field.Element, n)
			for i := range preimages {
				preimages[i] = row[i*arity : (i+1)*arity : (i+1)*arity]
			}
			nodes, err := hashBatch(h, preimages)
			if err != nil {
				return fmt.Errorf("hash row %d: %w", level, err)
			}
			b.rows[level+1] = append(b.rows[level+1], nodes...)
			b.folded[level] += n * arity
			b.logger.Tracef("columntree: folded %d nodes of row %d", n*arity, level)
		}
	}
	return nil
}

func (b *Builder) hasherFor(arity int) BatchHasher {
	if arity == TreeArity {
		return b.treeHasher
	}
	return b.topHasher
}

func batchHint(h BatchHasher) int {
	if n := h.MaxBatchSize(); n > 0 {
		return n
	}
	return math.MaxInt
}

func hashBatch(h BatchHasher, preimages [][]field.Element) ([]field.Element, error) {
	out, err := h.Hash(preimages)
	if err != nil {
		return nil, err
	}
	if len(out) != len(preimages) {
		return nil, fmt.Errorf("got %d hashes for %d preimages", len(out), len(preimages))
	}
	return out, nil
}

// ComputeUniformTreeRoot returns the root of a tree whose columns all equal
// column, derived row by row with the reference hash. It is meant to check
// streamed results.
func (b *Builder) ComputeUniformTreeRoot(column Column) (field.Element, error) {
	c, err := poseidon.NewConstants(ColumnArity, b.strength)
	if err != nil {
		return field.Element{}, err
	}
	node := c.Hash(column[:])
	for _, arity := range b.arities {
		c, err := poseidon.NewConstants(arity, b.strength)
		if err != nil {
			return field.Element{}, err
		}
		preimage := make([]field.Element, arity)
		for i := range preimage {
			preimage[i] = node
		}
		node = c.Hash(preimage)
	}
	return node, nil
}

// Close closes the hashers the builder created.
func (b *Builder) Close() error {
	var mErr *multierror.Error
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	b.closers = nil
	return mErr.ErrorOrNil()
}
