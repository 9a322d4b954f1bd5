package netmodel

import (
	"fmt"

	"github.com/hsbm-go/hsbm/sampler"
)

// InitializeBlocks builds a new level 1 on top of the data level, assigning
// every level-0 node a parent block. If B < 0, each node receives its own
// singleton block (the "one block per node" starting point spec.md §4.4
// describes for the finest-grained run). Otherwise every type gets exactly B
// blocks, and that type's nodes are shuffled (via the Network's own Sampler)
// and distributed round-robin across them, so block sizes differ by at most
// one. Fails with ErrTooFewNodesForBlocks if B exceeds some type's node
// count, and with ErrLevelTooHigh if a level above 0 already exists (call
// DeleteBlockLevel first to re-initialize).
func (net *Network) InitializeBlocks(B int) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	if len(net.levels) != 1 {
		return fmt.Errorf("%w: block levels already present", ErrLevelTooHigh)
	}

	net.levels = append(net.levels, level{byType: make([]typeBucket, len(net.types))})

	for typ := range net.types {
		nodes := make([]*Node, len(net.levels[0].byType[typ]))
		copy(nodes, net.levels[0].byType[typ])

		n := len(nodes)
		numBlocks := B
		if B < 0 {
			numBlocks = n
		}
		if numBlocks > n {
			return fmt.Errorf("%w: type %q wants %d blocks for %d nodes", ErrTooFewNodesForBlocks, net.types[typ], numBlocks, n)
		}
		if numBlocks == 0 {
			continue
		}

		sampler.Shuffle(net.Rng, nodes)

		blocks := make([]*Node, numBlocks)
		for i := range blocks {
			blocks[i] = net.addBlockNode(typ, 1)
		}
		for i, child := range nodes {
			parent := blocks[i%numBlocks]
			child.SetParent(parent, true)
		}
	}
	return nil
}

// BuildLevel adds a fresh singleton level on top of the current top level:
// every node currently at the top gets its own new parent block one level
// up. Exposed to callers through Engine.BuildLevel.
func (net *Network) BuildLevel() error {
	net.mu.Lock()
	defer net.mu.Unlock()

	top := len(net.levels) - 1
	newLvl := top + 1
	net.levels = append(net.levels, level{byType: make([]typeBucket, len(net.types))})

	for typ := range net.types {
		for _, child := range net.levels[top].byType[typ] {
			parent := net.addBlockNode(typ, newLvl)
			child.SetParent(parent, true)
		}
	}
	return nil
}

// DeleteBlockLevel removes the current top level, detaching every node that
// level's children referenced as parent. Fails with ErrOnlyDataLevel if only
// level 0 remains.
func (net *Network) DeleteBlockLevel() error {
	net.mu.Lock()
	defer net.mu.Unlock()

	top := len(net.levels) - 1
	if top == 0 {
		return ErrOnlyDataLevel
	}

	for typ := range net.types {
		for _, child := range net.levels[top-1].byType[typ] {
			child.SetParent(nil, false)
		}
	}
	net.levels = net.levels[:top]
	return nil
}

// SwapBlocks reparents child onto newParent. If removeEmpty is true and
// child's old parent becomes childless as a result, the old parent is
// removed from the network entirely — the behavior the MCMC sweep wants
// (vacated blocks vanish immediately) but the agglomerative merger does not
// (it reassigns every child before deciding what happens to the donor).
func (net *Network) SwapBlocks(child, newParent *Node, removeEmpty bool) {
	net.mu.Lock()
	defer net.mu.Unlock()

	old := child.parent
	child.SetParent(newParent, true)

	if removeEmpty && old != nil && old.IsEmpty() {
		net.removeFromBucket(old)
	}
}

// RemoveBlock deletes an empty block node n from the network entirely.
// Fails with ErrDataLevel if n is a level-0 node, with an error if n still
// has children, and with fmt-wrapped ErrNodeNotFound (via the bucket-removal
// invariant check) if n was already removed — the agglomerative merger calls
// this once a donor block has had every child reparented away.
func (net *Network) RemoveBlock(n *Node) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	if n.level == 0 {
		return ErrDataLevel
	}
	if !n.IsEmpty() {
		return fmt.Errorf("netmodel: cannot remove non-empty block %q", n.id)
	}
	if !net.removeFromBucket(n) {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, n.id)
	}
	return nil
}

// EnsureReserveBlock guarantees at least one empty block of typeName exists
// at lvl, creating one if none does. Returns the empty block found or
// created, and whether a new one was created — the variable-block-count
// MCMC mode calls this at the start of every sweep and after every accepted
// move to keep at least one "room to grow into" block per type available
// (spec.md §4.7).
func (net *Network) EnsureReserveBlock(typeName string, lvl int) (*Node, bool, error) {
	net.mu.Lock()
	defer net.mu.Unlock()

	typ, err := net.typeIdx(typeName)
	if err != nil {
		return nil, false, err
	}
	if err := net.checkLevel(lvl); err != nil {
		return nil, false, err
	}
	for _, n := range net.levels[lvl].byType[typ] {
		if n.IsEmpty() {
			return n, false, nil
		}
	}
	return net.addBlockNode(typ, lvl), true, nil
}
