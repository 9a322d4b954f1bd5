// Package netmodel implements the typed, multi-level node graph the
// inference engine operates on: Node, OrderedPair/NodePair, Network, and
// StateDump (spec.md §3–§4.4).
//
// Concurrency model: per spec.md §5 the engine is single-threaded and
// synchronous — a Network is exclusively mutated by the component driving
// inference (mcmc, merge, collapse) and never observed concurrently during
// a sweep. Network still carries a sync.RWMutex, in the style of
// lvlath/core.Graph, so that read-only inspection calls (Stats-equivalents)
// remain safe to call between sweeps without the caller needing to reason
// about internal layout; it is not a promise of safe concurrent mutation.
package netmodel

import "errors"

// Sentinel errors for netmodel operations. Callers should branch on these
// with errors.Is, never on message text.
var (
	// ErrEmptyID indicates an empty node id was supplied at level 0.
	ErrEmptyID = errors.New("netmodel: node id is empty")

	// ErrDuplicateID indicates a level-0 id collides with an existing node.
	ErrDuplicateID = errors.New("netmodel: duplicate node id at level 0")

	// ErrUnknownType indicates a type name was not declared at construction.
	ErrUnknownType = errors.New("netmodel: unknown node type")

	// ErrLevelTooHigh indicates add_node targeted a level more than one
	// above the current top level.
	ErrLevelTooHigh = errors.New("netmodel: level exceeds current top + 1")

	// ErrUnknownLevel indicates a level index has no corresponding data.
	ErrUnknownLevel = errors.New("netmodel: level does not exist")

	// ErrNodeNotFound indicates a level-0 id lookup failed.
	ErrNodeNotFound = errors.New("netmodel: node not found")

	// ErrRestrictedEdge indicates an edge was attempted between a type
	// pair not present in the restricted multipartite whitelist.
	ErrRestrictedEdge = errors.New("netmodel: edge type pair not allowed")

	// ErrNotLevelZero indicates a level-0-only operation (AddNeighbor) was
	// attempted on a block node.
	ErrNotLevelZero = errors.New("netmodel: operation only valid at level 0")

	// ErrNoParentAtLevel indicates ParentAtLevel climbed past the top of
	// the network without reaching the requested level.
	ErrNoParentAtLevel = errors.New("netmodel: no ancestor at requested level")

	// ErrLevelBelowNode indicates ParentAtLevel was asked for a level
	// strictly below the node's own level (the ancestor chain only climbs).
	ErrLevelBelowNode = errors.New("netmodel: requested level is below node's own level")

	// ErrTooFewNodesForBlocks indicates initialize_blocks(B) requested more
	// blocks than there are nodes of some type.
	ErrTooFewNodesForBlocks = errors.New("netmodel: requested block count exceeds node count")

	// ErrDataLevel indicates an operation that only makes sense on block
	// levels (RemoveBlock, GetInterblockEdgeCounts) was aimed at level 0.
	ErrDataLevel = errors.New("netmodel: operation not valid at the data level")

	// ErrOnlyDataLevel indicates delete_block_level was called when only
	// the data level remains.
	ErrOnlyDataLevel = errors.New("netmodel: cannot delete the data level")

	// ErrStateReference indicates a StateDump row referenced a node id the
	// network has no record of at level 0.
	ErrStateReference = errors.New("netmodel: state dump references unknown node")
)
