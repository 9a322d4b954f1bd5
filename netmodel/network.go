package netmodel

import (
	"fmt"
	"sync"

	"github.com/hsbm-go/hsbm/sampler"
)

// PartiteMode classifies how a Network restricts edges between node types,
// mirroring the original engine's Partite_Structure enum.
type PartiteMode int

const (
	// Unipartite: a single declared type; every edge is valid.
	Unipartite PartiteMode = iota
	// Multipartite: more than one type, any cross-type pair may connect.
	Multipartite
	// MultipartiteRestricted: only type pairs in the allowed set may connect.
	MultipartiteRestricted
)

// typeBucket holds one type's nodes at one level, in insertion order.
type typeBucket = []*Node

// level holds, per declared type index, the ordered bucket of nodes at that
// level: level.byType[typeIndex] -> []*Node.
type level struct {
	byType []typeBucket
}

// Network owns every node in the multi-level graph (spec.md §3–4.4). It
// enforces the type system (including restricted edge whitelists), builds
// and tears down block levels, and is the sole source of randomness via its
// embedded Sampler — delegated, never shared, exactly as spec.md §5
// prescribes.
type Network struct {
	mu sync.RWMutex

	types     []string
	typeIndex map[string]int

	partite        PartiteMode
	allowedByIndex map[OrderedPair[int]]struct{}

	levels []level // levels[0] is the data level

	idIndex map[NodeID]*Node // level-0 id -> *Node

	nextBlockID uint64

	Rng *sampler.Sampler
}

// New constructs an empty Network with the given declared type names and a
// single (unipartite, if len(typeNames)==1) data level. Fails (returns a
// *Network, error pair is unnecessary here: construction cannot fail on its
// own) only in the sense that subsequent operations validate their inputs.
func New(typeNames []string, seed int64) *Network {
	net := &Network{
		types:     append([]string(nil), typeNames...),
		typeIndex: make(map[string]int, len(typeNames)),
		idIndex:   make(map[NodeID]*Node),
		Rng:       sampler.New(seed),
	}
	for i, t := range typeNames {
		net.typeIndex[t] = i
	}
	if len(typeNames) <= 1 {
		net.partite = Unipartite
	} else {
		net.partite = Multipartite
	}
	net.levels = append(net.levels, level{byType: make([]typeBucket, len(typeNames))})
	return net
}

// NewBulk constructs a Network and immediately bulk-loads nodes (ids/types
// aligned by index, both the same length) and, if edgesA/edgesB are
// non-empty, edges between them. Mirrors the original engine's bulk
// constructor overloads.
func NewBulk(typeNames []string, ids, types []string, edgesA, edgesB []string, seed int64) (*Network, error) {
	net := New(typeNames, seed)
	for i := range ids {
		if _, err := net.AddNode(NodeID(ids[i]), types[i], 0); err != nil {
			return nil, err
		}
	}
	if err := net.AddEdges(edgesA, edgesB); err != nil {
		return nil, err
	}
	return net, nil
}

// NewRestrictedBipartite constructs a Network in MultipartiteRestricted mode
// from the start, with allowedA/allowedB naming the type pairs (by name,
// order-insensitive) permitted to connect. Any other type combination is
// rejected by AddEdge with ErrRestrictedEdge.
func NewRestrictedBipartite(typeNames []string, allowedA, allowedB []string, seed int64) (*Network, error) {
	net := New(typeNames, seed)
	net.partite = MultipartiteRestricted
	net.allowedByIndex = make(map[OrderedPair[int]]struct{}, len(allowedA))
	for i := range allowedA {
		ta, err := net.typeIdx(allowedA[i])
		if err != nil {
			return nil, err
		}
		tb, err := net.typeIdx(allowedB[i])
		if err != nil {
			return nil, err
		}
		net.allowedByIndex[NewOrderedPair(ta, tb)] = struct{}{}
	}
	return net, nil
}

func (net *Network) typeIdx(name string) (int, error) {
	idx, ok := net.typeIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return idx, nil
}

// NumTypes returns the number of declared node types.
func (net *Network) NumTypes() int { return len(net.types) }

// TypeName returns the declared name for a type index.
func (net *Network) TypeName(idx int) (string, error) {
	if idx < 0 || idx >= len(net.types) {
		return "", fmt.Errorf("%w: type index %d", ErrUnknownType, idx)
	}
	return net.types[idx], nil
}

// NLevels returns the number of levels currently in the network (>= 1).
func (net *Network) NLevels() int {
	net.mu.RLock()
	defer net.mu.RUnlock()
	return len(net.levels)
}

// TopLevel returns the index of the highest level currently present.
func (net *Network) TopLevel() int { return net.NLevels() - 1 }

func (net *Network) checkLevel(l int) error {
	if l < 0 || l >= len(net.levels) {
		return fmt.Errorf("%w: level %d", ErrUnknownLevel, l)
	}
	return nil
}
