// Package consensus tracks, across repeated MCMC sweeps, how often each
// pair of nodes ends up co-located in the same block — the empirical
// consensus signal spec.md §4.9 uses to judge how stable a partition is.
package consensus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hsbm-go/hsbm/netmodel"
)

// PairKey canonically identifies an unordered pair of node ids as
// "idA--idB" with idA <= idB lexically, matching spec.md §4.9's key format.
type PairKey string

// MakeKey builds the canonical key for (a, b).
func MakeKey(a, b netmodel.NodeID) PairKey {
	if a <= b {
		return PairKey(fmt.Sprintf("%s--%s", a, b))
	}
	return PairKey(fmt.Sprintf("%s--%s", b, a))
}

// Split recovers the two ids that produced key.
func (k PairKey) Split() (netmodel.NodeID, netmodel.NodeID, bool) {
	parts := strings.SplitN(string(k), "--", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return netmodel.NodeID(parts[0]), netmodel.NodeID(parts[1]), true
}

// PairStatus is one tracked pair's running consensus state.
type PairStatus struct {
	Connected      bool
	TimesConnected int
}

// Tracker owns the co-membership table for a fixed set of level-0 nodes,
// observed at a fixed block level across successive sweeps.
type Tracker struct {
	level int
	pairs map[PairKey]*PairStatus
}

// NewTracker initializes a Tracker for every pairwise combination of nodes
// whose types allow co-membership — spec.md §4.9's
// initialize_pair_tracking_map. A block only ever holds members of one
// declared type, so two nodes can never share a block unless they share a
// type; pairs across incompatible types are excluded here rather than
// tracked and permanently stuck at Connected == false. In a unipartite
// network every node shares the single declared type, so this reduces to
// every pair. Cost is O(n^2) in the number of nodes, matching the tracker's
// own exhaustive pairwise bookkeeping.
func NewTracker(nodes []*netmodel.Node, level int) *Tracker {
	t := &Tracker{level: level, pairs: make(map[PairKey]*PairStatus)}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Type() != nodes[j].Type() {
				continue
			}
			t.pairs[MakeKey(nodes[i].ID(), nodes[j].ID())] = &PairStatus{}
		}
	}
	return t
}

// Update recomputes every tracked pair's co-membership against net's
// current state at the tracker's level, then increments TimesConnected for
// every pair that is connected after the recompute — so a pair that stays
// co-located sweep after sweep accumulates one count per sweep, and a pair
// that separates stops accumulating until it reunites.
func (t *Tracker) Update(net *netmodel.Network) error {
	for key, status := range t.pairs {
		aID, bID, ok := key.Split()
		if !ok {
			return fmt.Errorf("consensus: malformed pair key %q", key)
		}
		a, err := net.GetNode(aID)
		if err != nil {
			return fmt.Errorf("consensus: %w", err)
		}
		b, err := net.GetNode(bID)
		if err != nil {
			return fmt.Errorf("consensus: %w", err)
		}

		pa, err := a.ParentAtLevel(t.level)
		if err != nil {
			return fmt.Errorf("consensus: %w", err)
		}
		pb, err := b.ParentAtLevel(t.level)
		if err != nil {
			return fmt.Errorf("consensus: %w", err)
		}

		status.Connected = pa == pb
		if status.Connected {
			status.TimesConnected++
		}
	}
	return nil
}

// Status returns the current tracked status for (a, b), and whether that
// pair is tracked at all.
func (t *Tracker) Status(a, b netmodel.NodeID) (PairStatus, bool) {
	status, ok := t.pairs[MakeKey(a, b)]
	if !ok {
		return PairStatus{}, false
	}
	return *status, true
}

// Entry pairs a canonical key with its tracked status, for deterministic
// enumeration of the whole table.
type Entry struct {
	Key    PairKey
	Status PairStatus
}

// All returns every tracked pair in ascending key order.
func (t *Tracker) All() []Entry {
	out := make([]Entry, 0, len(t.pairs))
	for k, v := range t.pairs {
		out = append(out, Entry{Key: k, Status: *v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
