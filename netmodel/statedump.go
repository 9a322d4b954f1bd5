package netmodel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StateRow is one node's hierarchy record: its id, declared type, the level
// it lives at, and its parent's id (empty for a node with no parent, which
// is only valid at the current top level).
type StateRow struct {
	ID       NodeID
	TypeName string
	Level    int
	ParentID NodeID
}

// StateDump is a complete, level-by-level snapshot of a Network's hierarchy
// — the serialization unit the store package persists (spec.md §4.4's
// state()/update_state() pair), independent of any particular storage
// backend.
type StateDump struct {
	Types []string
	Rows  []StateRow
}

// State captures every node at every level, in deterministic (level, type,
// id) order, suitable for persistence and later restoration via
// UpdateState on a Network sharing the same level-0 nodes and declared
// types.
func (net *Network) State() (StateDump, error) {
	net.mu.RLock()
	defer net.mu.RUnlock()

	dump := StateDump{Types: append([]string(nil), net.types...)}
	for lvl, lv := range net.levels {
		for typ, bucket := range lv.byType {
			for _, n := range bucket {
				var parentID NodeID
				if n.parent != nil {
					parentID = n.parent.id
				}
				dump.Rows = append(dump.Rows, StateRow{
					ID:       n.id,
					TypeName: net.types[typ],
					Level:    lvl,
					ParentID: parentID,
				})
			}
		}
	}
	sort.Slice(dump.Rows, func(i, j int) bool {
		a, b := dump.Rows[i], dump.Rows[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.TypeName != b.TypeName {
			return a.TypeName < b.TypeName
		}
		return a.ID < b.ID
	})
	return dump, nil
}

// UpdateState rebuilds every block level (level >= 1) from dump, discarding
// whatever block levels the Network currently has. Level-0 rows are not
// re-created — dump.Rows entries at level 0 are used only to re-parent the
// existing level-0 nodes — so dump must have been produced by (or be
// compatible with) a Network over the same level-0 node set. Declared types
// must match exactly (order-sensitive, mirroring go.mod's own ordered
// require blocks — predictable over clever). Fails with ErrStateReference
// if any row names an id absent from the dump itself or from level 0.
func (net *Network) UpdateState(dump StateDump) error {
	net.mu.Lock()
	defer net.mu.Unlock()

	if len(dump.Types) != len(net.types) {
		return fmt.Errorf("%w: type count mismatch", ErrStateReference)
	}
	for i, t := range dump.Types {
		if t != net.types[i] {
			return fmt.Errorf("%w: type %q at index %d, want %q", ErrStateReference, t, i, net.types[i])
		}
	}

	for _, bucket := range net.levels[0].byType {
		for _, n := range bucket {
			n.parent = nil
			n.degree = len(n.neighbors)
		}
	}
	net.levels = net.levels[:1]

	maxLevel := 0
	for _, r := range dump.Rows {
		if r.Level > maxLevel {
			maxLevel = r.Level
		}
	}
	for l := 1; l <= maxLevel; l++ {
		net.levels = append(net.levels, level{byType: make([]typeBucket, len(net.types))})
	}

	rows := append([]StateRow(nil), dump.Rows...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })

	nodesByID := make(map[NodeID]*Node, len(rows)+len(net.idIndex))
	for id, n := range net.idIndex {
		nodesByID[id] = n
	}

	for _, r := range rows {
		if r.Level == 0 {
			if _, ok := nodesByID[r.ID]; !ok {
				return fmt.Errorf("%w: %q", ErrStateReference, r.ID)
			}
			continue
		}
		typIdx, err := net.typeIdx(r.TypeName)
		if err != nil {
			return err
		}
		n := NewNode(r.ID, r.Level, typIdx)
		net.levels[r.Level].byType[typIdx] = append(net.levels[r.Level].byType[typIdx], n)
		nodesByID[r.ID] = n
		net.bumpNextBlockID(r.ID)
	}

	for _, r := range rows {
		child, ok := nodesByID[r.ID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrStateReference, r.ID)
		}
		if r.ParentID == "" {
			continue
		}
		parent, ok := nodesByID[r.ParentID]
		if !ok {
			return fmt.Errorf("%w: %q", ErrStateReference, r.ParentID)
		}
		child.SetParent(parent, true)
	}
	return nil
}

// bumpNextBlockID keeps the engine-generated id counter ahead of any
// "b_<n>" id restored from a dump, so freshly minted blocks after a restore
// never collide with restored ones.
func (net *Network) bumpNextBlockID(id NodeID) {
	suffix, ok := strings.CutPrefix(string(id), "b_")
	if !ok {
		return
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return
	}
	if n+1 > net.nextBlockID {
		net.nextBlockID = n + 1
	}
}
