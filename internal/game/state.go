// Package game holds the mutable player state and the narrative engine that
// advances it.
package game

import (
	"sort"

	"github.com/inkdrift/inkdrift/internal/story"
)

// State is the full mutable record of one play session. It is owned by
// exactly one session at a time and mutated only through Apply.
type State struct {
	StoryID   string
	Scene     string
	Stats     map[string]int
	Inventory map[string]int
	Flags     map[string]bool
	History   []string
}

// Stat returns the current value of a statistic. Unknown names read as zero.
func (st *State) Stat(name string) int {
	return st.Stats[name]
}

// ItemCount returns the held quantity of an inventory item, zero if absent.
func (st *State) ItemCount(name string) int {
	return st.Inventory[name]
}

// HasFlag reports whether a flag is set.
func (st *State) HasFlag(name string) bool {
	return st.Flags[name]
}

// FlagList returns the set flags in sorted order.
func (st *State) FlagList() []string {
	flags := make([]string, 0, len(st.Flags))
	for f := range st.Flags {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return flags
}

// Apply mutates the state by one effect. Stat deltas are clamped to the
// statistic's declared bounds; inventory quantities at or below zero delete
// the entry; flag set/clear is idempotent.
func (st *State) Apply(e story.Effect, s *story.Story) {
	switch {
	case e.Stat != "":
		v := st.Stats[e.Stat] + e.Delta
		if def, ok := s.Stat(e.Stat); ok {
			if def.Min != nil && v < *def.Min {
				v = *def.Min
			}
			if def.Max != nil && v > *def.Max {
				v = *def.Max
			}
		}
		st.Stats[e.Stat] = v

	case e.AddItem != "":
		st.Inventory[e.AddItem] += effectQuantity(e)

	case e.RemoveItem != "":
		st.Inventory[e.RemoveItem] -= effectQuantity(e)
		if st.Inventory[e.RemoveItem] <= 0 {
			delete(st.Inventory, e.RemoveItem)
		}

	case e.SetFlag != "":
		st.Flags[e.SetFlag] = true

	case e.ClearFlag != "":
		delete(st.Flags, e.ClearFlag)
	}
}

// Clone returns a deep copy of the state.
func (st *State) Clone() *State {
	out := &State{
		StoryID:   st.StoryID,
		Scene:     st.Scene,
		Stats:     make(map[string]int, len(st.Stats)),
		Inventory: make(map[string]int, len(st.Inventory)),
		Flags:     make(map[string]bool, len(st.Flags)),
		History:   append([]string(nil), st.History...),
	}
	for k, v := range st.Stats {
		out.Stats[k] = v
	}
	for k, v := range st.Inventory {
		out.Inventory[k] = v
	}
	for k := range st.Flags {
		out.Flags[k] = true
	}
	return out
}

// Equal reports field-wise equality with another state.
func (st *State) Equal(other *State) bool {
	if st.StoryID != other.StoryID || st.Scene != other.Scene {
		return false
	}
	if len(st.Stats) != len(other.Stats) || len(st.Inventory) != len(other.Inventory) ||
		len(st.Flags) != len(other.Flags) || len(st.History) != len(other.History) {
		return false
	}
	for k, v := range st.Stats {
		if other.Stats[k] != v {
			return false
		}
	}
	for k, v := range st.Inventory {
		if other.Inventory[k] != v {
			return false
		}
	}
	for k := range st.Flags {
		if !other.Flags[k] {
			return false
		}
	}
	for i, id := range st.History {
		if other.History[i] != id {
			return false
		}
	}
	return true
}

func effectQuantity(e story.Effect) int {
	if e.Quantity <= 0 {
		return 1
	}
	return e.Quantity
}
