// Package diff computes edit scripts between two snapshots of uniquely identifiable items.
//
// Unlike a line diff, the script does not try to find a longest common subsequence. Every item
// present in both snapshots is reported as a move from its old to its new position, which is what
// list and grid controls need to animate a transition without reloading.
package diff

import (
	"fmt"
	"slices"
)

// Move describes an item that is present in both snapshots.
type Move struct {
	From int // Position in the old snapshot
	To   int // Position in the new snapshot
}

// Script describes how to get from one snapshot to another.
//
//   - Deleted holds positions in the old snapshot, in descending order.
//   - Inserted holds positions in the new snapshot, in ascending order.
//   - Moved holds one entry for every item present in both snapshots, ordered by old position.
//     Entries where From == To are included.
type Script struct {
	Deleted  []int
	Inserted []int
	Moved    []Move
}

// Compute returns the script that transforms x into y. Items are identified by ==.
//
// Compute panics if x or y contain the same item more than once.
func Compute[T comparable](x, y []T) Script {
	return ComputeFunc(x, y, func(v T) T { return v })
}

// ComputeFunc returns the script that transforms x into y, using key to identify items.
//
// ComputeFunc panics if two items of x or two items of y have the same key.
func ComputeFunc[T any, K comparable](x, y []T, key func(T) K) Script {
	xpos := positions(x, key)
	ypos := positions(y, key)

	var s Script
	for i := len(x) - 1; i >= 0; i-- {
		if _, ok := ypos[key(x[i])]; !ok {
			s.Deleted = append(s.Deleted, i)
		}
	}
	for j := range y {
		if _, ok := xpos[key(y[j])]; !ok {
			s.Inserted = append(s.Inserted, j)
		}
	}
	for i := range x {
		if j, ok := ypos[key(x[i])]; ok {
			s.Moved = append(s.Moved, Move{i, j})
		}
	}
	return s
}

func positions[T any, K comparable](s []T, key func(T) K) map[K]int {
	m := make(map[K]int, len(s))
	for i, v := range s {
		k := key(v)
		if j, ok := m[k]; ok {
			panic(fmt.Sprintf("invariant violation: duplicate item %v at positions %d and %d", k, j, i))
		}
		m[k] = i
	}
	return m
}

// Empty reports whether the script contains no operations at all.
func (s Script) Empty() bool {
	return len(s.Deleted) == 0 && len(s.Inserted) == 0 && len(s.Moved) == 0
}

// WithoutNoopMoves drops moves with From == To, but only if nothing is deleted or inserted.
//
// If anything is deleted or inserted, positions shift when the deletes are applied and a move
// onto the same position is no longer a no-op, so all moves are kept.
func (s Script) WithoutNoopMoves() Script {
	if len(s.Deleted)+len(s.Inserted) > 0 {
		return s
	}
	s.Moved = slices.DeleteFunc(slices.Clone(s.Moved), func(m Move) bool { return m.From == m.To })
	if len(s.Moved) == 0 {
		s.Moved = nil
	}
	return s
}
