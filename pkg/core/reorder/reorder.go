// Package reorder keeps sort_order values dense and zero-based after a drag
// gesture. Iterating a collection by ascending sort_order after Assign
// reproduces the ordered id list exactly.
package reorder

import (
	"errors"

	"github.com/hkunkun/hkun-links/pkg/core/domain"
)

var ErrIndexOutOfRange = errors.New("reorder: index out of range")

// Assign gives every id its index as sort_order.
func Assign(orderedIDs []string) []domain.Position {
	positions := make([]domain.Position, len(orderedIDs))
	for i, id := range orderedIDs {
		positions[i] = domain.Position{ID: id, SortOrder: i}
	}
	return positions
}

// Diff returns the positions in next whose sort order differs from current.
// Ids missing from current always count as changed.
func Diff(current map[string]int, next []domain.Position) []domain.Position {
	var changed []domain.Position
	for _, p := range next {
		if order, ok := current[p.ID]; ok && order == p.SortOrder {
			continue
		}
		changed = append(changed, p)
	}
	return changed
}

// IsPermutation reports whether orderedIDs names every member exactly once
// and nothing else.
func IsPermutation(members, orderedIDs []string) bool {
	if len(members) != len(orderedIDs) {
		return false
	}
	remaining := make(map[string]struct{}, len(members))
	for _, id := range members {
		remaining[id] = struct{}{}
	}
	for _, id := range orderedIDs {
		if _, ok := remaining[id]; !ok {
			return false
		}
		delete(remaining, id)
	}
	return len(remaining) == 0
}

// Move returns a copy of items with the element at from removed and
// reinserted at to.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)

	moved := items[from]
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out, nil
}
