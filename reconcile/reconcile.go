// Package reconcile computes the host operations that turn one sequence of
// keyed items into another, moving as few items as possible.
package reconcile

import (
	"errors"
	"fmt"
)

var ErrDuplicateKey = errors.New("duplicate key")

// Item is anything that can be reconciled. Two items are the same when both
// their key and their type are equal. Keys must be comparable; a nil key
// means the item is unkeyed.
type Item interface {
	comparable
	ItemKey() any
	ItemType() any
}

// Ops receives the edits. Anchors are items of the next sequence that are
// already in place; the zero value of I as an anchor means append.
type Ops[I Item] interface {
	// Patch reuses prev as next.
	Patch(prev, next I)
	Insert(next, anchor I)
	Move(item, anchor I)
	Remove(prev I)
}

type DuplicateKeyError struct {
	Key           any
	First, Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %v at %d and %d", ErrDuplicateKey, e.Key, e.First, e.Second)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

func isSame[I Item](a, b I) bool {
	return a.ItemKey() == b.ItemKey() && a.ItemType() == b.ItemType()
}

func checkKeys[I Item](next []I) error {
	seen := make(map[any]int, len(next))
	for i, item := range next {
		key := item.ItemKey()
		if key == nil {
			continue
		}
		if first, ok := seen[key]; ok {
			return &DuplicateKeyError{Key: key, First: first, Second: i}
		}
		seen[key] = i
	}
	return nil
}

// Keyed emits the edits turning prev into next. Common prefixes and suffixes
// are patched in place; the remaining window is matched by key and only the
// items outside the longest run that kept its relative order are moved.
// Duplicate keys in next are rejected before any edit is emitted.
func Keyed[I Item](prev, next []I, ops Ops[I]) error {
	if err := checkKeys(next); err != nil {
		return err
	}

	var zero I
	i, e1, e2 := 0, len(prev)-1, len(next)-1

	for i <= e1 && i <= e2 && isSame(prev[i], next[i]) {
		ops.Patch(prev[i], next[i])
		i++
	}
	for i <= e1 && i <= e2 && isSame(prev[e1], next[e2]) {
		ops.Patch(prev[e1], next[e2])
		e1--
		e2--
	}

	switch {
	case i > e1:
		anchor := zero
		if e2+1 < len(next) {
			anchor = next[e2+1]
		}
		for ; i <= e2; i++ {
			ops.Insert(next[i], anchor)
		}
		return nil
	case i > e2:
		for ; i <= e1; i++ {
			ops.Remove(prev[i])
		}
		return nil
	}

	s1, s2 := i, i
	keyToNewIndex := make(map[any]int, e2-s2+1)
	for j := s2; j <= e2; j++ {
		if key := next[j].ItemKey(); key != nil {
			keyToNewIndex[key] = j
		}
	}

	toBePatched := e2 - s2 + 1
	patched := 0
	moved := false
	maxNewIndexSoFar := 0
	// 1-based old index per new position; 0 means the item is new
	newIndexToOldIndex := make([]int, toBePatched)

	for j := s1; j <= e1; j++ {
		old := prev[j]
		if patched >= toBePatched {
			ops.Remove(old)
			continue
		}

		newIndex := -1
		if key := old.ItemKey(); key != nil {
			if k, ok := keyToNewIndex[key]; ok && next[k].ItemType() == old.ItemType() {
				newIndex = k
			}
		} else {
			for k := s2; k <= e2; k++ {
				if newIndexToOldIndex[k-s2] == 0 && isSame(old, next[k]) {
					newIndex = k
					break
				}
			}
		}

		if newIndex < 0 {
			ops.Remove(old)
			continue
		}
		newIndexToOldIndex[newIndex-s2] = j + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		ops.Patch(old, next[newIndex])
		patched++
	}

	var stable []int
	if moved {
		stable = LongestIncreasingSubsequence(newIndexToOldIndex)
	}
	j := len(stable) - 1
	for k := toBePatched - 1; k >= 0; k-- {
		idx := s2 + k
		anchor := zero
		if idx+1 < len(next) {
			anchor = next[idx+1]
		}
		switch {
		case newIndexToOldIndex[k] == 0:
			ops.Insert(next[idx], anchor)
		case !moved:
		case j < 0 || k != stable[j]:
			ops.Move(next[idx], anchor)
		default:
			j--
		}
	}
	return nil
}

// Unkeyed diffs by position: items sharing an index are patched, surplus old
// items removed and surplus new items appended.
func Unkeyed[I Item](prev, next []I, ops Ops[I]) {
	var zero I
	common := min(len(prev), len(next))
	for i := range common {
		ops.Patch(prev[i], next[i])
	}
	for _, old := range prev[common:] {
		ops.Remove(old)
	}
	for _, item := range next[common:] {
		ops.Insert(item, zero)
	}
}
