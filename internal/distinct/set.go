// Package distinct collects the distinct raw codes observed in a domain.
//
// It is the local half of the two-phase compaction: every tile collects its own
// Set, the sets are merged with Merge, and the merged set is handed to the
// dictionary package for a single global sort-and-assign.
package distinct

import "slices"

// Set is a set of raw codes. It is not safe for concurrent use; give each
// worker its own Set and merge them afterwards.
type Set struct {
	codes map[uint64]struct{}
	max   uint64
}

// NewSet creates an empty set with room for sizeHint codes.
func NewSet(sizeHint int) *Set {
	if sizeHint < 0 {
		sizeHint = 0
	}

	return &Set{codes: make(map[uint64]struct{}, sizeHint)}
}

// Of creates a set holding the given codes.
func Of(codes ...uint64) *Set {
	s := NewSet(len(codes))
	s.AddAll(codes)

	return s
}

// Add records a code. It reports whether the code was new.
func (s *Set) Add(code uint64) bool {
	if _, exists := s.codes[code]; exists {
		return false
	}

	s.codes[code] = struct{}{}
	if code > s.max {
		s.max = code
	}

	return true
}

// AddAll records every code of a grid or tile.
func (s *Set) AddAll(codes []uint64) {
	for _, c := range codes {
		s.Add(c)
	}
}

// Contains reports whether code was recorded.
func (s *Set) Contains(code uint64) bool {
	_, ok := s.codes[code]
	return ok
}

// Merge adds every code of other into s (set union).
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for c := range other.codes {
		s.Add(c)
	}
}

// Len returns the number of distinct codes.
func (s *Set) Len() int {
	return len(s.codes)
}

// Max returns the largest recorded code, or 0 for an empty set.
func (s *Set) Max() uint64 {
	return s.max
}

// Sorted returns the distinct codes in ascending order.
func (s *Set) Sorted() []uint64 {
	out := make([]uint64, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	slices.Sort(out)

	return out
}

// Reset clears the set but keeps its allocated capacity.
func (s *Set) Reset() {
	clear(s.codes)
	s.max = 0
}

// MergeAll unions a list of per-tile sets into a new set.
func MergeAll(sets ...*Set) *Set {
	total := 0
	for _, s := range sets {
		if s != nil {
			total += s.Len()
		}
	}

	out := NewSet(total)
	for _, s := range sets {
		out.Merge(s)
	}

	return out
}
