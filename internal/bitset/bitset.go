// Package bitset provides a dense set of small non-negative integers.
//
// The middle-end uses it for per-block flags keyed by block ordinal: dirty
// bits in the phi-insertion fixpoint and visited marks in graph walks.
package bitset

import "math/bits"

// Set is a compact set of int values using a bitmap.
// Optimized for small dense sets (block ordinals).
type Set struct {
	bits []uint64
}

// New creates a Set that can hold values up to maxVal (inclusive) without
// growing.
func New(maxVal int) *Set {
	words := (maxVal + 64) / 64
	return &Set{bits: make([]uint64, words)}
}

// Full creates a Set holding every value in [0, n).
func Full(n int) *Set {
	s := New(n)
	for i := 0; i < n; i++ {
		s.Set(i)
	}
	return s
}

// Set adds val to the set.
func (s *Set) Set(val int) {
	word := val / 64
	if word >= len(s.bits) {
		s.grow(word + 1)
	}
	s.bits[word] |= 1 << (uint(val) % 64)
}

// Clear removes val from the set.
func (s *Set) Clear(val int) {
	word := val / 64
	if word < len(s.bits) {
		s.bits[word] &^= 1 << (uint(val) % 64)
	}
}

// Has returns true if val is in the set.
func (s *Set) Has(val int) bool {
	if val < 0 {
		return false
	}
	word := val / 64
	if word >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<(uint(val)%64)) != 0
}

// Union adds all elements from other into this set.
func (s *Set) Union(other *Set) {
	if len(other.bits) > len(s.bits) {
		s.grow(len(other.bits))
	}
	for i := range other.bits {
		s.bits[i] |= other.bits[i]
	}
}

// Reset clears all elements from the set.
func (s *Set) Reset() {
	for i := range s.bits {
		s.bits[i] = 0
	}
}

// Empty reports whether the set has no elements.
func (s *Set) Empty() bool {
	for _, word := range s.bits {
		if word != 0 {
			return false
		}
	}
	return true
}

// ToSlice returns sorted slice of all values in the set.
func (s *Set) ToSlice() []int {
	var result []int
	for i, word := range s.bits {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			result = append(result, i*64+bit)
			word &= word - 1
		}
	}
	return result
}

// Count returns the number of elements in the set.
func (s *Set) Count() int {
	count := 0
	for _, word := range s.bits {
		count += bits.OnesCount64(word)
	}
	return count
}

// grow expands the set to n words.
// Callers guarantee n > len(s.bits).
func (s *Set) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, s.bits)
	s.bits = newBits
}
