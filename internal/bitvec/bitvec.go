// Package bitvec provides the fixed-size bit array backing bloom filters.
package bitvec

import "math/bits"

// Vector is a fixed-size array of bits packed into uint64 words.
//
// Vector performs no internal synchronization. Concurrent Set calls require
// external mutual exclusion; concurrent Get calls with no concurrent Set
// are safe.
type Vector struct {
	words []uint64
	size  uint64 // number of addressable bits
}

// New creates a vector with at least size addressable bits, rounded up to a
// whole word. size must be positive.
func New(size uint64) *Vector {
	return &Vector{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// FromWords wraps an existing word slice. The slice is not copied; callers
// serializing and deserializing filters own the backing memory.
func FromWords(words []uint64, size uint64) *Vector {
	return &Vector{words: words, size: size}
}

// Size returns the number of addressable bits.
func (v *Vector) Size() uint64 { return v.size }

// Words returns the backing words without copying.
func (v *Vector) Words() []uint64 { return v.words }

// Get reports whether bit i is set.
func (v *Vector) Get(i uint64) bool {
	return v.words[i/64]&(1<<(i%64)) != 0
}

// Set sets bit i and reports whether the vector changed.
func (v *Vector) Set(i uint64) bool {
	w, mask := i/64, uint64(1)<<(i%64)
	if v.words[w]&mask != 0 {
		return false
	}
	v.words[w] |= mask
	return true
}

// Count returns the number of set bits.
func (v *Vector) Count() uint64 {
	var n uint64
	for _, w := range v.words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}

// Or folds other into v. Both vectors must have the same size.
func (v *Vector) Or(other *Vector) {
	for i, w := range other.words {
		v.words[i] |= w
	}
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	return &Vector{
		words: append([]uint64(nil), v.words...),
		size:  v.size,
	}
}
