package hashkit

import (
	"fmt"
	"math"

	hkerrors "github.com/tamirms/hashkit/errors"
)

// Sink accepts an incremental sequence of primitive writes. Multi-byte
// primitives are always decomposed little-endian, regardless of algorithm,
// so a value funneled on one platform hashes identically on any other.
//
// Sink is the write half of the Hasher contract and the target of Funnel
// decompositions.
type Sink interface {
	// PutByte writes a single byte.
	PutByte(b byte)

	// PutBytes writes the entire slice. The slice is consumed before
	// PutBytes returns; the caller may reuse it afterwards.
	PutBytes(p []byte)

	// PutString writes the raw UTF-8 bytes of s without copying.
	PutString(s string)

	// PutUint16 writes v as two little-endian bytes.
	PutUint16(v uint16)

	// PutUint32 writes v as four little-endian bytes.
	PutUint32(v uint32)

	// PutUint64 writes v as eight little-endian bytes.
	PutUint64(v uint64)

	// PutBool writes a single byte: 1 for true, 0 for false.
	PutBool(v bool)

	// PutFloat64 writes the IEEE 754 bits of v as a little-endian uint64.
	PutFloat64(v float64)
}

// Hasher is a mutable, single-use accumulator that produces one HashCode.
//
// Lifecycle: zero or more Put calls, then exactly one Hash call. Any Put
// after Hash, or a second Hash, panics with a message wrapping
// errors.ErrHasherFinalized; this is programmer misuse, not a recoverable
// condition. Hashers are not safe for concurrent use.
type Hasher interface {
	Sink

	// Hash finalizes the accumulated writes and returns the digest.
	// A Hasher that received no writes hashes the empty byte sequence.
	Hash() HashCode
}

// HashFunction is a stateless, immutable factory for Hashers plus one-shot
// hashing entry points. Instances are safe to share across goroutines.
type HashFunction interface {
	// Bits returns the bit length of every HashCode this function produces.
	Bits() int

	// NewHasher allocates a fresh, independent Hasher.
	NewHasher() Hasher

	// HashBytes is shorthand for NewHasher().PutBytes(p) followed by Hash,
	// possibly via a non-streaming fast path.
	HashBytes(p []byte) HashCode

	// HashString hashes the raw UTF-8 bytes of s.
	HashString(s string) HashCode

	// HashUint32 hashes the four little-endian bytes of v.
	HashUint32(v uint32) HashCode

	// HashUint64 hashes the eight little-endian bytes of v.
	HashUint64(v uint64) HashCode
}

// HashBytesRange hashes p[off:off+length] with f, validating the bounds.
// Out-of-range offsets fail with errors.ErrOutOfRange rather than being
// clamped.
func HashBytesRange(f HashFunction, p []byte, off, length int) (HashCode, error) {
	if off < 0 || length < 0 || off+length > len(p) || off+length < off {
		return HashCode{}, fmt.Errorf("%w: offset %d length %d for %d bytes",
			hkerrors.ErrOutOfRange, off, length, len(p))
	}
	return f.HashBytes(p[off : off+length]), nil
}

// HashObject funnels value into a fresh Hasher of f and returns the digest.
func HashObject[T any](f HashFunction, value T, funnel Funnel[T]) HashCode {
	h := f.NewHasher()
	funnel.Funnel(value, h)
	return h.Hash()
}

// panicFinalized is the shared misuse guard for all Hasher implementations.
func panicFinalized() {
	panic(fmt.Errorf("%w", hkerrors.ErrHasherFinalized))
}

// floatBits and boolByte centralize the primitive-to-bytes decomposition
// shared by every Hasher implementation.
func floatBits(v float64) uint64 { return math.Float64bits(v) }

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
