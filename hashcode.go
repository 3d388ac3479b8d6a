package hashkit

import (
	"encoding/binary"
	"encoding/hex"

	hkerrors "github.com/tamirms/hashkit/errors"
)

// HashCode is an immutable, fixed-bit-length digest value produced by a
// Hasher or a HashFunction one-shot entry point.
//
// The byte sequence is stored in construction order: String renders the bytes
// as lowercase hex in that order, while Uint32 and Uint64 interpret the first
// 4 or 8 bytes as little-endian integers. The two views are intentionally
// asymmetric; for example the Murmur3-32 hash 0x12345678 stringifies as
// "78563412" but Uint32 returns 0x12345678.
//
// HashCode values are safe to share between goroutines and safe to use as
// map keys via Equal (not ==; the zero HashCode has zero bits and equals
// only itself).
type HashCode struct {
	b []byte
}

// NewHashCode constructs a HashCode from a byte slice. The slice is copied,
// so the caller may reuse it after the call.
func NewHashCode(p []byte) HashCode {
	return HashCode{b: append([]byte(nil), p...)}
}

// hashCodeFromOwned wraps a byte slice the caller promises never to mutate.
// Internal constructors use it to avoid a redundant copy.
func hashCodeFromOwned(p []byte) HashCode {
	return HashCode{b: p}
}

// HashCodeFromUint32 constructs a 32-bit HashCode whose bytes are the
// little-endian encoding of v, so Uint32 round-trips.
func HashCodeFromUint32(v uint32) HashCode {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return HashCode{b: b}
}

// HashCodeFromUint64 constructs a 64-bit HashCode whose bytes are the
// little-endian encoding of v, so Uint64 round-trips.
func HashCodeFromUint64(v uint64) HashCode {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return HashCode{b: b}
}

// Bits returns the number of bits in the hash code, always 8*len(Bytes()).
func (c HashCode) Bits() int {
	return len(c.b) * 8
}

// Bytes returns a copy of the underlying bytes in construction order.
func (c HashCode) Bytes() []byte {
	return append([]byte(nil), c.b...)
}

// WriteBytesTo copies up to maxLength bytes of the hash code into dst and
// returns the number of bytes written.
func (c HashCode) WriteBytesTo(dst []byte, maxLength int) int {
	n := min(maxLength, len(c.b), len(dst))
	copy(dst[:n], c.b[:n])
	return n
}

// Uint32 returns the first four bytes interpreted as a little-endian uint32.
// It fails with ErrWrongBitLength unless Bits() == 32 exactly.
func (c HashCode) Uint32() (uint32, error) {
	if len(c.b) != 4 {
		return 0, hkerrors.ErrWrongBitLength
	}
	return binary.LittleEndian.Uint32(c.b), nil
}

// Uint64 returns the first eight bytes interpreted as a little-endian uint64.
// It fails with ErrWrongBitLength unless Bits() == 64 exactly.
func (c HashCode) Uint64() (uint64, error) {
	if len(c.b) != 8 {
		return 0, hkerrors.ErrWrongBitLength
	}
	return binary.LittleEndian.Uint64(c.b), nil
}

// PadToUint64 returns the first eight bytes little-endian, zero-extending
// codes shorter than 64 bits. Codes of 64 bits or more behave like Uint64.
func (c HashCode) PadToUint64() uint64 {
	var v uint64
	for i := 0; i < len(c.b) && i < 8; i++ {
		v |= uint64(c.b[i]) << (8 * i)
	}
	return v
}

// Equal reports whether two hash codes have identical bits.
//
// Equality is not constant-time; hashkit codes are non-cryptographic and
// must not be used to verify secrets.
func (c HashCode) Equal(other HashCode) bool {
	if len(c.b) != len(other.b) {
		return false
	}
	for i := range c.b {
		if c.b[i] != other.b[i] {
			return false
		}
	}
	return true
}

// String returns the bytes as lowercase hex in construction order.
func (c HashCode) String() string {
	return hex.EncodeToString(c.b)
}
