package hashkit

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// Adapters exposing fast ecosystem hashes through the HashFunction contract.
// Unlike the crypto wrappers, their HashCodes store the checksum value
// little-endian, so Uint64 (or the low half of a 128-bit code) returns
// exactly what the underlying library's Sum would.

// XXHash64 returns a 64-bit xxHash hash function backed by
// github.com/cespare/xxhash.
func XXHash64() HashFunction { return xxhash64{} }

type xxhash64 struct{}

func (xxhash64) Bits() int { return 64 }

func (xxhash64) NewHasher() Hasher {
	d := xxhash.New()
	return &sum64Hasher{w: d, sum: d.Sum64}
}

func (xxhash64) HashBytes(p []byte) HashCode {
	return HashCodeFromUint64(xxhash.Sum64(p))
}

func (xxhash64) HashString(s string) HashCode {
	return HashCodeFromUint64(xxhash.Sum64String(s))
}

func (f xxhash64) HashUint32(v uint32) HashCode {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.HashBytes(b[:])
}

func (f xxhash64) HashUint64(v uint64) HashCode {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return f.HashBytes(b[:])
}

// XXH3 returns a 64-bit XXH3 hash function backed by github.com/zeebo/xxh3.
func XXH3() HashFunction { return xxh3_64{} }

type xxh3_64 struct{}

func (xxh3_64) Bits() int { return 64 }

func (xxh3_64) NewHasher() Hasher {
	d := xxh3.New()
	return &sum64Hasher{w: d, sum: d.Sum64}
}

func (xxh3_64) HashBytes(p []byte) HashCode {
	return HashCodeFromUint64(xxh3.Hash(p))
}

func (xxh3_64) HashString(s string) HashCode {
	return HashCodeFromUint64(xxh3.HashString(s))
}

func (f xxh3_64) HashUint32(v uint32) HashCode {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.HashBytes(b[:])
}

func (f xxh3_64) HashUint64(v uint64) HashCode {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return f.HashBytes(b[:])
}

// XXH3_128 returns a 128-bit XXH3 hash function backed by
// github.com/zeebo/xxh3. The code stores the low half first, little-endian,
// matching the Murmur3-128 layout.
func XXH3_128() HashFunction { return xxh3_128{} }

type xxh3_128 struct{}

func (xxh3_128) Bits() int { return 128 }

func (xxh3_128) NewHasher() Hasher {
	d := xxh3.New()
	return &sum64Hasher{w: d, sum128: d.Sum128}
}

func (xxh3_128) HashBytes(p []byte) HashCode {
	return uint128Code(xxh3.Hash128(p))
}

func (xxh3_128) HashString(s string) HashCode {
	return uint128Code(xxh3.HashString128(s))
}

func (f xxh3_128) HashUint32(v uint32) HashCode {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.HashBytes(b[:])
}

func (f xxh3_128) HashUint64(v uint64) HashCode {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return f.HashBytes(b[:])
}

func uint128Code(u xxh3.Uint128) HashCode {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], u.Lo)
	binary.LittleEndian.PutUint64(out[8:], u.Hi)
	return hashCodeFromOwned(out)
}

// byteWriter is the subset of hash.Hash the streaming adapters need.
type byteWriter interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
}

// sum64Hasher adapts a streaming checksum (xxhash, xxh3) to the Hasher
// contract. Exactly one of sum or sum128 is set.
type sum64Hasher struct {
	w       byteWriter
	sum     func() uint64
	sum128  func() xxh3.Uint128
	done    bool
	scratch [8]byte
}

func (h *sum64Hasher) write(p []byte) {
	if h.done {
		panicFinalized()
	}
	h.w.Write(p)
}

func (h *sum64Hasher) PutByte(b byte) {
	h.scratch[0] = b
	h.write(h.scratch[:1])
}

func (h *sum64Hasher) PutBytes(p []byte) { h.write(p) }

func (h *sum64Hasher) PutString(s string) {
	if h.done {
		panicFinalized()
	}
	h.w.WriteString(s)
}

func (h *sum64Hasher) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(h.scratch[:2], v)
	h.write(h.scratch[:2])
}

func (h *sum64Hasher) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(h.scratch[:4], v)
	h.write(h.scratch[:4])
}

func (h *sum64Hasher) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(h.scratch[:8], v)
	h.write(h.scratch[:8])
}

func (h *sum64Hasher) PutBool(v bool)       { h.PutByte(boolByte(v)) }
func (h *sum64Hasher) PutFloat64(v float64) { h.PutUint64(floatBits(v)) }

func (h *sum64Hasher) Hash() HashCode {
	if h.done {
		panicFinalized()
	}
	h.done = true
	if h.sum128 != nil {
		return uint128Code(h.sum128())
	}
	return HashCodeFromUint64(h.sum())
}
