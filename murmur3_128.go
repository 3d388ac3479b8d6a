package hashkit

import (
	"encoding/binary"
	"math/bits"
)

// Murmur3 x64 128-bit lane constants.
const (
	murmur128C1 = 0x87c37b91114253d5
	murmur128C2 = 0x4cf5ad432745937f
)

// Murmur3_128 returns a seeded 128-bit Murmur3 (x64 variant) hash function.
// The two 64-bit halves of the result are assembled little-endian, low half
// first, matching the reference vectors.
//
// Murmur3 is not cryptographic. Its 128-bit output is useful where a hash is
// split into independent halves, e.g. bloom filter double hashing.
func Murmur3_128(seed uint32) HashFunction {
	return murmur3_128{seed: seed}
}

type murmur3_128 struct {
	seed uint32
}

func (murmur3_128) Bits() int { return 128 }

func (f murmur3_128) NewHasher() Hasher {
	return newStreamHasher(&murmur128Mixer{h1: uint64(f.seed), h2: uint64(f.seed)}, 16, 64)
}

func (f murmur3_128) HashBytes(p []byte) HashCode {
	m := murmur128Mixer{h1: uint64(f.seed), h2: uint64(f.seed)}
	n := len(p) &^ 15
	for i := 0; i < n; i += 16 {
		m.mix(p[i : i+16])
	}
	if rem := len(p) - n; rem > 0 {
		var pad [16]byte
		copy(pad[:], p[n:])
		m.mixTail(pad[:], rem)
	}
	return m.digest(len(p))
}

func (f murmur3_128) HashString(s string) HashCode {
	h := f.NewHasher()
	h.PutString(s)
	return h.Hash()
}

func (f murmur3_128) HashUint32(v uint32) HashCode {
	m := murmur128Mixer{h1: uint64(f.seed), h2: uint64(f.seed)}
	var pad [16]byte
	binary.LittleEndian.PutUint32(pad[:4], v)
	m.mixTail(pad[:], 4)
	return m.digest(4)
}

func (f murmur3_128) HashUint64(v uint64) HashCode {
	m := murmur128Mixer{h1: uint64(f.seed), h2: uint64(f.seed)}
	var pad [16]byte
	binary.LittleEndian.PutUint64(pad[:8], v)
	m.mixTail(pad[:], 8)
	return m.digest(8)
}

// murmur128Mixer carries the two interleaved 64-bit lanes for streaming
// hashes.
type murmur128Mixer struct {
	h1, h2 uint64
}

func (m *murmur128Mixer) mix(chunk []byte) {
	k1 := binary.LittleEndian.Uint64(chunk[:8])
	k2 := binary.LittleEndian.Uint64(chunk[8:16])

	m.h1 ^= murmur128MixK1(k1)
	m.h1 = bits.RotateLeft64(m.h1, 27)
	m.h1 += m.h2
	m.h1 = m.h1*5 + 0x52dce729

	m.h2 ^= murmur128MixK2(k2)
	m.h2 = bits.RotateLeft64(m.h2, 31)
	m.h2 += m.h1
	m.h2 = m.h2*5 + 0x38495ab5
}

// mixTail folds the final partial block without the cross-lane mixing that
// full blocks get. Zero padding contributes nothing to either lane.
func (m *murmur128Mixer) mixTail(padded []byte, n int) {
	m.h1 ^= murmur128MixK1(binary.LittleEndian.Uint64(padded[:8]))
	m.h2 ^= murmur128MixK2(binary.LittleEndian.Uint64(padded[8:16]))
}

func (m *murmur128Mixer) digest(length int) HashCode {
	h1 := m.h1 ^ uint64(length)
	h2 := m.h2 ^ uint64(length)

	h1 += h2
	h2 += h1
	h1 = murmurFmix64(h1)
	h2 = murmurFmix64(h2)
	h1 += h2
	h2 += h1

	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], h1)
	binary.LittleEndian.PutUint64(out[8:], h2)
	return hashCodeFromOwned(out)
}

func murmur128MixK1(k1 uint64) uint64 {
	k1 *= murmur128C1
	k1 = bits.RotateLeft64(k1, 31)
	k1 *= murmur128C2
	return k1
}

func murmur128MixK2(k2 uint64) uint64 {
	k2 *= murmur128C2
	k2 = bits.RotateLeft64(k2, 33)
	k2 *= murmur128C1
	return k2
}

func murmurFmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
