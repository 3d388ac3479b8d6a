package hashkit

import (
	"encoding/binary"
	"math/bits"
)

// Murmur3 x86 32-bit block constants.
const (
	murmur32C1 = 0xcc9e2d51
	murmur32C2 = 0x1b873593
)

// Murmur3_32 returns a seeded 32-bit Murmur3 (x86 variant) hash function.
// It is bit-exact with the reference implementation: the same bytes and seed
// produce the same value on every platform, whether hashed one-shot or
// through a streaming Hasher.
//
// Murmur3 is not cryptographic; do not use it where collision resistance
// against an adversary matters.
func Murmur3_32(seed uint32) HashFunction {
	return murmur3_32{seed: seed}
}

type murmur3_32 struct {
	seed uint32
}

func (murmur3_32) Bits() int { return 32 }

func (f murmur3_32) NewHasher() Hasher {
	return newStreamHasher(&murmur32Mixer{h1: f.seed}, 4, 16)
}

func (f murmur3_32) HashBytes(p []byte) HashCode {
	h1 := f.seed
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		h1 = murmur32MixH1(h1, murmur32MixK1(binary.LittleEndian.Uint32(p[i:])))
	}
	var k1 uint32
	for i, b := range p[n:] {
		k1 |= uint32(b) << (8 * i)
	}
	h1 ^= murmur32MixK1(k1)
	return HashCodeFromUint32(murmur32Fmix(h1, uint32(len(p))))
}

func (f murmur3_32) HashString(s string) HashCode {
	h := f.NewHasher()
	h.PutString(s)
	return h.Hash()
}

// HashUint32 is the four-byte fast path: one block, no buffering.
func (f murmur3_32) HashUint32(v uint32) HashCode {
	h1 := murmur32MixH1(f.seed, murmur32MixK1(v))
	return HashCodeFromUint32(murmur32Fmix(h1, 4))
}

// HashUint64 is the eight-byte fast path: two blocks, low word first.
func (f murmur3_32) HashUint64(v uint64) HashCode {
	h1 := murmur32MixH1(f.seed, murmur32MixK1(uint32(v)))
	h1 = murmur32MixH1(h1, murmur32MixK1(uint32(v>>32)))
	return HashCodeFromUint32(murmur32Fmix(h1, 8))
}

// murmur32Mixer carries the running 32-bit state for streaming hashes.
type murmur32Mixer struct {
	h1 uint32
}

func (m *murmur32Mixer) mix(chunk []byte) {
	m.h1 = murmur32MixH1(m.h1, murmur32MixK1(binary.LittleEndian.Uint32(chunk)))
}

// mixTail folds the final partial block. The zero padding contributes
// nothing: mixK1 maps zero bytes to zero.
func (m *murmur32Mixer) mixTail(padded []byte, n int) {
	m.h1 ^= murmur32MixK1(binary.LittleEndian.Uint32(padded))
}

func (m *murmur32Mixer) digest(length int) HashCode {
	return HashCodeFromUint32(murmur32Fmix(m.h1, uint32(length)))
}

func murmur32MixK1(k1 uint32) uint32 {
	k1 *= murmur32C1
	k1 = bits.RotateLeft32(k1, 15)
	k1 *= murmur32C2
	return k1
}

func murmur32MixH1(h1, k1 uint32) uint32 {
	h1 ^= k1
	h1 = bits.RotateLeft32(h1, 13)
	return h1*5 + 0xe6546b64
}

// murmur32Fmix folds the byte count in and applies the finalization
// avalanche.
func murmur32Fmix(h1, length uint32) uint32 {
	h1 ^= length
	h1 ^= h1 >> 16
	h1 *= 0x85ebca6b
	h1 ^= h1 >> 13
	h1 *= 0xc2b2ae35
	h1 ^= h1 >> 16
	return h1
}
