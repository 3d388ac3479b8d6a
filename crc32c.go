package hashkit

import (
	"encoding/binary"
)

// CRC32C implements the Castagnoli CRC in its reflected form. The streaming
// path runs on the shared chunk driver; the one-shot path additionally uses
// stride tables so three interleaved 32-bit lanes, each 12 bytes apart, can
// be folded together with XOR, collapsing 36 bytes per iteration.

// crc32cPoly is the reflected Castagnoli polynomial.
const crc32cPoly = 0x82F63B78

// crc32cLane is the bytes each lane advances per stride iteration.
const crc32cLane = 12

// crc32cStrideChunk is the bytes consumed per stride iteration (three lanes).
const crc32cStrideChunk = 3 * crc32cLane

var (
	// crc32cTable is the byte-at-a-time lookup table.
	crc32cTable [256]uint32

	// crc32cStride[j][b] is the register b<<(8j) advanced through crc32cLane
	// zero bytes. Advancing by zeros is linear over GF(2), so an arbitrary
	// register advances as the XOR of its four byte lookups.
	crc32cStride [4][256]uint32
)

func init() {
	for i := range crc32cTable {
		crc := uint32(i)
		for range 8 {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ crc32cPoly
			} else {
				crc >>= 1
			}
		}
		crc32cTable[i] = crc
	}
	for j := range crc32cStride {
		for b := range crc32cStride[j] {
			crc := uint32(b) << (8 * j)
			for range crc32cLane {
				crc = crc32cTable[crc&0xff] ^ (crc >> 8)
			}
			crc32cStride[j][b] = crc
		}
	}
}

// crc32cStep feeds one byte through the register.
func crc32cStep(crc uint32, b byte) uint32 {
	return crc32cTable[byte(crc)^b] ^ (crc >> 8)
}

// crc32cAdvanceLane advances the register through crc32cLane zero bytes.
func crc32cAdvanceLane(crc uint32) uint32 {
	return crc32cStride[0][byte(crc)] ^
		crc32cStride[1][byte(crc>>8)] ^
		crc32cStride[2][byte(crc>>16)] ^
		crc32cStride[3][byte(crc>>24)]
}

// crc32cUpdate feeds p through the register one byte at a time.
func crc32cUpdate(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = crc32cStep(crc, b)
	}
	return crc
}

// crc32cUpdateStride processes 36-byte groups as three independent lanes and
// folds them: update(c, L0 L1 L2) = adv(adv(update(c, L0))) ^ adv(update(0,
// L1)) ^ update(0, L2), which holds because zero-advancement is linear and
// the byte step splits into a register part and a data part.
func crc32cUpdateStride(crc uint32, p []byte) uint32 {
	for len(p) >= crc32cStrideChunk {
		c0, c1, c2 := crc, uint32(0), uint32(0)
		for i := 0; i < crc32cLane; i++ {
			c0 = crc32cStep(c0, p[i])
			c1 = crc32cStep(c1, p[crc32cLane+i])
			c2 = crc32cStep(c2, p[2*crc32cLane+i])
		}
		crc = crc32cAdvanceLane(crc32cAdvanceLane(c0)) ^ crc32cAdvanceLane(c1) ^ c2
		p = p[crc32cStrideChunk:]
	}
	return crc32cUpdate(crc, p)
}

// CRC32C returns the Castagnoli CRC-32 hash function. The register starts
// all-ones and the final value is complemented, so the empty input hashes
// to zero. Uint32 on the resulting HashCode returns the conventional
// checksum value.
func CRC32C() HashFunction {
	return crc32c{}
}

type crc32c struct{}

func (crc32c) Bits() int { return 32 }

func (crc32c) NewHasher() Hasher {
	return newStreamHasher(&crc32cMixer{crc: 0xFFFFFFFF}, crc32cStrideChunk, 2*crc32cStrideChunk)
}

func (crc32c) HashBytes(p []byte) HashCode {
	return HashCodeFromUint32(crc32cUpdateStride(0xFFFFFFFF, p) ^ 0xFFFFFFFF)
}

func (f crc32c) HashString(s string) HashCode {
	h := f.NewHasher()
	h.PutString(s)
	return h.Hash()
}

func (f crc32c) HashUint32(v uint32) HashCode {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return f.HashBytes(b[:])
}

func (f crc32c) HashUint64(v uint64) HashCode {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return f.HashBytes(b[:])
}

// crc32cMixer adapts the CRC register to the chunk driver. Full chunks take
// the stride path; the tail ignores the zero padding and feeds only the true
// bytes, since CRC has no block padding semantics.
type crc32cMixer struct {
	crc uint32
}

func (m *crc32cMixer) mix(chunk []byte) {
	m.crc = crc32cUpdateStride(m.crc, chunk)
}

func (m *crc32cMixer) mixTail(padded []byte, n int) {
	m.crc = crc32cUpdate(m.crc, padded[:n])
}

func (m *crc32cMixer) digest(length int) HashCode {
	return HashCodeFromUint32(m.crc ^ 0xFFFFFFFF)
}
