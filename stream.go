package hashkit

import (
	"encoding/binary"
)

// chunkMixer is the algorithm strategy driven by streamHasher. Implementations
// hold the running hash state; the driver owns all buffering, fragmentation
// and byte-order concerns, so a mixer only ever sees whole chunks.
//
// The driver guarantees:
//   - mix is called with exactly chunkSize bytes, in input order
//   - mixTail is called at most once, after the last mix, with a chunk
//     zero-padded to chunkSize and the true byte count n (0 < n < chunkSize)
//   - digest is called exactly once, with the total number of bytes written
type chunkMixer interface {
	mix(chunk []byte)
	mixTail(padded []byte, n int)
	digest(length int) HashCode
}

// streamHasher drives a chunkMixer over an arbitrary, fragmented sequence of
// primitive writes. The final digest depends only on the logical byte
// sequence, never on how the writes were fragmented or on the buffer size.
//
// All primitives are serialized little-endian before entering the buffer.
type streamHasher struct {
	mixer     chunkMixer
	chunkSize int
	buf       []byte // length is a multiple of chunkSize
	n         int    // buffered bytes, always < chunkSize between writes
	length    int    // total bytes written
	done      bool
	scratch   [8]byte
}

// newStreamHasher creates a driver with the given chunk size and a buffer of
// at least bufferSize bytes rounded up to a chunk multiple. bufferSize <=
// chunkSize yields a single-chunk buffer.
func newStreamHasher(m chunkMixer, chunkSize, bufferSize int) *streamHasher {
	if bufferSize < chunkSize {
		bufferSize = chunkSize
	}
	if rem := bufferSize % chunkSize; rem != 0 {
		bufferSize += chunkSize - rem
	}
	return &streamHasher{
		mixer:     m,
		chunkSize: chunkSize,
		buf:       make([]byte, bufferSize),
	}
}

// write appends p to the buffer, handing full chunks to the mixer as they
// become available and compacting the remainder to the buffer's start.
func (h *streamHasher) write(p []byte) {
	if h.done {
		panicFinalized()
	}
	h.length += len(p)

	// Top up a partial chunk first so direct processing below stays aligned.
	if h.n > 0 {
		c := copy(h.buf[h.n:], p)
		h.n += c
		p = p[c:]
		if h.n >= h.chunkSize {
			h.drain()
		}
		if len(p) == 0 {
			return
		}
	}

	// Buffer is empty (or holds < chunkSize bytes and p is exhausted):
	// process whole chunks straight from the input without copying.
	for len(p) >= h.chunkSize && h.n == 0 {
		h.mixer.mix(p[:h.chunkSize])
		p = p[h.chunkSize:]
	}
	if len(p) > 0 {
		h.n += copy(h.buf[h.n:], p)
		if h.n >= h.chunkSize {
			h.drain()
		}
	}
}

// drain hands complete chunkSize windows to the mixer and moves the
// remainder to the front of the buffer.
func (h *streamHasher) drain() {
	full := h.n - h.n%h.chunkSize
	for off := 0; off < full; off += h.chunkSize {
		h.mixer.mix(h.buf[off : off+h.chunkSize])
	}
	h.n = copy(h.buf, h.buf[full:h.n])
}

func (h *streamHasher) PutByte(b byte) {
	h.scratch[0] = b
	h.write(h.scratch[:1])
}

func (h *streamHasher) PutBytes(p []byte) {
	h.write(p)
}

func (h *streamHasher) PutString(s string) {
	if h.done {
		panicFinalized()
	}
	// Strings are written in sections through the scratch-free path to avoid
	// a []byte(s) allocation for large inputs.
	h.length += len(s)
	for len(s) > 0 {
		c := copy(h.buf[h.n:], s)
		h.n += c
		s = s[c:]
		if h.n >= h.chunkSize {
			h.drain()
		}
	}
}

func (h *streamHasher) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(h.scratch[:2], v)
	h.write(h.scratch[:2])
}

func (h *streamHasher) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(h.scratch[:4], v)
	h.write(h.scratch[:4])
}

func (h *streamHasher) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(h.scratch[:8], v)
	h.write(h.scratch[:8])
}

func (h *streamHasher) PutBool(v bool) {
	h.PutByte(boolByte(v))
}

func (h *streamHasher) PutFloat64(v float64) {
	h.PutUint64(floatBits(v))
}

// Hash finalizes the stream. Any unconsumed bytes are zero-padded to a full
// chunk and handed to mixTail exactly once, then the mixer produces the
// digest. Zero writes hash like the empty byte sequence.
func (h *streamHasher) Hash() HashCode {
	if h.done {
		panicFinalized()
	}
	h.done = true
	if h.n > 0 {
		for i := h.n; i < h.chunkSize; i++ {
			h.buf[i] = 0
		}
		h.mixer.mixTail(h.buf[:h.chunkSize], h.n)
	}
	return h.mixer.digest(h.length)
}
