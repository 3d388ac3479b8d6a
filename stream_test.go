package hashkit

import (
	"bytes"
	"testing"
)

// recordingMixer captures the exact chunk sequence the driver delivers, so
// the driver's contract can be checked independently of any real algorithm.
type recordingMixer struct {
	chunks    [][]byte
	tail      []byte
	tailN     int
	tailCalls int
	digestLen int
}

func (m *recordingMixer) mix(chunk []byte) {
	m.chunks = append(m.chunks, append([]byte(nil), chunk...))
}

func (m *recordingMixer) mixTail(padded []byte, n int) {
	m.tail = append([]byte(nil), padded...)
	m.tailN = n
	m.tailCalls++
}

func (m *recordingMixer) digest(length int) HashCode {
	m.digestLen = length
	return HashCodeFromUint32(uint32(length))
}

func TestStreamHasherChunkDelivery(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 4*16+5) // four full chunks plus a 5-byte tail

	// Whatever the fragmentation, the mixer must see the same four chunks, the
	// same padded tail and the same total length.
	fragmentations := [][]int{
		{len(input)},
		{1, 1, 1, len(input) - 3},
		{15, 1, 16, 17, len(input) - 49},
		{64, len(input) - 64},
	}
	for fi, frag := range fragmentations {
		m := &recordingMixer{}
		h := newStreamHasher(m, 16, 64)
		rest := input
		for _, n := range frag {
			h.PutBytes(rest[:n])
			rest = rest[n:]
		}
		h.Hash()

		if len(m.chunks) != 4 {
			t.Fatalf("frag %d: %d chunks delivered, want 4", fi, len(m.chunks))
		}
		for i, chunk := range m.chunks {
			if want := input[i*16 : (i+1)*16]; !bytes.Equal(chunk, want) {
				t.Errorf("frag %d: chunk %d = %x, want %x", fi, i, chunk, want)
			}
		}
		if m.tailCalls != 1 {
			t.Fatalf("frag %d: mixTail called %d times, want 1", fi, m.tailCalls)
		}
		if m.tailN != 5 {
			t.Errorf("frag %d: tail n = %d, want 5", fi, m.tailN)
		}
		wantTail := make([]byte, 16)
		copy(wantTail, input[64:])
		if !bytes.Equal(m.tail, wantTail) {
			t.Errorf("frag %d: tail = %x, want %x (zero padded)", fi, m.tail, wantTail)
		}
		if m.digestLen != len(input) {
			t.Errorf("frag %d: digest length = %d, want %d", fi, m.digestLen, len(input))
		}
	}
}

func TestStreamHasherExactChunkMultiple(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 48)
	m := &recordingMixer{}
	h := newStreamHasher(m, 16, 16)
	h.PutBytes(input)
	h.Hash()
	if len(m.chunks) != 3 {
		t.Errorf("%d chunks, want 3", len(m.chunks))
	}
	if m.tailCalls != 0 {
		t.Errorf("mixTail called on chunk-aligned input")
	}
}

func TestStreamHasherZeroWrites(t *testing.T) {
	m := &recordingMixer{}
	h := newStreamHasher(m, 16, 16)
	h.Hash()
	if len(m.chunks) != 0 || m.tailCalls != 0 {
		t.Error("mixer invoked for empty stream")
	}
	if m.digestLen != 0 {
		t.Errorf("digest length = %d, want 0", m.digestLen)
	}
}

func TestStreamHasherPutString(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 200)

	m1 := &recordingMixer{}
	h1 := newStreamHasher(m1, 16, 64)
	h1.PutString(string(input))
	h1.Hash()

	m2 := &recordingMixer{}
	h2 := newStreamHasher(m2, 16, 64)
	h2.PutBytes(input)
	h2.Hash()

	if len(m1.chunks) != len(m2.chunks) {
		t.Fatalf("PutString delivered %d chunks, PutBytes %d", len(m1.chunks), len(m2.chunks))
	}
	for i := range m1.chunks {
		if !bytes.Equal(m1.chunks[i], m2.chunks[i]) {
			t.Errorf("chunk %d differs: %x vs %x", i, m1.chunks[i], m2.chunks[i])
		}
	}
	if !bytes.Equal(m1.tail, m2.tail) || m1.tailN != m2.tailN {
		t.Error("PutString tail differs from PutBytes tail")
	}
}

// Buffer sizing must never change what the mixer sees.
func TestStreamHasherBufferSizeInsensitive(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 333)

	ref := &recordingMixer{}
	h := newStreamHasher(ref, 16, 16)
	h.PutBytes(input)
	h.Hash()

	for _, bufSize := range []int{1, 17, 32, 64, 1024} {
		m := &recordingMixer{}
		h := newStreamHasher(m, 16, bufSize)
		for _, b := range input {
			h.PutByte(b)
		}
		h.Hash()
		if len(m.chunks) != len(ref.chunks) {
			t.Fatalf("bufSize %d: %d chunks, want %d", bufSize, len(m.chunks), len(ref.chunks))
		}
		for i := range m.chunks {
			if !bytes.Equal(m.chunks[i], ref.chunks[i]) {
				t.Errorf("bufSize %d: chunk %d differs", bufSize, i)
			}
		}
		if !bytes.Equal(m.tail, ref.tail) {
			t.Errorf("bufSize %d: tail differs", bufSize)
		}
	}
}
