// hashkit_test.go holds shared test infrastructure: the deterministic
// per-test RNG, input generators, the table of all hash functions, and the
// cross-cutting contract tests (shortcut equivalence, fragmentation
// insensitivity, concurrent sharing) that every HashFunction must pass.
package hashkit

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// fillFromRNG fills buf with pseudo-random bytes from rng.
func fillFromRNG(rng *randv2.Rand, buf []byte) {
	for i := 0; i+8 <= len(buf); i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], rng.Uint64())
	}
	if tail := len(buf) % 8; tail > 0 {
		v := rng.Uint64()
		start := len(buf) - tail
		for j := 0; j < tail; j++ {
			buf[start+j] = byte(v >> (j * 8))
		}
	}
}

// randomBytes creates a deterministic pseudo-random slice of length n.
func randomBytes(rng *randv2.Rand, n int) []byte {
	buf := make([]byte, n)
	fillFromRNG(rng, buf)
	return buf
}

// allHashFunctions enumerates every HashFunction the package exports, for
// contract tests that must hold across all of them.
func allHashFunctions() []struct {
	name string
	fn   HashFunction
} {
	return []struct {
		name string
		fn   HashFunction
	}{
		{"murmur3-32", Murmur3_32(0)},
		{"murmur3-32-seeded", Murmur3_32(0x9747b28c)},
		{"murmur3-128", Murmur3_128(0)},
		{"murmur3-128-seeded", Murmur3_128(144)},
		{"crc32c", CRC32C()},
		{"xxhash64", XXHash64()},
		{"xxh3", XXH3()},
		{"xxh3-128", XXH3_128()},
		{"md5", MD5()},
		{"sha1", SHA1()},
		{"sha256", SHA256()},
		{"sha512", SHA512()},
		{"hmac-sha256", HMACSHA256([]byte("test key"))},
		{"hmac-sha512", HMACSHA512([]byte("test key"))},
	}
}

// =============================================================================
// Shortcut equivalence: HashBytes(b) == NewHasher().PutBytes(b).Hash()
// =============================================================================

func TestShortcutEquivalence(t *testing.T) {
	rng := newTestRNG(t)
	sizes := []int{0, 1, 3, 4, 5, 15, 16, 17, 35, 36, 37, 100, 1000, 4096}
	for _, tc := range allHashFunctions() {
		t.Run(tc.name, func(t *testing.T) {
			for _, size := range sizes {
				input := randomBytes(rng, size)
				oneShot := tc.fn.HashBytes(input)
				h := tc.fn.NewHasher()
				h.PutBytes(input)
				streamed := h.Hash()
				if !oneShot.Equal(streamed) {
					t.Errorf("size %d: one-shot %v != streamed %v", size, oneShot, streamed)
				}
			}
		})
	}
}

func TestHashStringMatchesHashBytes(t *testing.T) {
	inputs := []string{"", "a", "hello, world", "hash flooding is rude", string(make([]byte, 300))}
	for _, tc := range allHashFunctions() {
		t.Run(tc.name, func(t *testing.T) {
			for _, s := range inputs {
				if got, want := tc.fn.HashString(s), tc.fn.HashBytes([]byte(s)); !got.Equal(want) {
					t.Errorf("HashString(%q) = %v, HashBytes = %v", s, got, want)
				}
			}
		})
	}
}

func TestHashUintMatchesLittleEndianBytes(t *testing.T) {
	rng := newTestRNG(t)
	for _, tc := range allHashFunctions() {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				v := rng.Uint64()
				var b8 [8]byte
				binary.LittleEndian.PutUint64(b8[:], v)
				if got, want := tc.fn.HashUint64(v), tc.fn.HashBytes(b8[:]); !got.Equal(want) {
					t.Errorf("HashUint64(%#x) = %v, want %v", v, got, want)
				}
				var b4 [4]byte
				binary.LittleEndian.PutUint32(b4[:], uint32(v))
				if got, want := tc.fn.HashUint32(uint32(v)), tc.fn.HashBytes(b4[:]); !got.Equal(want) {
					t.Errorf("HashUint32(%#x) = %v, want %v", uint32(v), got, want)
				}
			}
		})
	}
}

// =============================================================================
// Fragmentation insensitivity: the digest depends only on the logical byte
// sequence, not on how puts were split up.
// =============================================================================

func TestFragmentationInsensitivity(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 1023)
	for _, tc := range allHashFunctions() {
		t.Run(tc.name, func(t *testing.T) {
			want := tc.fn.HashBytes(input)

			// Byte-at-a-time.
			h := tc.fn.NewHasher()
			for _, b := range input {
				h.PutByte(b)
			}
			if got := h.Hash(); !got.Equal(want) {
				t.Errorf("byte-at-a-time: got %v, want %v", got, want)
			}

			// Random fragments.
			for trial := 0; trial < 10; trial++ {
				h := tc.fn.NewHasher()
				rest := input
				for len(rest) > 0 {
					n := min(1+int(rng.Uint64()%64), len(rest))
					h.PutBytes(rest[:n])
					rest = rest[n:]
				}
				if got := h.Hash(); !got.Equal(want) {
					t.Errorf("trial %d: got %v, want %v", trial, got, want)
				}
			}
		})
	}
}

// TestPrimitiveDecomposition checks that every primitive put is equivalent
// to putting its little-endian bytes.
func TestPrimitiveDecomposition(t *testing.T) {
	for _, tc := range allHashFunctions() {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.fn.NewHasher()
			h.PutUint16(0x0201)
			h.PutUint32(0x06050403)
			h.PutUint64(0x0e0d0c0b0a090807)
			h.PutBool(true)
			h.PutByte(0x10)
			got := h.Hash()

			want := tc.fn.HashBytes([]byte{
				0x01, 0x02,
				0x03, 0x04, 0x05, 0x06,
				0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e,
				0x01,
				0x10,
			})
			if !got.Equal(want) {
				t.Errorf("primitive sequence hashed to %v, want %v", got, want)
			}
		})
	}
}

func TestPutFloat64MatchesBits(t *testing.T) {
	for _, tc := range allHashFunctions() {
		h := tc.fn.NewHasher()
		h.PutFloat64(3.5)
		got := h.Hash()

		h2 := tc.fn.NewHasher()
		h2.PutUint64(0x400C000000000000) // IEEE 754 bits of 3.5
		if want := h2.Hash(); !got.Equal(want) {
			t.Errorf("%s: PutFloat64(3.5) = %v, want %v", tc.name, got, want)
		}
	}
}

// =============================================================================
// Zero-write digests and bit lengths
// =============================================================================

func TestEmptyHashWellDefined(t *testing.T) {
	for _, tc := range allHashFunctions() {
		empty := tc.fn.NewHasher().Hash()
		if want := tc.fn.HashBytes(nil); !empty.Equal(want) {
			t.Errorf("%s: zero-write hash %v != HashBytes(nil) %v", tc.name, empty, want)
		}
		if empty.Bits() != tc.fn.Bits() {
			t.Errorf("%s: Bits() = %d but digest has %d bits", tc.name, tc.fn.Bits(), empty.Bits())
		}
	}
}

// =============================================================================
// Hasher lifecycle: single use, fail fast on reuse
// =============================================================================

func TestHasherPanicsAfterHash(t *testing.T) {
	mutators := map[string]func(Hasher){
		"PutByte":  func(h Hasher) { h.PutByte(1) },
		"PutBytes": func(h Hasher) { h.PutBytes([]byte{1}) },
		"PutString": func(h Hasher) {
			h.PutString("x")
		},
		"PutUint64": func(h Hasher) { h.PutUint64(1) },
		"Hash":      func(h Hasher) { h.Hash() },
	}
	for _, tc := range allHashFunctions() {
		for name, mutate := range mutators {
			t.Run(fmt.Sprintf("%s/%s", tc.name, name), func(t *testing.T) {
				h := tc.fn.NewHasher()
				h.PutByte(42)
				h.Hash()
				defer func() {
					if recover() == nil {
						t.Errorf("%s after Hash did not panic", name)
					}
				}()
				mutate(h)
			})
		}
	}
}

// =============================================================================
// HashBytesRange bounds
// =============================================================================

func TestHashBytesRange(t *testing.T) {
	fn := Murmur3_32(0)
	input := []byte("0123456789")

	got, err := HashBytesRange(fn, input, 2, 5)
	if err != nil {
		t.Fatalf("HashBytesRange: %v", err)
	}
	if want := fn.HashBytes(input[2:7]); !got.Equal(want) {
		t.Errorf("HashBytesRange = %v, want %v", got, want)
	}

	bad := []struct{ off, n int }{
		{-1, 3}, {0, -1}, {8, 3}, {0, 11}, {11, 0},
	}
	for _, b := range bad {
		if _, err := HashBytesRange(fn, input, b.off, b.n); err == nil {
			t.Errorf("HashBytesRange(off=%d, n=%d) did not fail", b.off, b.n)
		}
	}
}

// =============================================================================
// Thread-shareability of HashFunction values
// =============================================================================

func TestHashFunctionConcurrentSharing(t *testing.T) {
	rng := newTestRNG(t)
	input := randomBytes(rng, 512)
	for _, tc := range allHashFunctions() {
		want := tc.fn.HashBytes(input)
		var g errgroup.Group
		for w := 0; w < 8; w++ {
			g.Go(func() error {
				for i := 0; i < 100; i++ {
					h := tc.fn.NewHasher()
					h.PutBytes(input)
					if got := h.Hash(); !got.Equal(want) {
						return fmt.Errorf("%s: concurrent hash %v != %v", tc.name, got, want)
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}
	}
}
