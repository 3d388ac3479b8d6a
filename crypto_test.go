package hashkit

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/fnv"
	"testing"
)

// The wrappers must delegate byte-for-byte to crypto: same digest, same byte
// order, for any input.
func TestCryptoWrappersMatchStdlib(t *testing.T) {
	rng := newTestRNG(t)
	cases := []struct {
		name string
		fn   HashFunction
		ref  func([]byte) []byte
	}{
		{"md5", MD5(), func(p []byte) []byte { s := md5.Sum(p); return s[:] }},
		{"sha1", SHA1(), func(p []byte) []byte { s := sha1.Sum(p); return s[:] }},
		{"sha256", SHA256(), func(p []byte) []byte { s := sha256.Sum256(p); return s[:] }},
		{"sha512", SHA512(), func(p []byte) []byte { s := sha512.Sum512(p); return s[:] }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, size := range []int{0, 1, 63, 64, 65, 1000} {
				input := randomBytes(rng, size)
				if got, want := tc.fn.HashBytes(input).Bytes(), tc.ref(input); !bytes.Equal(got, want) {
					t.Errorf("size %d: got %x, want %x", size, got, want)
				}
			}
		})
	}
}

func TestHMACWrappersMatchStdlib(t *testing.T) {
	rng := newTestRNG(t)
	key := []byte("0123456789abcdef")
	cases := []struct {
		name string
		fn   HashFunction
		new  func() hash.Hash
	}{
		{"hmac-sha256", HMACSHA256(key), func() hash.Hash { return hmac.New(sha256.New, key) }},
		{"hmac-sha512", HMACSHA512(key), func() hash.Hash { return hmac.New(sha512.New, key) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := randomBytes(rng, 200)
			mac := tc.new()
			mac.Write(input)
			if got, want := tc.fn.HashBytes(input).Bytes(), mac.Sum(nil); !bytes.Equal(got, want) {
				t.Errorf("got %x, want %x", got, want)
			}
		})
	}
}

// HMACSHA256 copies its key: zeroing the caller's slice afterwards must not
// change the MAC.
func TestHMACKeyIsCopied(t *testing.T) {
	key := []byte("secret key material")
	fn := HMACSHA256(key)
	want := fn.HashBytes([]byte("payload"))
	for i := range key {
		key[i] = 0
	}
	if got := fn.HashBytes([]byte("payload")); !got.Equal(want) {
		t.Error("MAC changed after the caller's key slice was zeroed")
	}
}

func TestNewHashAdapter(t *testing.T) {
	fn := NewHashAdapter(64, func() hash.Hash { return fnv.New64a() })
	if fn.Bits() != 64 {
		t.Fatalf("Bits() = %d, want 64", fn.Bits())
	}
	ref := fnv.New64a()
	ref.Write([]byte("adapter"))
	if got, want := fn.HashBytes([]byte("adapter")).Bytes(), ref.Sum(nil); !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
