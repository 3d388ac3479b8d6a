package hashkit

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"hash"
	"io"
)

// The digest and MAC functions below delegate byte-for-byte to the standard
// crypto library. hashkit only adapts their input/output shape to the
// HashFunction contract: primitives are decomposed little-endian before
// being written, and the digest bytes become the HashCode in the order the
// underlying hash emits them.

// MD5 returns a 128-bit MD5 hash function.
//
// MD5 is broken for collision resistance; it is provided for interoperating
// with legacy formats, not for security.
func MD5() HashFunction { return hashAdapter{bits: 128, newHash: md5.New} }

// SHA1 returns a 160-bit SHA-1 hash function.
//
// SHA-1 is broken for collision resistance; it is provided for
// interoperating with legacy formats, not for security.
func SHA1() HashFunction { return hashAdapter{bits: 160, newHash: sha1.New} }

// SHA256 returns a 256-bit SHA-256 hash function.
func SHA256() HashFunction { return hashAdapter{bits: 256, newHash: sha256.New} }

// SHA512 returns a 512-bit SHA-512 hash function.
func SHA512() HashFunction { return hashAdapter{bits: 512, newHash: sha512.New} }

// HMACSHA256 returns a 256-bit HMAC-SHA256 hash function using the given
// key. The key is copied; the caller may zero or reuse the slice afterwards.
func HMACSHA256(key []byte) HashFunction {
	k := append([]byte(nil), key...)
	return hashAdapter{bits: 256, newHash: func() hash.Hash { return hmac.New(sha256.New, k) }}
}

// HMACSHA512 returns a 512-bit HMAC-SHA512 hash function using the given
// key. The key is copied.
func HMACSHA512(key []byte) HashFunction {
	k := append([]byte(nil), key...)
	return hashAdapter{bits: 512, newHash: func() hash.Hash { return hmac.New(sha512.New, k) }}
}

// NewHashAdapter exposes an arbitrary hash.Hash constructor as a
// HashFunction. bits must equal 8 times the Size of the produced hashes.
func NewHashAdapter(bits int, newHash func() hash.Hash) HashFunction {
	return hashAdapter{bits: bits, newHash: newHash}
}

// hashAdapter adapts a hash.Hash constructor to the HashFunction contract.
type hashAdapter struct {
	bits    int
	newHash func() hash.Hash
}

func (a hashAdapter) Bits() int { return a.bits }

func (a hashAdapter) NewHasher() Hasher {
	return &hashHasher{h: a.newHash()}
}

func (a hashAdapter) HashBytes(p []byte) HashCode {
	h := a.newHash()
	h.Write(p)
	return hashCodeFromOwned(h.Sum(nil))
}

func (a hashAdapter) HashString(s string) HashCode {
	h := a.newHash()
	io.WriteString(h, s)
	return hashCodeFromOwned(h.Sum(nil))
}

func (a hashAdapter) HashUint32(v uint32) HashCode {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return a.HashBytes(b[:])
}

func (a hashAdapter) HashUint64(v uint64) HashCode {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return a.HashBytes(b[:])
}

// hashHasher drives a hash.Hash through the Sink contract. hash.Hash writes
// never fail, so the error returns are discarded.
type hashHasher struct {
	h       hash.Hash
	done    bool
	scratch [8]byte
}

func (h *hashHasher) write(p []byte) {
	if h.done {
		panicFinalized()
	}
	h.h.Write(p)
}

func (h *hashHasher) PutByte(b byte) {
	h.scratch[0] = b
	h.write(h.scratch[:1])
}

func (h *hashHasher) PutBytes(p []byte) { h.write(p) }

func (h *hashHasher) PutString(s string) {
	if h.done {
		panicFinalized()
	}
	io.WriteString(h.h, s)
}

func (h *hashHasher) PutUint16(v uint16) {
	binary.LittleEndian.PutUint16(h.scratch[:2], v)
	h.write(h.scratch[:2])
}

func (h *hashHasher) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(h.scratch[:4], v)
	h.write(h.scratch[:4])
}

func (h *hashHasher) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(h.scratch[:8], v)
	h.write(h.scratch[:8])
}

func (h *hashHasher) PutBool(v bool)     { h.PutByte(boolByte(v)) }
func (h *hashHasher) PutFloat64(v float64) { h.PutUint64(floatBits(v)) }

func (h *hashHasher) Hash() HashCode {
	if h.done {
		panicFinalized()
	}
	h.done = true
	return hashCodeFromOwned(h.h.Sum(nil))
}
