// Package hashkit provides a pluggable hash-function abstraction with
// one-shot and streaming computation, bit-exact non-cryptographic hash
// algorithms, a bloom filter built on top of them, and a hash-flooding
// detector for open-addressed tables.
//
// # Basic Usage
//
// One-shot hashing:
//
//	code := hashkit.Murmur3_128(0).HashBytes(data)
//	fmt.Println(code) // lowercase hex
//
// Streaming a composite value:
//
//	h := hashkit.Murmur3_32(0).NewHasher()
//	h.PutUint64(user.ID)
//	h.PutString(user.Name)
//	code := h.Hash()
//
// Bloom filters:
//
//	f, err := hashkit.NewFilter[string](hashkit.StringFunnel{}, 1_000_000,
//	    hashkit.WithFalsePositiveRate(0.01))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f.Put("alpha")
//	f.MightContain("alpha") // always true
//	f.MightContain("beta")  // false, or a rare false positive
//
// # Package Structure
//
//   - Hash contracts: hash.go (HashFunction, Hasher, Sink), funnel.go,
//     hashcode.go (HashCode)
//   - Streaming driver: stream.go (chunked buffering shared by block hashes)
//   - Algorithms: murmur3_32.go, murmur3_128.go, crc32c.go, crypto.go
//     (MD5/SHA/HMAC delegation), xxhash.go (xxHash/XXH3 adapters)
//   - Bloom filter: bloom.go, bloom_file.go (serialization, mmap open),
//     internal/bitvec
//   - Flood detection: flood.go (Detector, naive and skipping scanners)
//   - Combinators: combine.go (CombineOrdered, CombineUnordered,
//     ConsistentHash)
//   - Platform: fallocate_*.go (filter file preallocation)
//
// Murmur3 and CRC32C are not cryptographic: they offer no collision
// resistance against adversaries. The crypto wrappers delegate entirely to
// the standard library and add no cryptographic computation of their own.
package hashkit
