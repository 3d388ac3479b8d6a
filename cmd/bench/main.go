// Bench is a benchmarking tool for measuring hashkit hash throughput and
// bloom filter false-positive behavior.
//
// Usage:
//
//	go run ./cmd/bench -mode hash -algo murmur128 -size 4096 -workers 4
//	go run ./cmd/bench -mode bloom -keys 1000000 -fpp 0.01
//
// Flags:
//
//	-mode     hash or bloom (default: hash)
//	-algo     murmur32, murmur128, crc32c, xxhash64, xxh3, xxh3-128, sha256 (default: murmur128)
//	-size     input size in bytes per hash call (default: 1024)
//	-iters    hash calls per worker (default: 1,000,000)
//	-workers  parallel workers, each with its own input buffer (default: 1)
//	-keys     bloom mode: inserted keys (default: 1,000,000)
//	-probes   bloom mode: non-inserted probes (default: 1,000,000)
//	-fpp      bloom mode: target false-positive rate (default: 0.01)
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"time"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	"github.com/tamirms/hashkit"
)

func hashFunctionFor(name string) (hashkit.HashFunction, bool) {
	switch name {
	case "murmur32":
		return hashkit.Murmur3_32(0), true
	case "murmur128":
		return hashkit.Murmur3_128(0), true
	case "crc32c":
		return hashkit.CRC32C(), true
	case "xxhash64":
		return hashkit.XXHash64(), true
	case "xxh3":
		return hashkit.XXH3(), true
	case "xxh3-128":
		return hashkit.XXH3_128(), true
	case "sha256":
		return hashkit.SHA256(), true
	}
	return nil, false
}

func benchHash(algo string, size, iters, workers int) error {
	fn, ok := hashFunctionFor(algo)
	if !ok {
		return fmt.Errorf("unknown algorithm %q", algo)
	}

	var g errgroup.Group
	start := time.Now()
	for w := 0; w < workers; w++ {
		seed := uint64(w)
		g.Go(func() error {
			rng := mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			buf := make([]byte, size)
			for i := 0; i+8 <= len(buf); i += 8 {
				binary.LittleEndian.PutUint64(buf[i:], rng.Uint64())
			}
			for i := 0; i < iters; i++ {
				// Perturb the first word so the hardware can't cache the result.
				binary.LittleEndian.PutUint64(buf[:8], rng.Uint64())
				_ = fn.HashBytes(buf)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := int64(size) * int64(iters) * int64(workers)
	fmt.Printf("algo=%s size=%d workers=%d\n", algo, size, workers)
	fmt.Printf("  %.2f GB/s, %.0f ns/op\n",
		float64(total)/elapsed.Seconds()/1e9,
		elapsed.Seconds()/float64(iters)*1e9)
	return nil
}

func benchBloom(keys, probes int, fpp float64) error {
	f, err := hashkit.NewFilter[uint64](hashkit.Uint64Funnel{}, int64(keys),
		hashkit.WithFalsePositiveRate(fpp))
	if err != nil {
		return err
	}
	fmt.Printf("filter: m=%d bits k=%d (%.2f bits/key)\n",
		f.BitSize(), f.K(), float64(f.BitSize())/float64(keys))

	// Inserted keys are the even numbers, probes the odd: disjoint by
	// construction, so every positive probe is a false positive.
	start := time.Now()
	for i := 0; i < keys; i++ {
		f.Put(uint64(i) * 2)
	}
	insertDur := time.Since(start)

	start = time.Now()
	falsePositives := 0
	for i := 0; i < probes; i++ {
		if f.MightContain(uint64(i)*2 + 1) {
			falsePositives++
		}
	}
	probeDur := time.Since(start)

	fmt.Printf("insert: %d keys in %v (%.0f ns/op)\n",
		keys, insertDur, insertDur.Seconds()/float64(keys)*1e9)
	fmt.Printf("probe:  %d keys in %v (%.0f ns/op)\n",
		probes, probeDur, probeDur.Seconds()/float64(probes)*1e9)
	fmt.Printf("fpp:    measured=%.5f expected=%.5f target=%.5f\n",
		float64(falsePositives)/float64(probes), f.ExpectedFpp(), fpp)

	// Sanity: the in-tree murmur must agree with the reference library,
	// otherwise the numbers above measure the wrong function.
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], 0xdeadbeef)
	refLo, refHi := murmur3.Sum128(key[:])
	got := hashkit.Murmur3_128(0).HashBytes(key[:])
	gotLo := binary.LittleEndian.Uint64(got.Bytes()[:8])
	gotHi := binary.LittleEndian.Uint64(got.Bytes()[8:])
	if refLo != gotLo || refHi != gotHi {
		return fmt.Errorf("murmur3 mismatch vs reference: got (%x,%x) want (%x,%x)",
			gotLo, gotHi, refLo, refHi)
	}
	return nil
}

func main() {
	mode := flag.String("mode", "hash", "hash or bloom")
	algo := flag.String("algo", "murmur128", "hash algorithm")
	size := flag.Int("size", 1024, "input size in bytes")
	iters := flag.Int("iters", 1_000_000, "hash calls per worker")
	workers := flag.Int("workers", 1, "parallel workers")
	keys := flag.Int("keys", 1_000_000, "bloom: inserted keys")
	probes := flag.Int("probes", 1_000_000, "bloom: non-inserted probes")
	fpp := flag.Float64("fpp", 0.01, "bloom: target false-positive rate")
	flag.Parse()

	var err error
	switch *mode {
	case "hash":
		err = benchHash(*algo, *size, *iters, *workers)
	case "bloom":
		err = benchBloom(*keys, *probes, *fpp)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}
