package hashkit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	hkerrors "github.com/tamirms/hashkit/errors"
	"github.com/tamirms/hashkit/internal/bitvec"
)

// StrategyID identifies a hash-to-bit-indices mapping. The ID is stored in
// filter files, so values are never reused or renumbered.
type StrategyID uint8

const (
	// StrategyDoubleHash64 splits the 128-bit seed hash into two 64-bit
	// halves and probes (h1 + i*h2) mod bitSize. This is the default.
	StrategyDoubleHash64 StrategyID = 1

	// StrategyDoubleHash32 derives two 32-bit halves from the low 64 bits of
	// the seed hash and probes with signed 32-bit arithmetic, flipping
	// negative combined values. Provided for compatibility with filters
	// built by 32-bit-strategy implementations.
	StrategyDoubleHash32 StrategyID = 2
)

// String returns the strategy name.
func (s StrategyID) String() string {
	switch s {
	case StrategyDoubleHash64:
		return "doublehash64"
	case StrategyDoubleHash32:
		return "doublehash32"
	default:
		return "unknown"
	}
}

// bitArray is the probe surface strategies operate on: the heap-backed
// bitvec.Vector for mutable filters, or a read-only view over a mapped
// filter file.
type bitArray interface {
	Size() uint64
	Get(i uint64) bool
	Set(i uint64) bool
}

// strategy maps a 128-bit seed hash to k bit indices. Implementations are
// stateless; the variant is selected once at filter construction.
type strategy interface {
	id() StrategyID
	put(code HashCode, k int, bits bitArray) bool
	mightContain(code HashCode, k int, bits bitArray) bool
}

func newStrategy(id StrategyID) (strategy, error) {
	switch id {
	case StrategyDoubleHash64:
		return doubleHash64{}, nil
	case StrategyDoubleHash32:
		return doubleHash32{}, nil
	}
	return nil, fmt.Errorf("%w: %d", hkerrors.ErrInvalidStrategy, id)
}

// doubleHash64 probes with two independent 64-bit halves. The top bit of the
// combined value is masked before the modulo so the index stays in range the
// same way a signed & MAX_VALUE would.
type doubleHash64 struct{}

func (doubleHash64) id() StrategyID { return StrategyDoubleHash64 }

func (doubleHash64) put(code HashCode, k int, bits bitArray) bool {
	h1, h2 := splitHash128(code)
	m := bits.Size()
	changed := false
	combined := h1
	for i := 0; i < k; i++ {
		if bits.Set((combined & math.MaxInt64) % m) {
			changed = true
		}
		combined += h2
	}
	return changed
}

func (doubleHash64) mightContain(code HashCode, k int, bits bitArray) bool {
	h1, h2 := splitHash128(code)
	m := bits.Size()
	combined := h1
	for i := 0; i < k; i++ {
		if !bits.Get((combined & math.MaxInt64) % m) {
			return false
		}
		combined += h2
	}
	return true
}

// doubleHash32 reproduces the signed 32-bit probe sequence: negative
// combined hashes are bit-flipped rather than masked.
type doubleHash32 struct{}

func (doubleHash32) id() StrategyID { return StrategyDoubleHash32 }

func (doubleHash32) indices(code HashCode, k int, m uint64, visit func(uint64) bool) bool {
	lo, _ := splitHash128(code)
	h1 := int32(uint32(lo))
	h2 := int32(uint32(lo >> 32))
	for i := 1; i <= k; i++ {
		combined := h1 + int32(i)*h2
		if combined < 0 {
			combined = ^combined
		}
		if !visit(uint64(combined) % m) {
			return false
		}
	}
	return true
}

func (s doubleHash32) put(code HashCode, k int, bits bitArray) bool {
	changed := false
	s.indices(code, k, bits.Size(), func(i uint64) bool {
		if bits.Set(i) {
			changed = true
		}
		return true
	})
	return changed
}

func (s doubleHash32) mightContain(code HashCode, k int, bits bitArray) bool {
	return s.indices(code, k, bits.Size(), func(i uint64) bool {
		return bits.Get(i)
	})
}

// splitHash128 returns the two little-endian 64-bit halves of a 128-bit
// code.
func splitHash128(code HashCode) (h1, h2 uint64) {
	b := code.Bytes()
	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:16])
}

// OptimalBits returns the bloom filter bit count for expectedInsertions
// elements at target false-positive probability fpp:
// ceil(-n*ln(p) / ln(2)^2). Results that overflow the maximum addressable
// bit array are clamped to MaxInt32 rather than failing; an over-full
// filter degrades its false-positive rate, it does not crash.
func OptimalBits(expectedInsertions int64, fpp float64) int64 {
	if fpp == 0 {
		fpp = math.SmallestNonzeroFloat64
	}
	bits := math.Ceil(-float64(expectedInsertions) * math.Log(fpp) / (math.Ln2 * math.Ln2))
	if bits >= math.MaxInt32 || math.IsInf(bits, 1) || math.IsNaN(bits) {
		return math.MaxInt32
	}
	return int64(bits)
}

// OptimalHashCount returns the probe count k for n expected insertions into
// m bits: round(m/n * ln 2), never less than 1.
func OptimalHashCount(n, m int64) int {
	k := int(math.Round(float64(m) / float64(n) * math.Ln2))
	return max(1, k)
}

// FilterOption configures filter construction.
type FilterOption func(*filterConfig)

type filterConfig struct {
	fpp      float64
	strategy StrategyID
}

func defaultFilterConfig() *filterConfig {
	return &filterConfig{
		fpp:      0.03, // Conventional default; override via WithFalsePositiveRate
		strategy: StrategyDoubleHash64,
	}
}

// WithFalsePositiveRate sets the target false-positive probability.
// Must be in (0, 1). Default is 3%.
func WithFalsePositiveRate(fpp float64) FilterOption {
	return func(c *filterConfig) {
		c.fpp = fpp
	}
}

// WithStrategy selects the hash-to-indices strategy.
// Default is StrategyDoubleHash64.
func WithStrategy(id StrategyID) FilterOption {
	return func(c *filterConfig) {
		c.strategy = id
	}
}

// Filter is a bloom filter: a probabilistic set with no false negatives and
// a tunable false-positive rate. Once Put(x) has returned, MightContain(x)
// is true for the lifetime of the filter.
//
// Filter performs no internal locking. Concurrent Put calls need external
// mutual exclusion; concurrent MightContain calls with no concurrent Put
// are safe.
type Filter[T any] struct {
	bits      *bitvec.Vector
	k         int
	strat     strategy
	funnel    Funnel[T]
	funnelTag uint64
	seedHash  HashFunction

	expectedInsertions int64

	// insertions counts puts that changed at least one bit. It drives
	// ExpectedFpp and is an upper bound on the distinct elements inserted.
	insertions uint64
}

// NewFilter creates a filter sized for expectedInsertions elements.
// The funnel decomposes elements for hashing; filters persisted with
// WriteFile record the funnel's type, so use a named funnel type rather
// than a closure if the filter will be serialized.
func NewFilter[T any](funnel Funnel[T], expectedInsertions int64, opts ...FilterOption) (*Filter[T], error) {
	cfg := defaultFilterConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if expectedInsertions <= 0 {
		return nil, fmt.Errorf("%w: %d", hkerrors.ErrInvalidExpectedInsertions, expectedInsertions)
	}
	if cfg.fpp <= 0 || cfg.fpp >= 1 {
		return nil, fmt.Errorf("%w: %v", hkerrors.ErrInvalidFalsePositiveRate, cfg.fpp)
	}
	strat, err := newStrategy(cfg.strategy)
	if err != nil {
		return nil, err
	}

	m := OptimalBits(expectedInsertions, cfg.fpp)
	k := OptimalHashCount(expectedInsertions, m)
	return &Filter[T]{
		bits:               bitvec.New(uint64(m)),
		k:                  k,
		strat:              strat,
		funnel:             funnel,
		funnelTag:          funnelTag(funnel),
		seedHash:           Murmur3_128(0),
		expectedInsertions: expectedInsertions,
	}, nil
}

// funnelTag derives the 64-bit identity tag recorded in filter files: the
// xxhash of the funnel's Go type name.
func funnelTag[T any](funnel Funnel[T]) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%T", funnel))
}

// hashValue funnels value into the 128-bit seed hash.
func (f *Filter[T]) hashValue(value T) HashCode {
	h := f.seedHash.NewHasher()
	f.funnel.Funnel(value, h)
	return h.Hash()
}

// Put inserts value and reports whether any bit changed: true means the
// filter definitely did not contain the value, false means it possibly did.
func (f *Filter[T]) Put(value T) bool {
	changed := f.strat.put(f.hashValue(value), f.k, f.bits)
	if changed {
		f.insertions++
	}
	return changed
}

// MightContain reports whether value may have been inserted. False is
// definite; true is probabilistic with rate ExpectedFpp.
func (f *Filter[T]) MightContain(value T) bool {
	return f.strat.mightContain(f.hashValue(value), f.k, f.bits)
}

// K returns the number of probe positions per element.
func (f *Filter[T]) K() int { return f.k }

// BitSize returns the size of the bit array.
func (f *Filter[T]) BitSize() uint64 { return f.bits.Size() }

// Strategy returns the strategy the filter probes with.
func (f *Filter[T]) Strategy() StrategyID { return f.strat.id() }

// ExpectedFpp returns (1 - e^(-k*n/m))^k for the n insertions observed so
// far. It never decreases, and strictly increases whenever a Put changes a
// bit.
func (f *Filter[T]) ExpectedFpp() float64 {
	n := float64(f.insertions)
	m := float64(f.bits.Size())
	k := float64(f.k)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// ApproximateElementCount estimates the number of distinct elements
// inserted, derived from the fill ratio of the bit array.
func (f *Filter[T]) ApproximateElementCount() int64 {
	m := float64(f.bits.Size())
	x := float64(f.bits.Count())
	return int64(math.Round(-m / float64(f.k) * math.Log1p(-x/m)))
}

// IsCompatible reports whether other was built with the same geometry,
// strategy and funnel type, making PutAll meaningful.
func (f *Filter[T]) IsCompatible(other *Filter[T]) bool {
	return f != other &&
		f.k == other.k &&
		f.bits.Size() == other.bits.Size() &&
		f.strat.id() == other.strat.id() &&
		f.funnelTag == other.funnelTag
}

// PutAll folds every element of other into f by ORing the bit arrays.
// Fails with ErrIncompatibleFilters when geometries differ. The insertion
// count becomes the sum of both counts, an upper bound on the true count.
func (f *Filter[T]) PutAll(other *Filter[T]) error {
	if !f.IsCompatible(other) {
		return fmt.Errorf("%w: k %d/%d bits %d/%d strategy %v/%v",
			hkerrors.ErrIncompatibleFilters,
			f.k, other.k, f.bits.Size(), other.bits.Size(), f.strat.id(), other.strat.id())
	}
	f.bits.Or(other.bits)
	f.insertions += other.insertions
	return nil
}

// Copy returns an independent filter with the same contents.
func (f *Filter[T]) Copy() *Filter[T] {
	dup := *f
	dup.bits = f.bits.Clone()
	return &dup
}
