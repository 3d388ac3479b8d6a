// Package errors defines all exported error sentinels for the hashkit library.
//
// This is the single source of truth for error values. Both the top-level
// hashkit package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// HashCode errors
var (
	ErrWrongBitLength = errors.New("hashkit: hash code does not have the required bit length")
	ErrOutOfRange     = errors.New("hashkit: offset/length out of range")
)

// Hasher lifecycle errors. ErrHasherFinalized is the panic value used when a
// finalized Hasher is mutated; it is a sentinel so recover sites can identify
// the misuse with errors.Is.
var (
	ErrHasherFinalized = errors.New("hashkit: hasher already finalized by Hash")
)

// Bloom filter construction errors
var (
	ErrInvalidExpectedInsertions = errors.New("hashkit: expected insertions must be positive")
	ErrInvalidFalsePositiveRate  = errors.New("hashkit: false positive rate must be in (0, 1)")
	ErrIncompatibleFilters       = errors.New("hashkit: filters are not compatible")
)

// Filter serialization errors
var (
	ErrInvalidMagic    = errors.New("hashkit: invalid magic number")
	ErrInvalidVersion  = errors.New("hashkit: unsupported format version")
	ErrInvalidStrategy = errors.New("hashkit: unknown strategy identifier")
	ErrInvalidBitSize  = errors.New("hashkit: filter bit size out of range")
	ErrChecksumFailed  = errors.New("hashkit: filter file checksum verification failed")
	ErrTruncatedFile   = errors.New("hashkit: filter file is truncated")
	ErrFunnelMismatch  = errors.New("hashkit: filter was built with a different funnel")
	ErrReadOnlyFilter  = errors.New("hashkit: filter is read-only")
	ErrFilterClosed    = errors.New("hashkit: filter is closed")
)

// Combinator errors
var (
	ErrNoHashCodes        = errors.New("hashkit: at least one hash code is required")
	ErrBitLengthMismatch  = errors.New("hashkit: hash codes must have equal bit lengths")
	ErrInvalidBucketCount = errors.New("hashkit: bucket count must be positive")
)
