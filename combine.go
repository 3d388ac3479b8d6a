package hashkit

import (
	"fmt"

	hkerrors "github.com/tamirms/hashkit/errors"
)

// CombineOrdered combines hash codes so that the result depends on the
// order of the inputs: byte i of the result is byte i of each code folded
// with multiply-by-37 and xor. All codes must have the same bit length and
// at least one code is required.
func CombineOrdered(codes ...HashCode) (HashCode, error) {
	return combine(codes, func(acc, next byte) byte { return acc*37 ^ next })
}

// CombineUnordered combines hash codes commutatively: byte-wise wrapping
// addition, so any permutation of the inputs yields the same result. All
// codes must have the same bit length and at least one code is required.
func CombineUnordered(codes ...HashCode) (HashCode, error) {
	return combine(codes, func(acc, next byte) byte { return acc + next })
}

func combine(codes []HashCode, fold func(acc, next byte) byte) (HashCode, error) {
	if len(codes) == 0 {
		return HashCode{}, hkerrors.ErrNoHashCodes
	}
	bits := codes[0].Bits()
	acc := make([]byte, bits/8)
	for _, code := range codes {
		if code.Bits() != bits {
			return HashCode{}, fmt.Errorf("%w: %d vs %d bits", hkerrors.ErrBitLengthMismatch, bits, code.Bits())
		}
		for i, b := range code.b {
			acc[i] = fold(acc[i], b)
		}
	}
	return hashCodeFromOwned(acc), nil
}

// ConsistentHash assigns code to one of buckets buckets so that when the
// bucket count grows from n to n+1, only ~1/(n+1) of inputs move, all of
// them to the new bucket. Use it to spread keys over a resizable set of
// shards without reshuffling on growth.
//
// Codes shorter than 64 bits are zero-extended; longer codes use their
// first eight bytes.
func ConsistentHash(code HashCode, buckets int) (int, error) {
	if buckets <= 0 {
		return 0, fmt.Errorf("%w: %d", hkerrors.ErrInvalidBucketCount, buckets)
	}
	state := code.PadToUint64()
	candidate := 0
	for {
		// Linear congruential step; the quotient walk visits each candidate
		// bucket with the proportions consistent hashing requires.
		state = state*2862933555777941757 + 1
		d := float64(int32(state>>33)+1) / float64(int64(1)<<31)
		next := float64(candidate+1) / d
		if next < 0 || next >= float64(buckets) {
			return candidate, nil
		}
		candidate = int(next)
	}
}
