package hashkit

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	hkerrors "github.com/tamirms/hashkit/errors"
	"github.com/tamirms/hashkit/internal/bitvec"
)

const (
	// magic number for filter files: "BLMF" in little-endian
	filterMagic = uint32(0x464D4C42)

	// filterVersion is the current format version
	filterVersion = uint16(0x0001)

	// filterHeaderSize is the exact size of the serialized header (48 bytes)
	filterHeaderSize = 48

	// filterChecksumSize is the trailing xxHash64 over header + bit words
	filterChecksumSize = 8
)

// filterHeader is the 48-byte filter file header.
//
// Layout:
//
//	Offset  Size  Field       Type
//	0       4     Magic       0x464D4C42 ("BLMF")
//	4       2     Version     0x0001
//	6       1     Strategy    uint8
//	7       1     Reserved    zero
//	8       4     K           uint32_le
//	12      8     BitSize     uint64_le
//	20      8     Insertions  uint64_le
//	28      8     FunnelTag   uint64_le (xxHash64 of the funnel's Go type)
//	36      12    Reserved    zero
//
// The header is followed by ceil(BitSize/64) little-endian uint64 bit words
// and an 8-byte xxHash64 checksum of everything before it.
type filterHeader struct {
	Strategy   StrategyID
	K          uint32
	BitSize    uint64
	Insertions uint64
	FunnelTag  uint64
}

func (h *filterHeader) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], filterMagic)
	binary.LittleEndian.PutUint16(buf[4:6], filterVersion)
	buf[6] = byte(h.Strategy)
	buf[7] = 0
	binary.LittleEndian.PutUint32(buf[8:12], h.K)
	binary.LittleEndian.PutUint64(buf[12:20], h.BitSize)
	binary.LittleEndian.PutUint64(buf[20:28], h.Insertions)
	binary.LittleEndian.PutUint64(buf[28:36], h.FunnelTag)
	clear(buf[36:48])
}

func decodeFilterHeader(buf []byte) (*filterHeader, error) {
	if len(buf) < filterHeaderSize {
		return nil, hkerrors.ErrTruncatedFile
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != filterMagic {
		return nil, hkerrors.ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != filterVersion {
		return nil, fmt.Errorf("%w: %d", hkerrors.ErrInvalidVersion, v)
	}
	h := &filterHeader{
		Strategy:   StrategyID(buf[6]),
		K:          binary.LittleEndian.Uint32(buf[8:12]),
		BitSize:    binary.LittleEndian.Uint64(buf[12:20]),
		Insertions: binary.LittleEndian.Uint64(buf[20:28]),
		FunnelTag:  binary.LittleEndian.Uint64(buf[28:36]),
	}
	if h.K == 0 || h.BitSize == 0 {
		return nil, hkerrors.ErrTruncatedFile
	}
	// No writer produces a bit array past the OptimalBits clamp. Rejecting
	// oversized headers here also keeps filterWordCount's bitSize+63 from
	// wrapping on a crafted image, which would otherwise decode a filter
	// claiming ~2^64 bits over zero words and panic on the first query.
	if h.BitSize > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", hkerrors.ErrInvalidBitSize, h.BitSize)
	}
	return h, nil
}

// filterWordCount returns the number of bit words for a given bit size.
func filterWordCount(bitSize uint64) int {
	return int((bitSize + 63) / 64)
}

// encodedSize returns the full serialized size of a filter with the given
// bit size.
func encodedFilterSize(bitSize uint64) int {
	return filterHeaderSize + filterWordCount(bitSize)*8 + filterChecksumSize
}

// MarshalBinary serializes the filter: header, bit words little-endian,
// trailing checksum.
func (f *Filter[T]) MarshalBinary() ([]byte, error) {
	h := filterHeader{
		Strategy:   f.strat.id(),
		K:          uint32(f.k),
		BitSize:    f.bits.Size(),
		Insertions: f.insertions,
		FunnelTag:  f.funnelTag,
	}
	buf := make([]byte, encodedFilterSize(f.bits.Size()))
	h.encodeTo(buf[:filterHeaderSize])
	off := filterHeaderSize
	for _, w := range f.bits.Words() {
		binary.LittleEndian.PutUint64(buf[off:off+8], w)
		off += 8
	}
	binary.LittleEndian.PutUint64(buf[off:off+8], xxhash.Sum64(buf[:off]))
	return buf, nil
}

// WriteTo writes the serialized filter to w.
func (f *Filter[T]) WriteTo(w io.Writer) (int64, error) {
	buf, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// UnmarshalFilter reconstructs a filter from data produced by MarshalBinary.
// The funnel must have the same Go type as the one the filter was built
// with; a mismatch fails with ErrFunnelMismatch. The check is type identity
// only: two FunnelFunc closures of the same type share one tag, so passing a
// closure with different write behavior is not detected and yields silent
// false negatives. Use named funnel types for persisted filters.
func UnmarshalFilter[T any](data []byte, funnel Funnel[T]) (*Filter[T], error) {
	h, body, err := verifyFilterImage(data, funnel)
	if err != nil {
		return nil, err
	}
	strat, err := newStrategy(h.Strategy)
	if err != nil {
		return nil, err
	}
	words := make([]uint64, filterWordCount(h.BitSize))
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(body[i*8 : i*8+8])
	}
	return &Filter[T]{
		bits:       bitvec.FromWords(words, h.BitSize),
		k:          int(h.K),
		strat:      strat,
		funnel:     funnel,
		funnelTag:  h.FunnelTag,
		seedHash:   Murmur3_128(0),
		insertions: h.Insertions,
	}, nil
}

// verifyFilterImage validates magic, version, length, checksum and funnel
// tag, returning the parsed header and the bit-word region.
func verifyFilterImage[T any](data []byte, funnel Funnel[T]) (*filterHeader, []byte, error) {
	h, err := decodeFilterHeader(data)
	if err != nil {
		return nil, nil, err
	}
	total := encodedFilterSize(h.BitSize)
	if len(data) < total {
		return nil, nil, hkerrors.ErrTruncatedFile
	}
	payload := data[:total-filterChecksumSize]
	want := binary.LittleEndian.Uint64(data[total-filterChecksumSize : total])
	if got := xxhash.Sum64(payload); got != want {
		return nil, nil, fmt.Errorf("%w: got %016x want %016x", hkerrors.ErrChecksumFailed, got, want)
	}
	if tag := funnelTag(funnel); tag != h.FunnelTag {
		return nil, nil, fmt.Errorf("%w: funnel %T", hkerrors.ErrFunnelMismatch, funnel)
	}
	return h, data[filterHeaderSize : total-filterChecksumSize], nil
}

// WriteFile persists the filter to path. The file is preallocated with
// fallocate where the platform supports it, so a full disk surfaces here
// rather than as a torn write.
func (f *Filter[T]) WriteFile(path string) error {
	buf, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create filter file: %w", err)
	}
	defer file.Close()
	if err := fallocateFile(file, int64(len(buf))); err != nil {
		return fmt.Errorf("preallocate filter file: %w", err)
	}
	if _, err := file.Write(buf); err != nil {
		return fmt.Errorf("write filter file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync filter file: %w", err)
	}
	return file.Close()
}

// OpenFilter loads a filter file into memory. The returned filter is
// mutable and independent of the file. The funnel is checked by type
// identity, as in UnmarshalFilter.
func OpenFilter[T any](path string, funnel Funnel[T]) (*Filter[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}
	return UnmarshalFilter(data, funnel)
}

// ReadOnlyFilter is a bloom filter backed by a memory-mapped filter file.
// It answers MightContain without loading the bit array into the heap.
//
// Thread safety follows the mutable filter: concurrent MightContain calls
// are safe, Close is not safe to call concurrently with queries, and no
// method may be called after Close returns.
type ReadOnlyFilter[T any] struct {
	mm       mmap.MMap
	bits     mappedBits
	k        int
	strat    strategy
	funnel   Funnel[T]
	seedHash HashFunction
	header   *filterHeader

	closed atomic.Bool // Atomic for lock-free close check
}

// mappedBits is a read-only bitArray over the mapped word region. The word
// serialization is little-endian, so bit i lives in byte i/8 at mask
// 1<<(i%8) independent of word width.
type mappedBits struct {
	data []byte
	size uint64
}

func (b mappedBits) Size() uint64 { return b.size }

func (b mappedBits) Get(i uint64) bool {
	return b.data[i/8]&(1<<(i%8)) != 0
}

// Set is required by bitArray but unreachable: ReadOnlyFilter exposes no
// mutating operations.
func (b mappedBits) Set(i uint64) bool {
	panic(hkerrors.ErrReadOnlyFilter)
}

// OpenFilterMmap opens a filter file for querying by memory-mapping it.
// The checksum is verified once at open time, and the funnel is checked by
// type identity, as in UnmarshalFilter. The file descriptor is closed
// before returning; the mapping keeps the contents alive.
func OpenFilterMmap[T any](path string, funnel Funnel[T]) (*ReadOnlyFilter[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filter file: %w", err)
	}
	defer file.Close()

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap filter file: %w", err)
	}
	h, body, err := verifyFilterImage(mm, funnel)
	if err != nil {
		unmapErr := mm.Unmap()
		if unmapErr != nil {
			return nil, fmt.Errorf("%w (unmap: %v)", err, unmapErr)
		}
		return nil, err
	}
	strat, err := newStrategy(h.Strategy)
	if err != nil {
		mm.Unmap()
		return nil, err
	}
	return &ReadOnlyFilter[T]{
		mm:       mm,
		bits:     mappedBits{data: body, size: h.BitSize},
		k:        int(h.K),
		strat:    strat,
		funnel:   funnel,
		seedHash: Murmur3_128(0),
		header:   h,
	}, nil
}

// MightContain reports whether value may have been inserted into the filter
// the file was written from. Fails with ErrFilterClosed after Close.
func (f *ReadOnlyFilter[T]) MightContain(value T) (bool, error) {
	if f.closed.Load() {
		return false, hkerrors.ErrFilterClosed
	}
	h := f.seedHash.NewHasher()
	f.funnel.Funnel(value, h)
	return f.strat.mightContain(h.Hash(), f.k, f.bits), nil
}

// K returns the number of probe positions per element.
func (f *ReadOnlyFilter[T]) K() int { return f.k }

// BitSize returns the size of the mapped bit array.
func (f *ReadOnlyFilter[T]) BitSize() uint64 { return f.bits.size }

// Strategy returns the strategy recorded in the file.
func (f *ReadOnlyFilter[T]) Strategy() StrategyID { return f.strat.id() }

// Close unmaps the filter file. After Close returns no methods may be
// called.
func (f *ReadOnlyFilter[T]) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	return f.mm.Unmap()
}
