package hashkit

// Funnel decomposes a domain value into a deterministic, order-sensitive
// sequence of primitive writes. The same logical value must always funnel
// to the same write sequence; hash stability across processes depends on it.
//
// Funnels are identified across serialization boundaries by their Go type
// (see WriteFile), so prefer named struct types over closures for funnels
// used with persisted bloom filters.
type Funnel[T any] interface {
	Funnel(value T, into Sink)
}

// FunnelFunc adapts a plain function to the Funnel interface.
type FunnelFunc[T any] func(value T, into Sink)

// Funnel implements Funnel[T].
func (f FunnelFunc[T]) Funnel(value T, into Sink) { f(value, into) }

// BytesFunnel funnels a byte slice as-is.
type BytesFunnel struct{}

// Funnel implements Funnel[[]byte].
func (BytesFunnel) Funnel(value []byte, into Sink) { into.PutBytes(value) }

// StringFunnel funnels the raw UTF-8 bytes of a string.
type StringFunnel struct{}

// Funnel implements Funnel[string].
func (StringFunnel) Funnel(value string, into Sink) { into.PutString(value) }

// Uint64Funnel funnels a uint64 as eight little-endian bytes.
type Uint64Funnel struct{}

// Funnel implements Funnel[uint64].
func (Uint64Funnel) Funnel(value uint64, into Sink) { into.PutUint64(value) }
