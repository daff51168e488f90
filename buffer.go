package gobwire

import (
	"sync"
	"unicode/utf8"
)

// Buffer accumulates encoded payload bytes during a single value's encode.
// It grows only by appending, and shrinks only through Truncate (used to
// drop an empty struct field) and Reset; after a value is flushed its backing
// array is truncated to length zero so capacity is reused across values
// (§5 "Buffers grow monotonically ... after flush truncated to length
// zero"). Adapted from the teacher's pooled append-only Buffer.
type Buffer struct {
	Bytes []byte
}

// Reset truncates the buffer back to empty, retaining its capacity.
func (b *Buffer) Reset() {
	b.Bytes = b.Bytes[:0]
}

// Len reports the current payload length.
func (b *Buffer) Len() int { return len(b.Bytes) }

// Truncate discards everything after byte offset n. Used by struct
// field-delta encoding to discard a field whose value turned out empty
// (§4.6).
func (b *Buffer) Truncate(n int) {
	b.Bytes = b.Bytes[:n]
}

var bufferPool = sync.Pool{
	New: func() any { return &Buffer{} },
}

// NewBufferFromPool obtains a reset Buffer from the shared pool. Call
// ReturnToPool when finished with it.
func NewBufferFromPool() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.Reset()
	return b
}

// NewBufferFromPoolWithCap acquires a pooled Buffer with guaranteed
// capacity. Call ReturnToPool after use.
func NewBufferFromPoolWithCap(size int) *Buffer {
	b := bufferPool.Get().(*Buffer)

	if c := cap(b.Bytes); c < size {
		b.Bytes = make([]byte, 0, size)
	} else if c > 0 {
		b.Reset()
	}

	return b
}

// ReturnToPool releases the buffer back to the pool. Using the buffer after
// this call results in undefined behaviour.
func (b *Buffer) ReturnToPool() {
	bufferPool.Put(b)
}

// AppendBool writes a boolean as unsigned 0 or 1 (§4.1).
func (b *Buffer) AppendBool(v bool) {
	if v {
		b.Bytes = append(b.Bytes, 1)
	} else {
		b.Bytes = append(b.Bytes, 0)
	}
}

// AppendUvarint writes an unsigned integer in the wire format's varint
// encoding (§4.1).
func (b *Buffer) AppendUvarint(v uint64) {
	b.Bytes = appendUvarint(b.Bytes, v)
}

// AppendSvarint writes a signed integer using zigzag plus varint (§4.1).
func (b *Buffer) AppendSvarint(v int64) {
	b.Bytes = appendSvarint(b.Bytes, v)
}

// AppendFloat64 writes an IEEE-754 double, byte-reversed then varint
// encoded (§4.1).
func (b *Buffer) AppendFloat64(v float64) {
	b.Bytes = appendUvarint(b.Bytes, floatBitsToWire(v))
}

// AppendComplex writes a complex128 as its two float64 halves (real,
// imag) — the spec's two-tuple-of-floats rule (§4.6/§9 COMPLEX128).
func (b *Buffer) AppendComplex(v complex128) {
	b.AppendFloat64(real(v))
	b.AppendFloat64(imag(v))
}

// AppendBytes writes a length-prefixed raw byte slice (§4.1).
func (b *Buffer) AppendBytes(v []byte) {
	b.AppendUvarint(uint64(len(v)))
	b.Bytes = append(b.Bytes, v...)
}

// AppendString writes a length-prefixed UTF-8 string (§4.1).
func (b *Buffer) AppendString(v string) {
	b.AppendUvarint(uint64(len(v)))
	b.Bytes = append(b.Bytes, v...)
}

// isValidUTF8 is used by the decoder to reject malformed strings rather
// than handing garbage to the caller (§7 "invalid UTF-8 in string").
func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}
