package codec

import (
	"bytes"
	"math"
)

// MaxMemberCount is the largest struct member count the 1-byte member-count
// prefix can express.
const MaxMemberCount = math.MaxUint8

// MaxBodyLen is the largest recursive-body length the 2-byte body-length
// prefix can express.
const MaxBodyLen = math.MaxUint16

// Writer accumulates a little-endian, length-prefixed byte encoding. It is
// the sink referenced by the codec's WriteLE contract.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the bytes written so far. The returned slice aliases the
// Writer's internal buffer and must not be retained across further writes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteRaw appends b verbatim, with no length prefix.
func (w *Writer) WriteRaw(b []byte) { w.buf.Write(b) }

// WriteBool writes a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

// WriteUint16 writes v little-endian.
func (w *Writer) WriteUint16(v uint16) {
	w.buf.Write([]byte{byte(v), byte(v >> 8)})
}

// WriteUint32 writes v little-endian.
func (w *Writer) WriteUint32(v uint32) {
	w.buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// WriteUint64 writes v little-endian.
func (w *Writer) WriteUint64(v uint64) {
	w.buf.Write([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
}

// WriteUint128 writes v little-endian: the low 64 bits, then the high 64.
func (w *Writer) WriteUint128(v Uint128) {
	w.WriteUint64(v.Lo)
	w.WriteUint64(v.Hi)
}

// WriteInt8 writes v as its raw byte representation.
func (w *Writer) WriteInt8(v int8) { w.WriteUint8(uint8(v)) }

// WriteInt16 writes v little-endian.
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

// WriteInt32 writes v little-endian.
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }

// WriteInt64 writes v little-endian.
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

// WriteInt128 writes v little-endian: the low 64 bits, then the signed high
// 64 bits (two's complement, same bit pattern as the unsigned case).
func (w *Writer) WriteInt128(v Int128) {
	w.WriteUint64(v.Lo)
	w.WriteUint64(uint64(v.Hi))
}

// WriteMemberCount writes n as a 1-byte struct member count. Returns
// OversizedContainer if n exceeds MaxMemberCount.
func (w *Writer) WriteMemberCount(n int) error {
	if n < 0 || n > MaxMemberCount {
		return Newf(OversizedContainer, "codec.WriteMemberCount", "member count %d exceeds %d", n, MaxMemberCount)
	}
	w.WriteUint8(uint8(n))
	return nil
}

// WriteBytesLP writes b prefixed with its length as 2 bytes little-endian.
// Returns OversizedContainer if len(b) exceeds MaxBodyLen.
func (w *Writer) WriteBytesLP(b []byte) error {
	if len(b) > MaxBodyLen {
		return Newf(OversizedContainer, "codec.WriteBytesLP", "body length %d exceeds %d", len(b), MaxBodyLen)
	}
	w.WriteUint16(uint16(len(b)))
	w.WriteRaw(b)
	return nil
}

// WriteString writes s as a length-prefixed UTF-8 body, sharing the same
// 2-byte width as WriteBytesLP.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytesLP([]byte(s))
}
