package codec

// Reader consumes a little-endian, length-prefixed byte encoding. It is the
// source referenced by the codec's ReadLE contract. Every read is bounds
// checked; a short read is a hard Deserialize error, never a silent
// truncation.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) need(n int, op string) error {
	if r.Remaining() < n {
		return Newf(Deserialize, op, "short read: need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// ReadRaw reads exactly n unprefixed bytes.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if err := r.need(n, "codec.ReadRaw"); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBool reads a single byte and interprets any nonzero value as true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadRaw(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads 2 little-endian bytes.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadRaw(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadUint32 reads 4 little-endian bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadRaw(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadUint64 reads 8 little-endian bytes.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadRaw(8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadUint128 reads the low 64 bits then the high 64 bits, little-endian.
func (r *Reader) ReadUint128() (Uint128, error) {
	lo, err := r.ReadUint64()
	if err != nil {
		return Uint128{}, err
	}
	hi, err := r.ReadUint64()
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Lo: lo, Hi: hi}, nil
}

// ReadInt8 reads a single byte as a signed integer.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadInt16 reads 2 little-endian bytes as a signed integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads 4 little-endian bytes as a signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads 8 little-endian bytes as a signed integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadInt128 reads the low 64 bits then the signed high 64 bits.
func (r *Reader) ReadInt128() (Int128, error) {
	lo, err := r.ReadUint64()
	if err != nil {
		return Int128{}, err
	}
	hi, err := r.ReadUint64()
	if err != nil {
		return Int128{}, err
	}
	return Int128{Lo: lo, Hi: int64(hi)}, nil
}

// ReadMemberCount reads a 1-byte struct member count.
func (r *Reader) ReadMemberCount() (int, error) {
	v, err := r.ReadUint8()
	return int(v), err
}

// ReadBytesLP reads a 2-byte little-endian length prefix followed by that
// many bytes.
func (r *Reader) ReadBytesLP() ([]byte, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	return r.ReadRaw(int(n))
}

// ReadString reads a length-prefixed UTF-8 body.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytesLP()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
