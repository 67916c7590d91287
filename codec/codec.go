package codec

// Encodable is implemented by any value this module can write to a raw key
// or raw value.
type Encodable interface {
	EncodeTo(w *Writer) error
}

// Decodable is implemented, via a pointer receiver, by any value this module
// can decode from a raw key or raw value.
type Decodable interface {
	DecodeFrom(r *Reader) error
}

// WriteLE encodes v and returns the resulting bytes.
func WriteLE(v Encodable) ([]byte, error) {
	w := NewWriter()
	if err := v.EncodeTo(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ReadLE decodes data into a zero value of T, using T's Decodable
// implementation (via *T, since DecodeFrom is necessarily a pointer-receiver
// method). Any unconsumed trailing bytes are ignored by design: callers that
// care about exact consumption use Reader directly.
func ReadLE[T any, PT interface {
	*T
	Decodable
}](data []byte) (T, error) {
	var v T
	r := NewReader(data)
	if err := PT(&v).DecodeFrom(r); err != nil {
		return v, err
	}
	return v, nil
}
