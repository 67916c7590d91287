package codec

import "math/big"

// Uint128 is an unsigned 128-bit integer, represented as two 64-bit halves
// since Go has no native 128-bit integer type.
type Uint128 struct {
	Lo, Hi uint64
}

// NewUint128 builds a Uint128 from an unsigned 64-bit value.
func NewUint128(v uint64) Uint128 { return Uint128{Lo: v} }

// Big returns v as a math/big.Int.
func (v Uint128) Big() *big.Int {
	hi := new(big.Int).SetUint64(v.Hi)
	hi.Lsh(hi, 64)
	return hi.Or(hi, new(big.Int).SetUint64(v.Lo))
}

// Int128 is a signed 128-bit integer, represented as an unsigned low half
// plus a signed high half carrying the sign (two's complement).
type Int128 struct {
	Lo uint64
	Hi int64
}

// NewInt128 builds an Int128 from a signed 64-bit value, sign-extending into
// the high half.
func NewInt128(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Lo: uint64(v), Hi: hi}
}

// Big returns v as a math/big.Int.
func (v Int128) Big() *big.Int {
	hi := new(big.Int).SetInt64(v.Hi)
	hi.Lsh(hi, 64)
	return hi.Or(hi, new(big.Int).SetUint64(v.Lo))
}
