// Package plaintext provides a minimal recursive value type (literal or
// struct of named values) used to exercise the codec's tag/body recursion
// contract end to end. It stands in for the much larger literal-type
// lattice (struct/record/register/value types) that the domain this layer
// serves actually has; those richer types are out of this module's scope —
// only their byte-serialization contract matters here, and this type proves
// that contract works on a recursive shape.
package plaintext

import "github.com/aleo-chain/mapstore/codec"

// LiteralKind enumerates the literal kinds this module can encode. It
// covers every integer width the codec supports, plus address/boolean/
// field/group/scalar/string, so that the codec's round-trip property (§8 of
// the design notes) is exercised for every width the format defines.
type LiteralKind uint8

const (
	KindAddress LiteralKind = iota
	KindBoolean
	KindField
	KindGroup
	KindScalar
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindString
)

// Literal is a single scalar value tagged with its kind. Only the field
// matching Kind is meaningful; the others are zero.
type Literal struct {
	Kind LiteralKind

	Address [32]byte
	Boolean bool
	Field   [32]byte
	Group   [32]byte
	Scalar  [32]byte

	I8   int8
	I16  int16
	I32  int32
	I64  int64
	I128 codec.Int128

	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	U128 codec.Uint128

	Str string
}

// EncodeTo writes the literal as tag:u8 followed by its kind-specific body.
func (l Literal) EncodeTo(w *codec.Writer) error {
	w.WriteUint8(uint8(l.Kind))
	switch l.Kind {
	case KindAddress:
		w.WriteRaw(l.Address[:])
	case KindBoolean:
		w.WriteBool(l.Boolean)
	case KindField:
		w.WriteRaw(l.Field[:])
	case KindGroup:
		w.WriteRaw(l.Group[:])
	case KindScalar:
		w.WriteRaw(l.Scalar[:])
	case KindI8:
		w.WriteInt8(l.I8)
	case KindI16:
		w.WriteInt16(l.I16)
	case KindI32:
		w.WriteInt32(l.I32)
	case KindI64:
		w.WriteInt64(l.I64)
	case KindI128:
		w.WriteInt128(l.I128)
	case KindU8:
		w.WriteUint8(l.U8)
	case KindU16:
		w.WriteUint16(l.U16)
	case KindU32:
		w.WriteUint32(l.U32)
	case KindU64:
		w.WriteUint64(l.U64)
	case KindU128:
		w.WriteUint128(l.U128)
	case KindString:
		return w.WriteString(l.Str)
	default:
		return codec.Newf(codec.Serialize, "plaintext.Literal.EncodeTo", "unknown literal kind %d", l.Kind)
	}
	return nil
}

// DecodeFrom reads a literal previously written by EncodeTo.
func (l *Literal) DecodeFrom(r *codec.Reader) error {
	kindByte, err := r.ReadUint8()
	if err != nil {
		return err
	}
	kind := LiteralKind(kindByte)
	switch kind {
	case KindAddress:
		b, err := r.ReadRaw(32)
		if err != nil {
			return err
		}
		var addr [32]byte
		copy(addr[:], b)
		*l = Literal{Kind: kind, Address: addr}
	case KindBoolean:
		v, err := r.ReadBool()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, Boolean: v}
	case KindField:
		b, err := r.ReadRaw(32)
		if err != nil {
			return err
		}
		var f [32]byte
		copy(f[:], b)
		*l = Literal{Kind: kind, Field: f}
	case KindGroup:
		b, err := r.ReadRaw(32)
		if err != nil {
			return err
		}
		var g [32]byte
		copy(g[:], b)
		*l = Literal{Kind: kind, Group: g}
	case KindScalar:
		b, err := r.ReadRaw(32)
		if err != nil {
			return err
		}
		var s [32]byte
		copy(s[:], b)
		*l = Literal{Kind: kind, Scalar: s}
	case KindI8:
		v, err := r.ReadInt8()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, I8: v}
	case KindI16:
		v, err := r.ReadInt16()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, I16: v}
	case KindI32:
		v, err := r.ReadInt32()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, I32: v}
	case KindI64:
		v, err := r.ReadInt64()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, I64: v}
	case KindI128:
		v, err := r.ReadInt128()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, I128: v}
	case KindU8:
		v, err := r.ReadUint8()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, U8: v}
	case KindU16:
		v, err := r.ReadUint16()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, U16: v}
	case KindU32:
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, U32: v}
	case KindU64:
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, U64: v}
	case KindU128:
		v, err := r.ReadUint128()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, U128: v}
	case KindString:
		s, err := r.ReadString()
		if err != nil {
			return err
		}
		*l = Literal{Kind: kind, Str: s}
	default:
		return codec.Newf(codec.UnknownVariant, "plaintext.Literal.DecodeFrom", "unknown literal kind %d", kindByte)
	}
	return nil
}

// Member is one named entry of a Struct value, in declaration order.
type Member struct {
	Identifier string
	Value      Value
}

// Value is a plaintext: either a Literal or an ordered Struct of Members.
// This is the recursive shape referenced throughout the design as the
// worked example of the codec's tag/body recursion contract.
type Value struct {
	IsStruct bool
	Literal  Literal
	Members  []Member
}

// NewLiteral wraps a Literal as a Value.
func NewLiteral(l Literal) Value { return Value{Literal: l} }

// NewStruct wraps an ordered member list as a Value.
func NewStruct(members []Member) Value { return Value{IsStruct: true, Members: members} }

// EncodeTo writes tag 0 (literal) or tag 1 (struct) followed by the body.
// Each struct member is encoded in two steps — first to its own byte
// slice, then length-prefixed into the parent — so a reader can bound the
// member's body before recursing into it, preventing unbounded recursion on
// malformed input.
func (v Value) EncodeTo(w *codec.Writer) error {
	if !v.IsStruct {
		w.WriteUint8(0)
		return v.Literal.EncodeTo(w)
	}
	w.WriteUint8(1)
	if err := w.WriteMemberCount(len(v.Members)); err != nil {
		return err
	}
	for _, m := range v.Members {
		if err := w.WriteString(m.Identifier); err != nil {
			return err
		}
		memberBytes, err := codec.WriteLE(m.Value)
		if err != nil {
			return err
		}
		if err := w.WriteBytesLP(memberBytes); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFrom reads a Value previously written by EncodeTo.
func (v *Value) DecodeFrom(r *codec.Reader) error {
	tag, err := r.ReadUint8()
	if err != nil {
		return err
	}
	switch tag {
	case 0:
		var lit Literal
		if err := lit.DecodeFrom(r); err != nil {
			return err
		}
		*v = Value{Literal: lit}
		return nil
	case 1:
		n, err := r.ReadMemberCount()
		if err != nil {
			return err
		}
		members := make([]Member, 0, n)
		for i := 0; i < n; i++ {
			ident, err := r.ReadString()
			if err != nil {
				return err
			}
			body, err := r.ReadBytesLP()
			if err != nil {
				return err
			}
			mv, err := codec.ReadLE[Value, *Value](body)
			if err != nil {
				return err
			}
			members = append(members, Member{Identifier: ident, Value: mv})
		}
		*v = Value{IsStruct: true, Members: members}
		return nil
	default:
		return codec.Newf(codec.UnknownVariant, "plaintext.Value.DecodeFrom", "unknown plaintext tag %d", tag)
	}
}
