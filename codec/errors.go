package codec

import "fmt"

// Kind is the closed taxonomy of errors this module can surface. It is
// shared by the codec package itself and by datamap/finalize, which reuse
// RawStore and InvalidState for protocol-level failures that have nothing to
// do with byte encoding.
type Kind int

const (
	// Serialize is returned when encoding a value to bytes fails.
	Serialize Kind = iota
	// Deserialize is returned when decoding bytes into a value fails.
	Deserialize
	// RawStore is returned when the underlying key-value engine reports a
	// failure.
	RawStore
	// InvalidState is returned on protocol misuse, e.g. calling Finalize
	// while a batch is already in progress.
	InvalidState
	// OversizedContainer is returned when a length-prefixed container
	// (struct member count, body length) exceeds the format's width.
	OversizedContainer
	// UnknownVariant is returned when a decoder encounters a tag it does
	// not recognize.
	UnknownVariant
)

// String returns the taxonomy name.
func (k Kind) String() string {
	switch k {
	case Serialize:
		return "serialize"
	case Deserialize:
		return "deserialize"
	case RawStore:
		return "raw_store"
	case InvalidState:
		return "invalid_state"
	case OversizedContainer:
		return "oversized_container"
	case UnknownVariant:
		return "unknown_variant"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error type this module returns, carrying its Kind so
// callers can branch with errors.As instead of matching sentinel identity.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Newf constructs an *Error with a formatted wrapped error.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap constructs an *Error around an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
