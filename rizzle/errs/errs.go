// Package errs defines the error kinds surfaced by the rizzle client. Every failure returned by the session,
// gateway and stream layers carries one of these kinds, so callers can branch with errors.Is without parsing text.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure.
type Kind int

const (
	// Transport is a network or I/O failure. The core never retries it.
	Transport Kind = iota + 1
	// Schema is an RPC response that is missing or has malformed fields.
	Schema
	// Authentication is a rejected account token, or a token refresh that did not help.
	Authentication
	// Decode is a media stream that was truncated or corrupted beyond what the decryptor can resolve.
	Decode
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport error"
	case Schema:
		return "schema error"
	case Authentication:
		return "authentication error"
	case Decode:
		return "decode error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its own kind.
var (
	ErrTransport      = errors.New(Transport.String())
	ErrSchema         = errors.New(Schema.String())
	ErrAuthentication = errors.New(Authentication.String())
	ErrDecode         = errors.New(Decode.String())
)

// Error is a classified failure. Op names the operation that failed (an RPC method, "stream read", ...).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case Transport:
		return ErrTransport
	case Schema:
		return ErrSchema
	case Authentication:
		return ErrAuthentication
	case Decode:
		return ErrDecode
	}
	return nil
}

// New builds a classified error with a formatted cause.
func New(kind Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
