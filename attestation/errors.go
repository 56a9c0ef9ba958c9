package attestation

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode indicates malformed calldata.
	ErrDecode = errors.New("decode error")
	// ErrConfiguration indicates a chain id with no configured endpoint.
	ErrConfiguration = errors.New("configuration error")
	// ErrOracle indicates a failed remote read, either ownership or message building.
	ErrOracle = errors.New("oracle error")
	// ErrReplay indicates the request nonce doesn't match the forwarder's nonce.
	ErrReplay = errors.New("replay error")
)

var kinds = []error{ErrDecode, ErrConfiguration, ErrOracle, ErrReplay}

// Error attaches one of the error kinds above to an underlying cause.
// errors.Is matches both the kind and anything in the cause chain.
type Error struct {
	Kind error
	Err  error
}

// NewError returns an *Error of the given kind.
func NewError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// KindOf returns a short label for the kind of err, used in metrics and logs.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrOracle):
		return "oracle"
	case errors.Is(err, ErrReplay):
		return "replay"
	default:
		return "unknown"
	}
}

// IsKnown reports whether err carries one of the declared kinds.
func IsKnown(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
