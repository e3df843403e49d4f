// Package swaperr defines the error taxonomy shared by every component of
// the swap engine: InvalidArgument, InsufficientFunds, ProviderError, and
// ProtocolError.
package swaperr

import (
	"errors"
	"fmt"
)

// Kind is one of the four error kinds the engine ever returns.
type Kind int

const (
	// InvalidArgument covers malformed addresses, missing buyer pubkeys on
	// P2SH inputs, unknown chains, and PSBT schema violations.
	InvalidArgument Kind = iota
	// InsufficientFunds covers payment or buyer-total shortfalls. A
	// selection exhausted by inscription-taint filtering is reported as
	// InsufficientFunds with Tainted set, rather than a distinct kind.
	InsufficientFunds
	// ProviderError covers transient RPC/indexer/fee-oracle failures.
	ProviderError
	// ProtocolError covers node-side finalization or mempool rejection.
	ProtocolError
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InsufficientFunds:
		return "insufficient_funds"
	case ProviderError:
		return "provider_error"
	case ProtocolError:
		return "protocol_error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind Kind
	// Tainted is set on an InsufficientFunds error from a selection scan
	// that skipped at least one candidate UTXO for being inscription-bearing.
	Tainted bool
	// Have and Need carry the shortfall amounts for InsufficientFunds,
	// surfaced verbatim in the diagnostic message.
	Have, Need int64

	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error carrying no underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error wrapping an underlying cause (typically a
// provider transport failure).
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// InsufficientFundsf builds an InsufficientFunds error carrying the exact
// shortfall: the amount available and the amount required.
func InsufficientFundsf(have, need int64, format string, args ...interface{}) *Error {
	return &Error{
		Kind: InsufficientFunds,
		Have: have,
		Need: need,
		msg:  fmt.Sprintf(format, args...),
	}
}

// Tainted builds an InsufficientFunds error whose root cause was an
// exhausted inscription-taint scan rather than a plain lack of funds.
func Tainted(have, need int64, format string, args ...interface{}) *Error {
	e := InsufficientFundsf(have, need, format, args...)
	e.Tainted = true
	return e
}

// Of reports whether err (or something it wraps) is a *Error of the given
// Kind.
func Of(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
