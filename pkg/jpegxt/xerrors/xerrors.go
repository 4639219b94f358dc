// Package xerrors defines the closed set of error kinds from spec §7. It
// is a leaf package (no internal imports) so every component package
// (C1-C9) can return these errors without creating an import cycle back
// through the top-level jpegxt package, which re-exports these names for
// callers of the public API.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind is one of the recoverable error categories from spec §7. Every
// codec call either succeeds or fails with exactly one Kind plus a
// human-readable detail string; none of them are fatal to the process —
// the caller may always tear the instance down and start over.
type Kind string

// Error lets a bare Kind value be used directly as a target for
// errors.Is, e.g. errors.Is(err, xerrors.MalformedStream).
func (k Kind) Error() string { return string(k) }

const (
	UnexpectedEOF    Kind = "unexpected_eof"     // byte stream ended inside a required segment
	MalformedStream  Kind = "malformed_stream"   // segment length mismatch, missing marker, reserved marker
	NoJPEG           Kind = "no_jpeg"            // SOI not found at stream start
	DoubleMarker     Kind = "double_marker"      // a unique marker (SOI, EOI) appears twice
	InvalidHuffman   Kind = "invalid_huffman"    // no code matched within 16 bits
	InvalidParameter Kind = "invalid_parameter"  // user config out of range
	OverflowParam    Kind = "overflow_parameter" // numeric parameter exceeds its bit width
	PhaseError       Kind = "phase_error"        // two-pass optimization produced inconsistent counts
	NotInProfile     Kind = "not_in_profile"     // legal JPEG, disallowed by the selected profile
	OutOfMemory      Kind = "out_of_memory"      // allocator returned nil
)

// Error wraps a Kind with the detail that occasioned it. errors.Is
// against a bare Kind value (via Error.Is) matches any Error wrapping
// that kind.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return nil
}

// Is lets errors.Is(err, xerrors.MalformedStream) work directly against a
// bare Kind, without the caller needing to know about *Error.
func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return k == e.Kind
	}
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// Errf builds an *Error with a formatted detail, wrapping cause (if
// non-nil) so errors.Is/errors.As still reach the underlying failure.
func Errf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the Kind from err, or "" if err wasn't produced by this
// package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
