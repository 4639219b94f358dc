package jpegxt

import "github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"

// ErrKind and Error are re-exported from xerrors so callers of the public
// API don't need to import the leaf package directly. xerrors exists
// separately so component packages (bitio, entropy, dct, ...) can return
// these errors without importing this top-level package and creating an
// import cycle.
type ErrKind = xerrors.Kind

type Error = xerrors.Error

const (
	ErrUnexpectedEOF    = xerrors.UnexpectedEOF
	ErrMalformedStream  = xerrors.MalformedStream
	ErrNoJPEG           = xerrors.NoJPEG
	ErrDoubleMarker     = xerrors.DoubleMarker
	ErrInvalidHuffman   = xerrors.InvalidHuffman
	ErrInvalidParameter = xerrors.InvalidParameter
	ErrOverflowParam    = xerrors.OverflowParam
	ErrPhaseError       = xerrors.PhaseError
	ErrNotInProfile     = xerrors.NotInProfile
	ErrOutOfMemory      = xerrors.OutOfMemory
)

// Errf builds a wrapped error of the given kind.
func Errf(kind ErrKind, cause error, format string, args ...any) *Error {
	return xerrors.Errf(kind, cause, format, args...)
}

// KindOf extracts the ErrKind from err, or "" if err wasn't produced by
// this module.
func KindOf(err error) ErrKind {
	return xerrors.KindOf(err)
}
