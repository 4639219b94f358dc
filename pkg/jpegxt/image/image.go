// Package image implements spec §4.7 (C7): the frame-sequence driver
// that sits above marker parsing and the scan codec. It sequences
// frames, composes a hierarchical pyramid's differential levels,
// applies a residual frame's lossless correction in sample space, folds
// hidden-DCT refinement bits back into their base coefficients, resolves
// a deferred DNL height, and emits/consumes EOI.
//
// Grounded on original_source's frame-sequence driver (the ACCUSOFT_CODE
// / ISO_CODE hierarchical paths referenced in spec Design Note 9) for the
// pyramid composition rule, and on the teacher's own top-level sequencing
// style (pkg/dicos's dataset-level orchestration of per-element codecs,
// generalized here to per-frame codecs).
package image

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/frame"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/tonemap"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// PixelType enumerates the sample storage kinds the bitmap callback
// contract of spec §6 may hand back: "pixel_type ∈ {U8, U16, F32, F16}".
type PixelType int

const (
	PixelU8 PixelType = iota
	PixelU16
	PixelF32
	PixelF16
)

// Window describes one rectangular, component-indexed, MCU-row-aligned
// pixel window as handed out by the bitmap callback, per spec §6: "Windows
// are MCU-row aligned (default 8 lines) and component-indexed."
type Window struct {
	Component                          int
	MinY, MaxY, MinX, MaxX              int
	BytesPerRow, BytesPerPixel          int
	Type                                PixelType
	Data                                []byte
}

// BitmapSource is the encode-side half of spec §6's bitmap callback: the
// codec requests a window of source samples and releases it once
// consumed.
type BitmapSource interface {
	Request(component, minY, maxY, minX, maxX int) (Window, error)
	Release(w Window) error
}

// BitmapSink is the decode-side half: the codec requests a window to
// write reconstructed samples into and releases it once filled.
type BitmapSink interface {
	Request(component, minY, maxY, minX, maxX int) (Window, error)
	Release(w Window) error
}

// Kind distinguishes a hierarchical pyramid level's coding model, per
// spec §4.7: "a pyramid of frames, each either DCT-based (lossy
// approximation at a resolution) or lossless-differential with respect
// to the upsampled previous level."
type Kind int

const (
	KindBase Kind = iota
	KindDCTApproximation
	KindLosslessDifferential
)

// Level is one reconstructed plane of a (possibly hierarchical) frame
// sequence, at its own resolution.
type Level struct {
	Kind   Kind
	Width  int
	Height int
	Plane  []float32 // row-major, one component
}

// ComposePyramid reconstructs the final full-resolution plane from an
// ordered list of pyramid levels (lowest resolution first), per spec
// §4.7: "The driver composes the pyramid into the final reconstruction
// by summing differential frames at their resolution after upsampling."
// The base level (KindBase or the first KindDCTApproximation) seeds the
// accumulator; every subsequent KindLosslessDifferential level is
// upsampled to the target resolution and added in.
func ComposePyramid(levels []Level, targetW, targetH int) ([]float32, error) {
	if len(levels) == 0 {
		return nil, xerrors.Errf(xerrors.InvalidParameter, nil, "composepyramid: no levels")
	}
	base := levels[0]
	acc := make([]int32, base.Width*base.Height)
	for i, v := range base.Plane {
		acc[i] = int32(v)
	}
	accW, accH := base.Width, base.Height

	for _, lvl := range levels[1:] {
		if lvl.Kind != KindLosslessDifferential {
			return nil, xerrors.Errf(xerrors.MalformedStream, nil, "composepyramid: non-hierarchical build cannot consume a second non-differential level")
		}
		up := frame.Upsample(acc, accW, accH, lvl.Width, lvl.Height)
		next := make([]int32, len(up))
		for i := range up {
			next[i] = up[i] + int32(lvl.Plane[i])
		}
		acc = next
		accW, accH = lvl.Width, lvl.Height
	}

	if accW != targetW || accH != targetH {
		accI := frame.Upsample(acc, accW, accH, targetW, targetH)
		acc = accI
	}

	out := make([]float32, len(acc))
	for i, v := range acc {
		out[i] = float32(v)
	}
	return out, nil
}

// ApplyResidual sums a residual frame's decoded correction onto the base
// reconstruction in sample space (post-tone-map), per spec §4.7: "a
// second full pipeline whose output is added to the base output in
// sample space... This gives bit-exact lossless even when the base uses
// irreversible DCT."
func ApplyResidual(base, residual []float32) []float32 {
	out := make([]float32, len(base))
	for i := range base {
		out[i] = base[i] + residual[i]
	}
	return out
}

// ExtractResidual computes the encode-side residual: the exact
// difference between the true source and the base reconstruction, which
// the residual pipeline then codes losslessly.
func ExtractResidual(source, base []float32) []float32 {
	out := make([]float32, len(source))
	for i := range source {
		out[i] = source[i] - base[i]
	}
	return out
}

// HiddenDCTBits is the configured number of extra fractional bits
// carried per coefficient in a hidden-DCT frame, per spec §6
// (`hidden_dct_bits`, 0-4).
type HiddenDCTBits int

// SplitHiddenDCT widens a block's quantizer step by 2^k and separates
// each coefficient into its coarse (base-scan) value and k refinement
// bits, per spec §4.9, ready for the base scan to code the coarse value
// and a later scan to code the refinement band.
func SplitHiddenDCT(coeffs *[64]int32, k HiddenDCTBits) (coarse [64]int32, refine [64]uint32) {
	for i := range coeffs {
		c, r := tonemap.HiddenDCTSplit(coeffs[i], int(k))
		coarse[i] = c
		refine[i] = r
	}
	return coarse, refine
}

// MergeHiddenDCT reconstructs full-precision coefficients from a base
// scan's coarse values and a refinement scan's low bits.
func MergeHiddenDCT(coarse *[64]int32, refine *[64]uint32, k HiddenDCTBits) [64]int32 {
	var out [64]int32
	for i := range coarse {
		out[i] = tonemap.HiddenDCTMerge(coarse[i], refine[i], int(k))
	}
	return out
}

// ResolveHeight applies a DNL marker's declared row count to a frame
// whose SOF height was 0, per spec §3 ("H may be 0 initially and fixed
// later by a DNL marker") and Design Note 9's resolved open question: a
// DNL declaring fewer rows than already decoded is malformed.
func ResolveHeight(declaredRows, mcuRowsDecoded, mcuHeight int) (int, error) {
	alreadyDecoded := mcuRowsDecoded * mcuHeight
	if declaredRows < alreadyDecoded {
		return 0, xerrors.Errf(xerrors.MalformedStream, nil, "dnl: declared %d rows but %d MCU rows (%d lines) already decoded", declaredRows, mcuRowsDecoded, alreadyDecoded)
	}
	return declaredRows, nil
}

// DequantizeWithDeadZone is a thin bridge used by frames coding AC bands
// with the dead-zone quantizer (spec §4.3); DC (index 0) never uses the
// dead zone.
func DequantizeWithDeadZone(unquantized [64]float32, q *dct.QuantTable) [64]int32 {
	var out [64]int32
	out[0] = int32(unquantized[0]*q.Forward[0] + 0.5)
	for i := 1; i < 64; i++ {
		out[i] = dct.QuantizeDeadZone(unquantized[i], q.Forward[i])
	}
	return out
}
