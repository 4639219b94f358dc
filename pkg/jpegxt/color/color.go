// Package color implements spec §4.4 (C4): the four color transform
// modes selectable at frame configuration (None, YCbCr, LS-RCT, and a
// free-form 3x3 matrix), plus the tone-mapping LUT hook that wraps the
// matrix for HDR/XYZ workflows. The transformer is stateless and always
// operates on one MCU-width row at a time, per spec §4.4.
package color

import "github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"

// Mode selects which transform a frame applies.
type Mode int

const (
	ModeNone Mode = iota
	ModeYCbCr
	ModeLSRCT
	ModeMatrix
)

// fracBits is the YCbCr fixpoint precision, per spec §4.4: "fixpoint with
// 13 fractional bits".
const fracBits = 13
const fracOne = 1 << fracBits

// YCbCr coefficients, ITU-R BT.601 full range, scaled to fracBits
// fractional bits.
const (
	kr = 0.299
	kg = 0.587
	kb = 0.114
)

var (
	cY  = [3]int32{fix(kr), fix(kg), fix(kb)}
	cCb = [3]int32{fix(-kr / (2 * (1 - kb))), fix(-kg / (2 * (1 - kb))), fix(0.5)}
	cCr = [3]int32{fix(0.5), fix(-kg / (2 * (1 - kr))), fix(-kb / (2 * (1 - kr)))}

	iCr  = fix(2 * (1 - kr))
	iCb  = fix(2 * (1 - kb))
	iG1  = fix(2 * (1 - kr) * kr / kg)
	iG2  = fix(2 * (1 - kb) * kb / kg)
)

func fix(v float64) int32 { return int32(v*fracOne + sign(v)*0.5) }

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Transformer applies one of the four color transform modes to rows of
// sample triplets (or, for the free-form matrix, N-tuples).
type Transformer struct {
	mode   Mode
	matrix [9]float64 // forward 3x3, row-major, ModeMatrix only
	inv    [9]float64 // inverse 3x3
	halfPt int32       // 2^(P-1) half-sample offset for chroma centering
}

// NewYCbCr returns a Transformer for the full-range BT.601 matrix,
// centering chroma at the half-sample point for a P-bit sample depth
// (spec §4.4: "a half-chroma offset of 2^(P-1)").
func NewYCbCr(precision int) *Transformer {
	return &Transformer{mode: ModeYCbCr, halfPt: 1 << (precision - 1)}
}

// NewLSRCT returns a Transformer applying JPEG-LS part 2's reversible
// three-tap color transform. Grounded on the teacher's JPEG 2000 RCT
// (pkg/compress/jpeg2k/rct.go's ForwardRCT/InverseRCT), which implements
// the same (R+2G+B)>>2, B-G, R-G construction; LS-RCT additionally wraps
// the two difference channels modulo the sample range (spec §4.4:
// "reversible three-tap with modular wraparound").
func NewLSRCT() *Transformer { return &Transformer{mode: ModeLSRCT} }

// NewMatrix returns a Transformer for an arbitrary configured 3x3
// forward/inverse pair, used for XYZ/HDR workflows (spec §4.4).
func NewMatrix(forward, inverse [9]float64) *Transformer {
	return &Transformer{mode: ModeMatrix, matrix: forward, inv: inverse}
}

// NewNone returns a pass-through Transformer.
func NewNone() *Transformer { return &Transformer{mode: ModeNone} }

// Mode reports the configured transform mode.
func (t *Transformer) Mode() Mode { return t.mode }

// Forward transforms one row of interleaved component samples (c0, c1,
// c2, ... repeated per pixel) from the source color space into the
// coded space. comps must be 3 for YCbCr/LSRCT/Matrix.
func (t *Transformer) Forward(row []int32, comps int) error {
	switch t.mode {
	case ModeNone:
		return nil
	case ModeYCbCr:
		return t.forwardYCbCr(row, comps)
	case ModeLSRCT:
		return t.forwardLSRCT(row, comps)
	case ModeMatrix:
		return t.forwardMatrix(row, comps)
	default:
		return xerrors.Errf(xerrors.InvalidParameter, nil, "unknown color mode %d", t.mode)
	}
}

// Inverse undoes Forward, reconstructing the source color space.
func (t *Transformer) Inverse(row []int32, comps int) error {
	switch t.mode {
	case ModeNone:
		return nil
	case ModeYCbCr:
		return t.inverseYCbCr(row, comps)
	case ModeLSRCT:
		return t.inverseLSRCT(row, comps)
	case ModeMatrix:
		return t.inverseMatrix(row, comps)
	default:
		return xerrors.Errf(xerrors.InvalidParameter, nil, "unknown color mode %d", t.mode)
	}
}

func (t *Transformer) forwardYCbCr(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "YCbCr requires 3 components, got %d", comps)
	}
	for i := 0; i+2 < len(row); i += 3 {
		r, g, b := row[i], row[i+1], row[i+2]
		y := (cY[0]*r + cY[1]*g + cY[2]*b + fracOne/2) >> fracBits
		cb := ((cCb[0]*r + cCb[1]*g + cCb[2]*b) >> fracBits) + t.halfPt
		cr := ((cCr[0]*r + cCr[1]*g + cCr[2]*b) >> fracBits) + t.halfPt
		row[i], row[i+1], row[i+2] = y, cb, cr
	}
	return nil
}

func (t *Transformer) inverseYCbCr(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "YCbCr requires 3 components, got %d", comps)
	}
	for i := 0; i+2 < len(row); i += 3 {
		y, cb, cr := row[i], row[i+1]-t.halfPt, row[i+2]-t.halfPt
		r := y + ((iCr * cr) >> fracBits)
		b := y + ((iCb * cb) >> fracBits)
		g := y - ((iG1*cr + iG2*cb) >> fracBits)
		row[i], row[i+1], row[i+2] = r, g, b
	}
	return nil
}

// forwardLSRCT applies the reversible (R+2G+B)>>2, B-G, R-G transform,
// then wraps the two chroma-like difference channels modulo the sample
// range so inverse reconstruction is exact even across the wraparound
// boundary (JPEG-LS part 2's modular RCT, as opposed to JPEG 2000's
// unwrapped RCT in rct.go).
func (t *Transformer) forwardLSRCT(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "LS-RCT requires 3 components, got %d", comps)
	}
	const mod = 1 << 16
	for i := 0; i+2 < len(row); i += 3 {
		r, g, b := row[i], row[i+1], row[i+2]
		y := (r + 2*g + b) >> 2
		cb := wrap(b-g, mod)
		cr := wrap(r-g, mod)
		row[i], row[i+1], row[i+2] = y, cb, cr
	}
	return nil
}

func (t *Transformer) inverseLSRCT(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "LS-RCT requires 3 components, got %d", comps)
	}
	const mod = 1 << 16
	for i := 0; i+2 < len(row); i += 3 {
		y, cb, cr := row[i], row[i+1], row[i+2]
		if cb >= mod/2 {
			cb -= mod
		}
		if cr >= mod/2 {
			cr -= mod
		}
		g := y - ((cb + cr) >> 2)
		r := wrap(cr+g, mod)
		b := wrap(cb+g, mod)
		row[i], row[i+1], row[i+2] = r, g, b
	}
	return nil
}

func wrap(v, mod int32) int32 {
	v %= mod
	if v < 0 {
		v += mod
	}
	return v
}

func (t *Transformer) forwardMatrix(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "matrix transform requires 3 components, got %d", comps)
	}
	for i := 0; i+2 < len(row); i += 3 {
		a, b, c := float64(row[i]), float64(row[i+1]), float64(row[i+2])
		row[i] = roundf(t.matrix[0]*a + t.matrix[1]*b + t.matrix[2]*c)
		row[i+1] = roundf(t.matrix[3]*a + t.matrix[4]*b + t.matrix[5]*c)
		row[i+2] = roundf(t.matrix[6]*a + t.matrix[7]*b + t.matrix[8]*c)
	}
	return nil
}

func (t *Transformer) inverseMatrix(row []int32, comps int) error {
	if comps != 3 {
		return xerrors.Errf(xerrors.InvalidParameter, nil, "matrix transform requires 3 components, got %d", comps)
	}
	for i := 0; i+2 < len(row); i += 3 {
		a, b, c := float64(row[i]), float64(row[i+1]), float64(row[i+2])
		row[i] = roundf(t.inv[0]*a + t.inv[1]*b + t.inv[2]*c)
		row[i+1] = roundf(t.inv[3]*a + t.inv[4]*b + t.inv[5]*c)
		row[i+2] = roundf(t.inv[6]*a + t.inv[7]*b + t.inv[8]*c)
	}
	return nil
}

func roundf(v float64) int32 {
	if v >= 0 {
		return int32(v + 0.5)
	}
	return int32(v - 0.5)
}

// ChannelLUT is a single-channel lookup applied immediately before
// (premap) or after (postmap) the matrix transform, per spec §4.4:
// "Tone-mapping LUTs, when present, apply before/after the matrix with
// identity, linear, or LUT variants on each channel independently."
type ChannelLUT struct {
	Identity bool
	Scale    int32 // used when Table is nil and Identity is false (linear variant)
	Table    []int32
}

// Apply maps one sample through the channel LUT.
func (l *ChannelLUT) Apply(v int32) int32 {
	if l == nil || l.Identity {
		return v
	}
	if l.Table != nil {
		if v < 0 {
			v = 0
		}
		if int(v) >= len(l.Table) {
			v = int32(len(l.Table) - 1)
		}
		return l.Table[v]
	}
	return v * l.Scale
}

// PreMap applies per-channel LUTs to a row before Forward runs.
func PreMap(row []int32, comps int, luts []*ChannelLUT) {
	for i := 0; i+comps-1 < len(row); i += comps {
		for c := 0; c < comps; c++ {
			if c < len(luts) {
				row[i+c] = luts[c].Apply(row[i+c])
			}
		}
	}
}

// PostMap applies per-channel LUTs to a row after Inverse runs.
func PostMap(row []int32, comps int, luts []*ChannelLUT) {
	PreMap(row, comps, luts)
}
