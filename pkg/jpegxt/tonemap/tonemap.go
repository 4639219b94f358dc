// Package tonemap implements spec §4.9 (C9): tone-mapping LUT
// construction and inversion, plus the hidden-DCT refinement bit
// placement used by the residual/hidden-DCT machinery of §4.7.
//
// Grounded on original_source/cmd/tmo.cpp's InvertTable: the "walk from
// the high end down" algorithm, its flat-region midpoint fill, and its
// two-tap endpoint stabilizer are ported line-for-line in intent (not
// byte-for-byte, since the original indexes a full 16-bit table and this
// port is written against whatever LUT size the configured precision
// calls for).
package tonemap

import "github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"

// LUT is a monotone lookup table mapping one sample range to another,
// per spec §3: "2^16 -> 2^16 monotone mapping."
type LUT struct {
	Table []uint32 // len == inMax+1
}

// NewLUT wraps a precomputed table.
func NewLUT(table []uint32) *LUT { return &LUT{Table: table} }

// Apply maps one input sample, clamping out-of-range input.
func (l *LUT) Apply(v int32) int32 {
	if v < 0 {
		v = 0
	}
	if int(v) >= len(l.Table) {
		v = int32(len(l.Table) - 1)
	}
	return int32(l.Table[v])
}

// Invert builds the inverse of a forward LUT (HDR->LDR becomes LDR->HDR,
// or vice versa), per spec §4.9: "The inverse construction walks the
// forward LUT from the high end down, filling each output bin with the
// midpoint of its preimage interval; flat regions of the forward map
// expand to interpolated runs; the endpoints are smoothed with a two-tap
// stabilizer."
func Invert(forward []uint32, outBits int) (*LUT, error) {
	if outBits < 1 || outBits > 16 {
		return nil, xerrors.Errf(xerrors.InvalidParameter, nil, "outBits %d out of [1,16]", outBits)
	}
	inMax := int32(len(forward) - 1)
	outMax := int32(1)<<outBits - 1

	output := make([]int32, outMax+1)
	filled := make([]bool, outMax+1)

	last := clampTo(forward[inMax], outMax)
	if last < ((outMax+1)*3)>>2 {
		last = outMax
	}
	lastAnchor := inMax
	lastFilled := false
	lastJ := inMax

	for j := inMax; j >= 0; j-- {
		current := clampTo(forward[j], outMax)
		if current == last {
			mid := (lastAnchor + j) >> 1
			if mid >= 0 && mid <= outMax {
				output[last] = mid
				filled[last] = true
			}
			lastFilled = true
		} else {
			var mid int32
			if last > current {
				mid = ((current + last + 1) >> 1) - 1
			} else {
				mid = ((current + last - 1) >> 1) - 1
			}
			for last != mid {
				if !lastFilled {
					output[last] = lastJ
					filled[last] = true
				}
				if last > mid {
					last--
				} else {
					last++
				}
				lastFilled = false
			}
			for last != current {
				if !lastFilled {
					output[last] = j
					filled[last] = true
				}
				if last > current {
					last--
				} else {
					last++
				}
				lastFilled = false
			}
			lastAnchor = j
		}
		lastJ = j
		last = current
	}
	if !lastFilled && last >= 0 && last <= outMax {
		output[last] = lastJ
		filled[last] = true
	}

	stabilizeEndpoints(output, outMax)

	out := make([]uint32, outMax+1)
	for i, v := range output {
		if v < 0 {
			v = 0
		}
		out[i] = uint32(v)
	}
	return &LUT{Table: out}, nil
}

func clampTo(v uint32, max int32) int32 {
	iv := int32(v)
	if iv > max {
		return max
	}
	if iv < 0 {
		return 0
	}
	return iv
}

// stabilizeEndpoints clips an overly steep first/last jump relative to
// its neighbor's slope, per tmo.cpp's end-of-table fixup, avoiding
// visible artifacts from a near-zero-slope region at the extremes of the
// forward map.
func stabilizeEndpoints(output []int32, outMax int32) {
	if outMax <= 4 {
		return
	}
	i1, i2, i3 := output[0], output[1], output[2]
	d1 := absDiff(i1, i2)
	d2 := absDiff(i3, i2)
	if d1 > 2*d2 {
		output[0] = 2*i2 - i3
	}

	i1, i2, i3 = output[outMax], output[outMax-1], output[outMax-2]
	d1 = absDiff(i1, i2)
	d2 = absDiff(i3, i2)
	if d1 > 2*d2 {
		output[outMax] = 2*i2 - i3
	}

	forceMonotone(output)
}

func absDiff(a, b int32) int32 {
	if a > b {
		return a - b
	}
	return b - a
}

// forceMonotone clamps each step to the previous value when the
// stabilizer pass left a local non-monotonicity, per spec §4.9: "When
// monotone after smoothing fails, the algorithm forces monotonicity by
// clamping each step to the previous value."
func forceMonotone(output []int32) {
	for i := 1; i < len(output); i++ {
		if output[i] < output[i-1] {
			output[i] = output[i-1]
		}
	}
}

// HiddenDCTSplit widens a quantizer step by 2^k bits and splits a
// quantized coefficient into its coarse (base-scan) value and the k
// low-order refinement bits, per spec §4.9: "the kernel widens the quant
// step by 2^k and stores the k low bits into a parallel refinement band
// coded as a separate, later scan." The coarse value is coeff >> k
// (rounded toward minus infinity) and the refinement is the k low bits
// of coeff in two's complement, so a negative coefficient smaller in
// magnitude than 2^k keeps its sign in the coarse value.
func HiddenDCTSplit(coeff int32, k int) (coarse int32, refinement uint32) {
	if k <= 0 {
		return coeff, 0
	}
	return coeff >> k, uint32(coeff) & (1<<k - 1)
}

// HiddenDCTMerge reconstructs a coefficient from its coarse value and
// refinement bits, the inverse of HiddenDCTSplit.
func HiddenDCTMerge(coarse int32, refinement uint32, k int) int32 {
	if k <= 0 {
		return coarse
	}
	return coarse<<k | int32(refinement)
}
