// Package dct implements spec §4.3 (C3): the forward/inverse block
// transform plus quantization. Two kernels are provided, selected by the
// frame's ReversibleDCT flag per the profile registry: the classical
// floating-point AA&N (Arai-Agui-Nakajima) 8x8 DCT used by lossy frames,
// and an integer lifting DCT used when the transform must be perfectly
// invertible (residual/hidden-DCT coding, spec §4.7).
//
// Grounded on original_source/dct/fdct.cpp's FDCT::TransformBlock and
// FDCT::InverseTransformBlock (the row-then-column AA&N butterfly with
// the same named temporaries), adapted from the teacher's float64
// convention to float32 working storage consistent with the rest of this
// module's numeric style.
package dct

// dctScale is the AA&N row/column scale factor table, indexed by
// frequency position 0..7.
var dctScale = [8]float32{
	1.0, 1.387039845, 1.306562965, 1.175875602,
	1.0, 0.785694958, 0.541196100, 0.275899379,
}

const invSqrt2 = 0.707106781

// QuantTable holds the per-coefficient forward and inverse quantization
// scale, precomputed from a raw 8x8 quantization table (zig-zag order is
// the marker layer's concern; this package always works in natural
// row-major 8x8 order).
type QuantTable struct {
	Forward [64]float32 // combines 1/8 DCT normalization with 1/Q
	Inverse [64]float32 // combines 1/8 DCT normalization with Q
	Raw     [64]uint16  // the step sizes NewQuantTable was built from, for DQT emission
}

// NewQuantTable derives forward/inverse scale factors from a raw 8x8
// table of quantizer step sizes, per fdct.cpp's DefineQuant: each entry
// folds in the AA&N row/column scale so TransformBlock's raw butterfly
// output lands directly on quantized coefficients.
func NewQuantTable(raw [64]uint16) *QuantTable {
	q := &QuantTable{Raw: raw}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			i := y*8 + x
			scale := dctScale[x] * dctScale[y]
			step := float32(raw[i])
			q.Forward[i] = 0.125 / (step * scale)
			q.Inverse[i] = 0.125 * step * scale
		}
	}
	return q
}

// ForwardBlock runs the float AA&N FDCT over an 8x8 block of samples
// (already level-shifted by the caller, spec §4.3's "DC level shift
// precedes transform") and quantizes the result into coefficients in
// natural (row, then column) order.
func ForwardBlock(samples *[64]int32, q *QuantTable) [64]int32 {
	var d [64]float32
	var out [64]int32

	// Rows.
	for r := 0; r < 8; r++ {
		s := samples[r*8 : r*8+8]
		row := fdctRow(
			float32(s[0]), float32(s[1]), float32(s[2]), float32(s[3]),
			float32(s[4]), float32(s[5]), float32(s[6]), float32(s[7]),
		)
		copy(d[r*8:r*8+8], row[:])
	}

	// Columns.
	for c := 0; c < 8; c++ {
		col := fdctRow(
			d[0*8+c], d[1*8+c], d[2*8+c], d[3*8+c],
			d[4*8+c], d[5*8+c], d[6*8+c], d[7*8+c],
		)
		for r := 0; r < 8; r++ {
			i := r*8 + c
			out[i] = quantize(col[r], q.Forward[i])
		}
	}
	return out
}

// fdctRow is the 1-D AA&N butterfly shared by the row and column passes.
func fdctRow(s0, s1, s2, s3, s4, s5, s6, s7 float32) [8]float32 {
	tmp0 := s0 + s7
	tmp7 := s0 - s7
	tmp1 := s1 + s6
	tmp6 := s1 - s6
	tmp2 := s2 + s5
	tmp5 := s2 - s5
	tmp3 := s3 + s4
	tmp4 := s3 - s4

	tmp10 := tmp0 + tmp3
	tmp13 := tmp0 - tmp3
	tmp11 := tmp1 + tmp2
	tmp12 := tmp1 - tmp2

	var out [8]float32
	out[0] = tmp10 + tmp11
	out[4] = tmp10 - tmp11

	z1 := (tmp12 + tmp13) * invSqrt2
	out[2] = tmp13 + z1
	out[6] = tmp13 - z1

	t10 := tmp4 + tmp5
	t11 := tmp5 + tmp6
	t12 := tmp6 + tmp7

	z5 := (t10 - t12) * 0.382683433
	z2 := 0.541196100*t10 + z5
	z4 := 1.306562965*t12 + z5
	z3 := t11 * invSqrt2

	z11 := tmp7 + z3
	z13 := tmp7 - z3

	out[5] = z13 + z2
	out[3] = z13 - z2
	out[1] = z11 + z4
	out[7] = z11 - z4
	return out
}

func quantize(v float32, scale float32) int32 {
	p := v * scale
	if p >= 0 {
		return int32(p + 0.5)
	}
	return int32(p - 0.5)
}

// InverseBlock reconstructs samples from quantized coefficients,
// grounded on fdct.cpp's FDCT::InverseTransformBlock (columns-then-rows
// ordering, the IAA&N butterfly with the 1.414213562/1.847759065 constants).
func InverseBlock(coeffs *[64]int32, q *QuantTable) [64]int32 {
	var dequant [64]float32
	for i := range dequant {
		dequant[i] = float32(coeffs[i]) * q.Inverse[i]
	}

	var cols [64]float32
	for c := 0; c < 8; c++ {
		row := idctRow(
			dequant[0*8+c], dequant[1*8+c], dequant[2*8+c], dequant[3*8+c],
			dequant[4*8+c], dequant[5*8+c], dequant[6*8+c], dequant[7*8+c],
		)
		for r := 0; r < 8; r++ {
			cols[r*8+c] = row[r]
		}
	}

	var out [64]int32
	for r := 0; r < 8; r++ {
		row := idctRow(
			cols[r*8+0], cols[r*8+1], cols[r*8+2], cols[r*8+3],
			cols[r*8+4], cols[r*8+5], cols[r*8+6], cols[r*8+7],
		)
		for c := 0; c < 8; c++ {
			out[r*8+c] = roundSample(row[c])
		}
	}
	return out
}

func idctRow(c0, c1, c2, c3, c4, c5, c6, c7 float32) [8]float32 {
	tmp0 := c0
	tmp1 := c2
	tmp2 := c4
	tmp3 := c6

	tmp10 := tmp0 + tmp2
	tmp11 := tmp0 - tmp2
	tmp13 := tmp1 + tmp3
	tmp12 := (tmp1-tmp3)*1.414213562 - tmp13

	tmp0 = tmp10 + tmp13
	tmp3 = tmp10 - tmp13
	tmp1 = tmp11 + tmp12
	tmp2 = tmp11 - tmp12

	tmp4 := c1
	tmp5 := c3
	tmp6 := c5
	tmp7 := c7

	z13 := tmp6 + tmp5
	z10 := tmp6 - tmp5
	z11 := tmp4 + tmp7
	z12 := tmp4 - tmp7

	tmp7 = z11 + z13
	tmp11 = (z11 - z13) * 1.414213562
	z5 := (z10 + z12) * 1.847759065
	tmp10 = 1.082392200*z12 - z5
	tmp12 = -2.613125930*z10 + z5

	tmp6 = tmp12 - tmp7
	tmp5 = tmp11 - tmp6
	tmp4 = tmp10 + tmp5

	var out [8]float32
	out[0] = tmp0 + tmp7
	out[7] = tmp0 - tmp7
	out[1] = tmp1 + tmp6
	out[6] = tmp1 - tmp6
	out[2] = tmp2 + tmp5
	out[5] = tmp2 - tmp5
	out[4] = tmp3 + tmp4
	out[3] = tmp3 - tmp4
	return out
}

func roundSample(v float32) int32 {
	// No further normalization here: the 1/8 scale is already folded
	// into QuantTable.Inverse, matching fdct.cpp's InverseTransformBlock
	// which writes the butterfly output directly to target.
	if v >= 0 {
		return int32(v + 0.5)
	}
	return int32(v - 0.5)
}
