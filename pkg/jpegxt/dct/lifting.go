package dct

// Reversible integer DCT via lifting steps, used whenever a frame carries
// the ReversibleDCT profile flag (residual/hidden-DCT coding, spec §4.7,
// and the Lossless frame type's optional DCT-domain residual layer).
//
// Grounded on original_source/dct/liftingdct.cpp's LiftingDCT, itself an
// implementation of Plonka & Tasche's "Integer DCT-II by Lifting Steps".
// Every multiply-by-irrational-constant in the original is a shift-add
// sequence approximating a fixed-point constant with 12 fractional bits
// (FRACT_BITS); the constants below are those shift-add sequences folded
// into single integers, preserving bit-exact behavior while reading as
// ordinary fixed-point multiplies. Every step here is a lifting step of
// the form y = x + round(k*z) with z held fixed, which is exactly
// invertible by x = y - round(k*z) — this is what makes the transform
// reversible in integer arithmetic despite the irrational rotation angles
// it approximates.

const fractBits = 12
const fractHalf = 1 << (fractBits - 1)

func pround(t int64) int64 {
	return (t + fractHalf) >> fractBits
}

func pmulTan1(x int64) int64 { return pround(403 * x) }
func pmulTan2(x int64) int64 { return pround(815 * x) }
func pmulTan3(x int64) int64 { return pround(1243 * x) }
func pmulTan4(x int64) int64 { return pround(1697 * x) }
func pmulSin1(x int64) int64 { return pround(799 * x) }
func pmulSin2(x int64) int64 { return pround(1567 * x) }
func pmulSin3(x int64) int64 { return pround(2276 * x) }
func pmulSin4(x int64) int64 { return pround(2896 * x) }

// liftingForward1D runs the forward 8-point lifting DCT-II over one row
// or column, mirroring liftingdct.cpp's TransformBlock inner loop body
// (the rotation cascade through the bold-Z vectors to the final B_8
// output permutation).
func liftingForward1D(s0, s1, s2, s3, s4, s5, s6, s7 int64) [8]int64 {
	x0, x4 := s0, s7
	x0 += pmulTan4(x4)
	x4 -= pmulSin4(x0)
	x0 += pmulTan4(x4)
	x4 = -x4

	x1, x5 := s1, s6
	x1 += pmulTan4(x5)
	x5 -= pmulSin4(x1)
	x1 += pmulTan4(x5)
	x5 = -x5

	x2, x6 := s2, s5
	x2 += pmulTan4(x6)
	x6 -= pmulSin4(x2)
	x2 += pmulTan4(x6)
	x6 = -x6

	x3, x7 := s3, s4
	x3 += pmulTan4(x7)
	x7 -= pmulSin4(x3)
	x3 += pmulTan4(x7)
	x7 = -x7

	zb0 := x0 + pmulTan4(x3)
	zb2 := x3 - pmulSin4(zb0)
	zb0 += pmulTan4(zb2)
	zb2 = -zb2

	zb1 := x1 + pmulTan4(x2)
	zb3 := x2 - pmulSin4(zb1)
	zb1 += pmulTan4(zb3)
	zb3 = -zb3

	z00 := pmulTan1(x7) + x4
	z01 := pmulTan3(x6) + x5
	z10 := -pmulSin1(z00) + x7
	z11 := -pmulSin3(z01) + x6
	z20 := pmulTan1(z10) + z00
	z21 := pmulTan3(z11) + z01

	zc0 := z20 + pmulTan4(z21)
	zc1 := z21 - pmulSin4(zc0)
	zc0 += pmulTan4(zc1)
	zc1 = -zc1

	zc3 := z11 + pmulTan4(z10)
	zc2 := z10 - pmulSin4(zc3)
	zc3 += pmulTan4(zc2)
	zc2 = -zc2

	z00 = pmulTan4(zb1) + zb0
	z01 = pmulTan2(zb3) + zb2
	z10 = -pmulSin4(z00) + zb1
	z11 = -pmulSin2(z01) + zb3
	z20 = pmulTan4(z10) + z00
	z21 = pmulTan2(z11) + z01

	z0 := pmulTan4(zc3) + zc1
	z1 := -pmulSin4(z0) + zc3
	x45 := pmulTan4(z1) + z0

	return [8]int64{z20, zc0, z21, -z1, -z10, x45, -z11, zc2}
}

// liftingInverse1D is the exact inverse of liftingForward1D, undoing each
// lifting step in reverse order, mirroring InverseTransformBlock.
func liftingInverse1D(c0, c1, c2, c3, c4, c5, c6, c7 int64) [8]int64 {
	z20, zc0, z21 := c0, c1, c2
	z1 := -c3
	z10 := -c4
	x45 := c5
	z11 := -c6
	zc2 := c7

	z0 := x45 - pmulTan4(z1)
	zc3 := z1 + pmulSin4(z0)
	zc1 := z0 - pmulTan4(zc3)

	z00 := z20 - pmulTan4(z10)
	z01 := z21 - pmulTan2(z11)
	zb1 := z10 + pmulSin4(z00)
	zb3 := z11 + pmulSin2(z01)
	zb0 := z00 - pmulTan4(zb1)
	zb2 := z01 - pmulTan2(zb3)

	zc1 = -zc1
	zc0 -= pmulTan4(zc1)
	z21 = zc1 + pmulSin4(zc0)
	z20 = zc0 - pmulTan4(z21)

	zc2 = -zc2
	zc3 -= pmulTan4(zc2)
	z10 = zc2 + pmulSin4(zc3)
	z11 = zc3 - pmulTan4(z10)

	z00 = z20 - pmulTan1(z10)
	z01 = z21 - pmulTan3(z11)
	x7 := z10 + pmulSin1(z00)
	x6 := z11 + pmulSin3(z01)
	x4 := z00 - pmulTan1(x7)
	x5 := z01 - pmulTan3(x6)

	zb2 = -zb2
	zb0 -= pmulTan4(zb2)
	x3 := zb2 + pmulSin4(zb0)
	x0 := zb0 - pmulTan4(x3)

	zb3 = -zb3
	zb1 -= pmulTan4(zb3)
	x2 := zb3 + pmulSin4(zb1)
	x1 := zb1 - pmulTan4(x2)

	x4 = -x4
	x0 -= pmulTan4(x4)
	x4 += pmulSin4(x0)
	x0 -= pmulTan4(x4)

	x5 = -x5
	x1 -= pmulTan4(x5)
	x5 += pmulSin4(x1)
	x1 -= pmulTan4(x5)

	x6 = -x6
	x2 -= pmulTan4(x6)
	x6 += pmulSin4(x2)
	x2 -= pmulTan4(x6)

	x7 = -x7
	x3 -= pmulTan4(x7)
	x7 += pmulSin4(x3)
	x3 -= pmulTan4(x7)

	return [8]int64{x0, x1, x2, x3, x7, x6, x5, x4}
}

// LiftingQuantTable holds the integer forward/inverse scale multipliers
// for the reversible transform, derived the same way as the float
// QuantTable but kept separate because the reversible path must never
// round through floating point.
type LiftingQuantTable struct {
	Forward [64]int64
	Inverse [64]int64
	DeadZone bool // when true, quantize rounds toward zero instead of nearest
}

// NewLiftingQuantTable derives integer quantizer multipliers, scaled by
// fractBits so ForwardLiftingBlock/InverseLiftingBlock stay in integer
// arithmetic throughout, per liftingdct.cpp's m_plInvQuant/m_plQuant.
func NewLiftingQuantTable(raw [64]uint16, deadZone bool) *LiftingQuantTable {
	q := &LiftingQuantTable{DeadZone: deadZone}
	for i, step := range raw {
		if step == 0 {
			step = 1
		}
		q.Forward[i] = (1 << fractBits) / int64(step)
		q.Inverse[i] = int64(step)
	}
	return q
}

// ForwardLiftingBlock runs the reversible lifting DCT over an 8x8 block
// of preshifted samples and quantizes the natural-order coefficients.
func ForwardLiftingBlock(samples *[64]int32, q *LiftingQuantTable) [64]int32 {
	var cols [64]int64
	for c := 0; c < 8; c++ {
		col := liftingForward1D(
			int64(samples[0*8+c]), int64(samples[1*8+c]), int64(samples[2*8+c]), int64(samples[3*8+c]),
			int64(samples[4*8+c]), int64(samples[5*8+c]), int64(samples[6*8+c]), int64(samples[7*8+c]),
		)
		for r := 0; r < 8; r++ {
			cols[r*8+c] = col[r]
		}
	}

	var out [64]int32
	for r := 0; r < 8; r++ {
		row := liftingForward1D(
			cols[r*8+0], cols[r*8+1], cols[r*8+2], cols[r*8+3],
			cols[r*8+4], cols[r*8+5], cols[r*8+6], cols[r*8+7],
		)
		for c := 0; c < 8; c++ {
			i := r*8 + c
			out[i] = liftingQuantize(row[c], q.Forward[i], q.DeadZone)
		}
	}
	return out
}

func liftingQuantize(v int64, mul int64, deadZone bool) int32 {
	p := v * mul
	if deadZone {
		return int32(p >> fractBits)
	}
	if p >= 0 {
		return int32((p + fractHalf) >> fractBits)
	}
	return int32(-((-p + fractHalf) >> fractBits))
}

// InverseLiftingBlock reconstructs samples from quantized reversible-DCT
// coefficients, exactly inverting ForwardLiftingBlock given unmodified
// coefficients (lossless round-trip, spec §4.7).
func InverseLiftingBlock(coeffs *[64]int32, q *LiftingQuantTable) [64]int32 {
	var dequant [64]int64
	for i := range dequant {
		dequant[i] = int64(coeffs[i]) * q.Inverse[i]
	}

	// Undo the row pass first, then the column pass: the forward block
	// ran columns then rows, and the rounded lifting steps only cancel
	// when undone in reverse order.
	var rows [64]int64
	for r := 0; r < 8; r++ {
		row := liftingInverse1D(
			dequant[r*8+0], dequant[r*8+1], dequant[r*8+2], dequant[r*8+3],
			dequant[r*8+4], dequant[r*8+5], dequant[r*8+6], dequant[r*8+7],
		)
		copy(rows[r*8:r*8+8], row[:])
	}

	var out [64]int32
	for c := 0; c < 8; c++ {
		col := liftingInverse1D(
			rows[0*8+c], rows[1*8+c], rows[2*8+c], rows[3*8+c],
			rows[4*8+c], rows[5*8+c], rows[6*8+c], rows[7*8+c],
		)
		for r := 0; r < 8; r++ {
			out[r*8+c] = int32(col[r])
		}
	}
	return out
}
