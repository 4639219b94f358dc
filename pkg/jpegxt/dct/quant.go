package dct

// DeadZoneFraction is the amount, in quantizer steps, by which the zero
// bin is enlarged on each side to suppress noise on AC bands, per spec
// §4.3: "3/8 of a step."
const DeadZoneFraction = 0.375

// QuantizeDeadZone rounds an unquantized coefficient with an enlarged
// zero bin instead of the standard round-to-nearest: magnitudes below
// half a step plus DeadZoneFraction quantize to zero, larger ones round
// to nearest. It is applied only to AC positions (index 0, the DC band,
// always uses plain rounding).
func QuantizeDeadZone(v, scale float32) int32 {
	p := v * scale
	if p >= 0 {
		if p < 0.5+DeadZoneFraction {
			return 0
		}
		return int32(p + 0.5)
	}
	if -p < 0.5+DeadZoneFraction {
		return 0
	}
	return int32(p - 0.5)
}

// RDBlock holds the unquantized coefficients alongside the candidate
// quantized block, so a Lagrangian rate/distortion pass can re-select
// each coefficient after the fact, per spec §4.3's "the kernel stores
// unquantized coefficients; a post-pass re-selects each coefficient to
// minimize D + lambda*R."
type RDBlock struct {
	Unquantized [64]float32
	Quant       *QuantTable
}

// bucketRate approximates the bit cost of coding a coefficient of the
// given magnitude class, mirroring the SSSS-category cost used
// throughout the entropy layer: roughly category bits plus category
// magnitude bits, with a flat one-bit floor for a zero-run continuation.
func bucketRate(mag int32) float64 {
	if mag == 0 {
		return 1
	}
	cat := 0
	for m := mag; m != 0; m >>= 1 {
		cat++
	}
	return float64(cat*2 + 1)
}

// OptimizeRD re-selects each AC coefficient of a quantized block to
// minimize distortion plus a lambda-weighted rate estimate, per spec
// §4.3. lambda is derived by the caller from the block's unquantized AC
// energy (original_source/dct/lagrangian behavior: higher-energy blocks
// tolerate a larger lambda before a coefficient is worth suppressing).
// Only coefficients immediately adjacent to the standard rounding
// decision (one step either side) are considered, matching the
// reference's local search rather than an exhaustive one.
func OptimizeRD(quantized *[64]int32, rd *RDBlock, lambda float64) {
	for i := 1; i < 64; i++ { // position 0 (DC) is never touched by R/D
		scale := rd.Quant.Forward[i]
		invScale := rd.Quant.Inverse[i]
		if scale == 0 {
			continue
		}
		base := quantized[i]
		bestCoeff := base
		bestCost := rdCost(rd.Unquantized[i], base, invScale, lambda)
		for _, candidate := range [2]int32{base - 1, base + 1} {
			cost := rdCost(rd.Unquantized[i], candidate, invScale, lambda)
			if cost < bestCost {
				bestCost = cost
				bestCoeff = candidate
			}
		}
		quantized[i] = bestCoeff
	}
}

func rdCost(unquant float32, coeff int32, invScale float32, lambda float64) float64 {
	recon := float32(coeff) * invScale
	diff := float64(unquant - recon)
	distortion := diff * diff
	rate := bucketRate(absCoeff(coeff))
	return distortion + lambda*rate
}

func absCoeff(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// EstimateLambda derives a Lagrangian multiplier from a block's
// unquantized AC energy, per spec §4.3 ("The lambda estimate is derived
// from the block's unquantized AC energy"). Higher energy blocks get a
// proportionally larger lambda, matching the reference's intent that
// busy blocks tolerate coarser AC coding before the visible cost grows.
func EstimateLambda(unquantized *[64]float32) float64 {
	var energy float64
	for i := 1; i < 64; i++ {
		v := float64(unquantized[i])
		energy += v * v
	}
	return energy / (64 * 255 * 255)
}
