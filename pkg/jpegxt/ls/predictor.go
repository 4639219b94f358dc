// Package ls implements spec §3/§6's JPEG-LS frame type and its
// `error_bound` (NEAR) configuration option, dropped entirely from the
// distilled spec's prose but required by its own data model (§3:
// "Frame: type ∈ {..., JPEG-LS}") and configuration surface (§6:
// "error_bound (JPEG-LS NEAR): max per-sample L-infinity error").
//
// Grounded on pkg/compress/jpegls/{predictor,context,run_mode}.go:
// the median-edge-detector predictor, the 365/366/367-context gradient
// model, and the Golomb run-length interruption coding are carried over,
// generalized to also support NEAR > 0 (near-lossless), which the
// teacher's implementation comments mark as not fully settled.
package ls

// PredictMED is the Median Edge Detector predictor of ISO/IEC 14495-1
// Annex A: it predicts an edge when the above-left sample falls outside
// the range bounded by the left and above samples, and the flat-region
// average otherwise.
func PredictMED(ra, rb, rc int32) int32 {
	if rc >= maxI32(ra, rb) {
		return minI32(ra, rb)
	}
	if rc <= minI32(ra, rb) {
		return maxI32(ra, rb)
	}
	return ra + rb - rc
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func clip32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Quantize performs the near-lossless forward quantization of a
// prediction residual, per ISO/IEC 14495-1 §A.4.1: residuals within the
// NEAR band collapse to the same reconstructed value, giving the
// "|decode(encode(x))_i - x_i| <= N" bound spec §8 property 3 requires.
func Quantize(errVal int32, near int32) int32 {
	if near == 0 {
		return errVal
	}
	if errVal > 0 {
		return (errVal + near) / (2*near + 1)
	}
	return -((near - errVal) / (2*near + 1))
}

// Reconstruct undoes Quantize, producing the reconstructed sample value
// from a predicted value and a quantized error, clamped to [0, maxVal].
func Reconstruct(predicted, quantizedErr, near, maxVal int32) int32 {
	v := predicted + quantizedErr*(2*near+1)
	if v < -near {
		v += maxVal + 1
	} else if v > maxVal+near {
		v -= maxVal + 1
	}
	return clip32(v, 0, maxVal)
}
