package scan

import "github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"

// LosslessPredictor selects one of T.81 Annex H's seven lossless spatial
// predictors (plus predictor 0, used only for the first row/column).
// Grounded directly on the teacher's lossless predictor
// (pkg/compress/jpegli/encode.go's (*encoder).predict), generalized from
// a single fixed component's row pair to any component's two rows.
type LosslessPredictor int

// Predict returns the predicted sample value for position x in currRow
// given the row above (prevRow), per T.81 Table H.1. Position (0,0) of
// the whole component predicts from the half-range midpoint, the first
// row predicts from the left neighbor, and the first column predicts
// from the sample above.
func Predict(predictor LosslessPredictor, currRow, prevRow []int32, x, y, precision int) int32 {
	var ra, rb, rc int32
	if x > 0 {
		ra = currRow[x-1]
	}
	if y > 0 {
		rb = prevRow[x]
		if x > 0 {
			rc = prevRow[x-1]
		}
	}

	if y == 0 && x == 0 {
		return 1 << (precision - 1)
	}
	if y == 0 {
		return ra
	}
	if x == 0 {
		return rb
	}

	switch predictor {
	case 1:
		return ra
	case 2:
		return rb
	case 3:
		return rc
	case 4:
		return ra + rb - rc
	case 5:
		return ra + (rb-rc)/2
	case 6:
		return rb + (ra-rc)/2
	case 7:
		return (ra + rb) / 2
	default:
		return ra
	}
}

// EncodeLosslessSample writes one predicted-difference sample using the
// given component's Huffman DC-style table (lossless coding reuses the
// DC category/Huffman machinery across the whole component, not just
// per-block, per spec §4.5's Lossless frame type).
func EncodeLosslessSample(bw *entropy.BitWriter, table *entropy.Table, sample int32, predictor LosslessPredictor, currRow, prevRow []int32, x, y, precision int) error {
	pred := Predict(predictor, currRow, prevRow, x, y, precision)
	diff := sample - pred
	cat, bits := signMagnitude(diff)
	if err := bw.WriteHuffman(table, cat); err != nil {
		return err
	}
	return bw.WriteBits(bits, int(cat))
}

// DecodeLosslessSample reads one predicted-difference sample and
// reconstructs the original value.
func DecodeLosslessSample(br *entropy.BitReader, table *entropy.Table, predictor LosslessPredictor, currRow, prevRow []int32, x, y, precision int) (int32, error) {
	cat, err := br.DecodeHuffman(table)
	if err != nil {
		return 0, err
	}
	bits, err := br.ReadBits(int(cat))
	if err != nil {
		return 0, err
	}
	diff := extend(bits, cat)
	pred := Predict(predictor, currRow, prevRow, x, y, precision)
	return pred + diff, nil
}
