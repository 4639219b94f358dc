package scan

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// Predictor tracks per-component DC prediction state across an MCU row,
// reset to zero at restart markers and at the start of each scan, per
// spec §3: "DC coefficient is stored as delta from the previous block of
// the same component in the scan (reset at restart markers and at
// component boundaries)."
type Predictor struct {
	prevDC []int32
}

// NewPredictor allocates a predictor for nComponents components.
func NewPredictor(nComponents int) *Predictor {
	return &Predictor{prevDC: make([]int32, nComponents)}
}

// Reset zeroes all per-component DC predictors, per spec §3's restart
// invariant.
func (p *Predictor) Reset() {
	for i := range p.prevDC {
		p.prevDC[i] = 0
	}
}

// EncodeSequentialBlock writes one block's DC+AC coefficients using
// sequential Huffman coding, per spec §4.5: "DC magnitude category
// encoded via Huffman/AC table; category bits of sign-extended value
// follow. AC: run-length of zeros (0..15) combined with next non-zero
// magnitude category into a single symbol; symbol 0x00 = EOB; symbol
// 0xF0 = ZRL."
func EncodeSequentialBlock(bw *entropy.BitWriter, dcTable, acTable *entropy.Table, comp int, coeffs *[64]int32, pred *Predictor) error {
	diff := coeffs[0] - pred.prevDC[comp]
	pred.prevDC[comp] = coeffs[0]
	cat, bits := signMagnitude(diff)
	if err := bw.WriteHuffman(dcTable, cat); err != nil {
		return err
	}
	if err := bw.WriteBits(bits, int(cat)); err != nil {
		return err
	}

	run := 0
	for k := 1; k < 64; k++ {
		v := coeffs[ZigZag[k]]
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			if err := bw.WriteHuffman(acTable, 0xF0); err != nil {
				return err
			}
			run -= 16
		}
		cat, bits := signMagnitude(v)
		symbol := byte(run)<<4 | cat
		if err := bw.WriteHuffman(acTable, symbol); err != nil {
			return err
		}
		if err := bw.WriteBits(bits, int(cat)); err != nil {
			return err
		}
		run = 0
	}
	if run > 0 {
		return bw.WriteHuffman(acTable, 0x00) // EOB
	}
	return nil
}

// DecodeSequentialBlock reads one block's DC+AC coefficients using
// sequential Huffman coding, writing natural-order coefficients into out
// (out is zeroed first).
func DecodeSequentialBlock(br *entropy.BitReader, dcTable, acTable *entropy.Table, comp int, out *[64]int32, pred *Predictor) error {
	*out = [64]int32{}

	cat, err := br.DecodeHuffman(dcTable)
	if err != nil {
		return err
	}
	if cat > 16 {
		return xerrors.Errf(xerrors.InvalidHuffman, nil, "DC category %d out of range", cat)
	}
	bits, err := br.ReadBits(int(cat))
	if err != nil {
		return err
	}
	diff := extend(bits, cat)
	pred.prevDC[comp] += diff
	out[0] = pred.prevDC[comp]

	k := 1
	for k < 64 {
		symbol, err := br.DecodeHuffman(acTable)
		if err != nil {
			return err
		}
		if symbol == 0x00 { // EOB
			break
		}
		run := int(symbol >> 4)
		cat := symbol & 0x0F
		if symbol == 0xF0 { // ZRL
			k += 16
			continue
		}
		k += run
		if k >= 64 {
			return xerrors.Errf(xerrors.MalformedStream, nil, "AC run overflowed block at position %d", k)
		}
		bits, err := br.ReadBits(int(cat))
		if err != nil {
			return err
		}
		out[ZigZag[k]] = extend(bits, cat)
		k++
	}
	return nil
}
