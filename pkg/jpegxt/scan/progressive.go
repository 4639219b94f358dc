package scan

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// EOBRun tracks the pending end-of-band run count carried between
// progressive AC blocks, per spec §4.5: "EOB is extended with an EOB-run
// RLE (symbol 0xr0 = EOB-run of length in [1, 2^r])."
type EOBRun struct {
	Remaining int
}

// EncodeDCFirst writes a progressive first DC pass coefficient, shifted
// right by Al, per spec §4.5.
func EncodeDCFirst(bw *entropy.BitWriter, dcTable *entropy.Table, comp int, dc int32, al byte, pred *Predictor) error {
	shifted := dc >> al
	diff := shifted - pred.prevDC[comp]
	pred.prevDC[comp] = shifted
	cat, bits := signMagnitude(diff)
	if err := bw.WriteHuffman(dcTable, cat); err != nil {
		return err
	}
	return bw.WriteBits(bits, int(cat))
}

// DecodeDCFirst reads a progressive first-pass DC coefficient.
func DecodeDCFirst(br *entropy.BitReader, dcTable *entropy.Table, comp int, al byte, pred *Predictor) (int32, error) {
	cat, err := br.DecodeHuffman(dcTable)
	if err != nil {
		return 0, err
	}
	bits, err := br.ReadBits(int(cat))
	if err != nil {
		return 0, err
	}
	pred.prevDC[comp] += extend(bits, cat)
	return pred.prevDC[comp] << al, nil
}

// EncodeDCRefine writes one refinement bit for a DC coefficient at
// position Al, per spec §4.5: "one bit per MCU per component, at
// position Al."
func EncodeDCRefine(bw *entropy.BitWriter, dc int32, al byte) error {
	bit := (dc >> al) & 1
	return bw.WriteBits(uint32(bit), 1)
}

// DecodeDCRefine reads one DC refinement bit and folds it into coeff.
func DecodeDCRefine(br *entropy.BitReader, coeff *int32, al byte) error {
	bit, err := br.ReadBit()
	if err != nil {
		return err
	}
	if bit != 0 {
		*coeff |= int32(1) << al
	}
	return nil
}

// EncodeACFirst writes a progressive first AC pass over band [Ss,Se],
// values shifted right by Al (the magnitude is shifted and the sign
// kept, so DecodeACFirst and the refinement passes see the same bits),
// with EOB-run RLE, per spec §4.5.
func EncodeACFirst(bw *entropy.BitWriter, acTable *entropy.Table, coeffs *[64]int32, ss, se, al byte, run *EOBRun) error {
	start := int(ss)
	end := int(se)
	zeroRun := 0
	for k := start; k <= end; k++ {
		v := coeffs[ZigZag[k]]
		if v < 0 {
			v = -(-v >> al)
		} else {
			v >>= al
		}
		if v == 0 {
			zeroRun++
			continue
		}
		if err := flushEOBRun(bw, acTable, run); err != nil {
			return err
		}
		for zeroRun >= 16 {
			if err := bw.WriteHuffman(acTable, 0xF0); err != nil {
				return err
			}
			zeroRun -= 16
		}
		cat, bits := signMagnitude(v)
		symbol := byte(zeroRun)<<4 | cat
		if err := bw.WriteHuffman(acTable, symbol); err != nil {
			return err
		}
		if err := bw.WriteBits(bits, int(cat)); err != nil {
			return err
		}
		zeroRun = 0
	}
	if zeroRun > 0 {
		run.Remaining++
	}
	return nil
}

func flushEOBRun(bw *entropy.BitWriter, acTable *entropy.Table, run *EOBRun) error {
	if run.Remaining == 0 {
		return nil
	}
	r := 0
	n := run.Remaining
	for n > 1 {
		n >>= 1
		r++
	}
	if r > 14 {
		r = 14
	}
	extra := run.Remaining - (1 << r)
	symbol := byte(r) << 4
	if err := bw.WriteHuffman(acTable, symbol); err != nil {
		return err
	}
	if r > 0 {
		if err := bw.WriteBits(uint32(extra), r); err != nil {
			return err
		}
	}
	run.Remaining = 0
	return nil
}

// FlushPendingEOBRun must be called once at the end of a first-pass AC
// scan to drain any outstanding EOB run (spec §5: suspension may occur
// at scan boundaries). Driver does not call it: the caller's MCU coder
// calls it at the end of the scan and before each restart marker.
func FlushPendingEOBRun(bw *entropy.BitWriter, acTable *entropy.Table, run *EOBRun) error {
	return flushEOBRun(bw, acTable, run)
}

// DecodeACFirst reads a progressive first AC pass block into coeffs
// (already zeroed by the caller for a fresh block), honoring a
// carried-over EOB run.
func DecodeACFirst(br *entropy.BitReader, acTable *entropy.Table, coeffs *[64]int32, ss, se, al byte, run *EOBRun) error {
	if run.Remaining > 0 {
		run.Remaining--
		return nil
	}
	k := int(ss)
	end := int(se)
	for k <= end {
		symbol, err := br.DecodeHuffman(acTable)
		if err != nil {
			return err
		}
		r := int(symbol >> 4)
		cat := symbol & 0x0F
		if cat == 0 {
			if r == 15 {
				k += 16 // ZRL
				continue
			}
			// EOB run of length 2^r + extra bits
			n := 1 << r
			if r > 0 {
				bits, err := br.ReadBits(r)
				if err != nil {
					return err
				}
				n += int(bits)
			}
			run.Remaining = n - 1
			return nil
		}
		k += r
		if k > end {
			return xerrors.Errf(xerrors.MalformedStream, nil, "progressive AC run overflowed band at position %d", k)
		}
		bits, err := br.ReadBits(int(cat))
		if err != nil {
			return err
		}
		coeffs[ZigZag[k]] = extend(bits, cat) << al
		k++
	}
	return nil
}

// EncodeACRefine writes a progressive AC refinement pass over
// [Ss,Se]: previously-nonzero coefficients each emit one correction bit;
// newly-nonzero coefficients encode sign+a single magnitude=1 bit; runs
// of still-zero coefficients are RLE'd, per spec §4.5. Correction bits
// for coefficients skipped while accumulating a zero run are buffered
// and flushed alongside the run-terminating symbol (ZRL, a newly-nonzero
// symbol, or the closing EOB), matching the standard's "complex
// correction bits interleave" rule.
func EncodeACRefine(bw *entropy.BitWriter, acTable *entropy.Table, coeffs *[64]int32, al byte, ss, se byte) error {
	start, end := int(ss), int(se)

	var pending []int32
	zeroRun := 0

	flush := func(symbol byte, withExtra bool, extraBit uint32) error {
		if err := bw.WriteHuffman(acTable, symbol); err != nil {
			return err
		}
		if withExtra {
			if err := bw.WriteBits(extraBit, 1); err != nil {
				return err
			}
		}
		for _, v := range pending {
			c := (v >> al) & 1
			if err := bw.WriteBits(uint32(c), 1); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}

	for k := start; k <= end; k++ {
		v := coeffs[ZigZag[k]]
		mag := v
		if mag < 0 {
			mag = -mag
		}
		shifted := mag >> al
		if shifted > 1 {
			pending = append(pending, mag)
			continue
		}
		if shifted == 0 {
			zeroRun++
			if zeroRun == 16 {
				if err := flush(0xF0, false, 0); err != nil {
					return err
				}
				zeroRun = 0
			}
			continue
		}
		sign := uint32(0)
		if v < 0 {
			sign = 1
		}
		symbol := byte(zeroRun)<<4 | 0x01
		if err := flush(symbol, true, sign); err != nil {
			return err
		}
		zeroRun = 0
	}
	if zeroRun > 0 || len(pending) > 0 {
		return flush(0x00, false, 0) // EOB: run of 1 plane, draining any pending corrections
	}
	return nil
}

// DecodeACRefine reads a progressive AC refinement pass, applying
// correction bits to coeffs in place.
func DecodeACRefine(br *entropy.BitReader, acTable *entropy.Table, coeffs *[64]int32, al byte, ss, se byte) error {
	start, end := int(ss), int(se)
	bitVal := int32(1) << al

	applyCorrection := func(k int) error {
		bit, err := br.ReadBit()
		if err != nil {
			return err
		}
		if bit != 0 && coeffs[ZigZag[k]] > 0 {
			coeffs[ZigZag[k]] += bitVal
		} else if bit != 0 && coeffs[ZigZag[k]] < 0 {
			coeffs[ZigZag[k]] -= bitVal
		}
		return nil
	}

	k := start
	for k <= end {
		symbol, err := br.DecodeHuffman(acTable)
		if err != nil {
			return err
		}
		run := int(symbol >> 4)
		cat := symbol & 0x0F
		var newVal int32
		toSkip := run

		if cat == 0 {
			if run != 15 {
				// EOB: apply corrections to all remaining already-nonzero
				// coefficients in the band, then stop.
				for ; k <= end; k++ {
					if coeffs[ZigZag[k]] != 0 {
						if err := applyCorrection(k); err != nil {
							return err
						}
					}
				}
				return nil
			}
			// ZRL: run of 16 zero/not-yet-nonzero coefficients.
		} else {
			sign, err := br.ReadBit()
			if err != nil {
				return err
			}
			if sign != 0 {
				newVal = -bitVal
			} else {
				newVal = bitVal
			}
		}

		for toSkip > 0 && k <= end {
			if coeffs[ZigZag[k]] != 0 {
				if err := applyCorrection(k); err != nil {
					return err
				}
			} else {
				toSkip--
			}
			k++
		}
		if cat != 0 {
			for k <= end && coeffs[ZigZag[k]] != 0 {
				if err := applyCorrection(k); err != nil {
					return err
				}
				k++
			}
			if k > end {
				return xerrors.Errf(xerrors.MalformedStream, nil, "AC refinement ran past band end")
			}
			coeffs[ZigZag[k]] = newVal
			k++
		}
	}
	return nil
}
