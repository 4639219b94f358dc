package ls

import "github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"

// writeGolomb writes a Golomb-Rice code (unary quotient, k-bit
// remainder) over the scan's shared bit writer, reusing its 0xFF/0x00
// byte-stuffing so JPEG-LS scan data obeys the same marker discipline
// (spec §8 property 4) as every other entropy-coded segment in this
// codec, per the teacher's BitWriter.WriteGolomb.
func writeGolomb(bw *entropy.BitWriter, k int, val uint32) error {
	q := val >> uint(k)
	for i := uint32(0); i < q; i++ {
		if err := bw.WriteBits(0, 1); err != nil {
			return err
		}
	}
	if err := bw.WriteBits(1, 1); err != nil {
		return err
	}
	if k > 0 {
		return bw.WriteBits(val&(1<<uint(k)-1), k)
	}
	return nil
}

func readGolomb(br *entropy.BitReader, k int) (uint32, error) {
	var q uint32
	for {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			break
		}
		q++
	}
	if k == 0 {
		return q, nil
	}
	r, err := br.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return q<<uint(k) | r, nil
}

// mapError folds a signed prediction error into JPEG-LS's non-negative
// Golomb-codeable form, per ISO/IEC 14495-1 §A.5.3, using the context's
// sign-corrected bias to decide the fold direction.
func mapError(errVal int32, correctionSign int32) uint32 {
	if correctionSign < 0 {
		errVal = -errVal
	}
	if errVal >= 0 {
		return uint32(2 * errVal)
	}
	return uint32(-2*errVal - 1)
}

func unmapError(mapped uint32, correctionSign int32) int32 {
	var v int32
	if mapped%2 == 0 {
		v = int32(mapped / 2)
	} else {
		v = -int32((mapped + 1) / 2)
	}
	if correctionSign < 0 {
		v = -v
	}
	return v
}

// Sample holds the three causal neighbors (left, above, above-left) and
// the above-right sample needed for gradient computation at one pixel,
// per ISO/IEC 14495-1 Figure 4.
type Sample struct {
	Ra, Rb, Rc, Rd int32
}

// EncodeRegular codes one regular-mode sample: MED-predict, correct by
// the context bias, quantize for NEAR, and Golomb-code the mapped
// residual, per ISO/IEC 14495-1 §A.4/A.5. Returns the reconstructed
// sample value the decoder will also produce.
func EncodeRegular(bw *entropy.BitWriter, m *Model, s Sample, actual int32) (int32, error) {
	d1 := s.Rd - s.Rb
	d2 := s.Rb - s.Rc
	d3 := s.Rc - s.Ra
	q, sign := m.ContextIndex(d1, d2, d3)

	predicted := PredictMED(s.Ra, s.Rb, s.Rc)
	predicted += sign * m.Bias(q)
	predicted = clip32(predicted, 0, m.maxVal)

	errVal := actual - predicted
	if sign < 0 {
		errVal = -errVal
	}
	errVal = Quantize(errVal, m.near)

	k := m.ComputeK(q)
	mapped := mapError(errVal, 1)
	if err := writeGolomb(bw, k, mapped); err != nil {
		return 0, err
	}

	m.UpdateStats(q, errVal*sign)
	recon := Reconstruct(predicted, errVal*sign, m.near, m.maxVal)
	return recon, nil
}

// DecodeRegular is EncodeRegular's inverse.
func DecodeRegular(br *entropy.BitReader, m *Model, s Sample) (int32, error) {
	d1 := s.Rd - s.Rb
	d2 := s.Rb - s.Rc
	d3 := s.Rc - s.Ra
	q, sign := m.ContextIndex(d1, d2, d3)

	predicted := PredictMED(s.Ra, s.Rb, s.Rc)
	predicted += sign * m.Bias(q)
	predicted = clip32(predicted, 0, m.maxVal)

	k := m.ComputeK(q)
	mapped, err := readGolomb(br, k)
	if err != nil {
		return 0, err
	}
	errVal := unmapError(mapped, 1)

	m.UpdateStats(q, errVal*sign)
	return Reconstruct(predicted, errVal*sign, m.near, m.maxVal), nil
}

// EncodeRunInterruption codes the single sample that breaks a flat run
// of Ra values, per ISO/IEC 14495-1 §A.7.2.
func EncodeRunInterruption(bw *entropy.BitWriter, m *Model, ra, rb, actual int32) error {
	ctx := RunInterruptionContext(ra, rb)
	predicted := ra
	sign := int32(1)
	if ra != rb {
		predicted = rb
		if ra > rb {
			sign = -1
		}
	}

	errVal := actual - predicted
	if sign < 0 {
		errVal = -errVal
	}
	errVal = Quantize(errVal, m.near)

	k := m.ComputeK(ctx)
	mapped := mapError(errVal, 1)
	if err := writeGolomb(bw, k, mapped); err != nil {
		return err
	}
	m.UpdateStats(ctx, errVal)
	return nil
}

// DecodeRunInterruption is EncodeRunInterruption's inverse.
func DecodeRunInterruption(br *entropy.BitReader, m *Model, ra, rb int32) (int32, error) {
	ctx := RunInterruptionContext(ra, rb)
	predicted := ra
	sign := int32(1)
	if ra != rb {
		predicted = rb
		if ra > rb {
			sign = -1
		}
	}

	k := m.ComputeK(ctx)
	mapped, err := readGolomb(br, k)
	if err != nil {
		return 0, err
	}
	errVal := unmapError(mapped, 1)
	m.UpdateStats(ctx, errVal)
	return Reconstruct(predicted, errVal*sign, m.near, m.maxVal), nil
}

// runCandidateLength returns how many further pixels (beyond the current one)
// continue a flat run before the coder must check for run-mode
// continuation, and whether the row's remaining pixels exhaust the run.
func (m *Model) runCandidateLength(remaining int32) (full bool, length int32) {
	l, _ := m.RunLength()
	ln := int32(l)
	if ln >= remaining {
		return true, remaining
	}
	return false, ln
}

// EncodeRunLength codes one run-mode segment given the count of
// consecutive samples equal to Ra (runLen) out of the samples remaining
// in the row, per ISO/IEC 14495-1 §A.7.1: one bit per full run unit,
// then a terminating 0 bit and a J-bit remainder.
func EncodeRunLength(bw *entropy.BitWriter, m *Model, runLen, remaining int32) error {
	for {
		full, unit := m.runCandidateLength(remaining)
		if runLen >= unit {
			if err := bw.WriteBits(1, 1); err != nil {
				return err
			}
			runLen -= unit
			remaining -= unit
			if !full {
				m.AdvanceRun()
			}
			if remaining == 0 {
				return nil
			}
			continue
		}
		_, bits := m.RunLength()
		if err := bw.WriteBits(0, 1); err != nil {
			return err
		}
		if err := bw.WriteBits(uint32(runLen), bits); err != nil {
			return err
		}
		m.RetreatRun()
		return nil
	}
}

// DecodeRunLength decodes one run-mode segment, returning the run
// length actually coded and whether the run consumed the whole row
// (meaning no interruption sample follows).
func DecodeRunLength(br *entropy.BitReader, m *Model, remaining int32) (runLen int32, exhausted bool, err error) {
	for {
		full, unit := m.runCandidateLength(remaining)
		bit, e := br.ReadBit()
		if e != nil {
			return 0, false, e
		}
		if bit == 1 {
			runLen += unit
			remaining -= unit
			if !full {
				m.AdvanceRun()
			}
			if remaining == 0 {
				return runLen, true, nil
			}
			continue
		}
		_, bits := m.RunLength()
		rem, e := br.ReadBits(bits)
		if e != nil {
			return 0, false, e
		}
		runLen += int32(rem)
		m.RetreatRun()
		return runLen, false, nil
	}
}
