package ls

import "github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"

// at returns row[x] for 0 <= x < width, or the line's edge sample
// (ISO/IEC 14495-1 §A.2's "virtual" out-of-bounds handling: the column
// before the first real column repeats the first sample of the row
// above, or zero on the very first row).
func at(row []int32, x int32) int32 {
	if x < 0 {
		if len(row) > 0 {
			return row[0]
		}
		return 0
	}
	if int(x) >= len(row) {
		return row[len(row)-1]
	}
	return row[x]
}

// EncodeRow codes one full row of a component, choosing run mode when
// the current sample repeats the left sample and regular mode
// otherwise, per ISO/IEC 14495-1 §A.7's top-level dispatch (mirrored
// from the teacher's Encoder.encode row loop).
func EncodeRow(bw *entropy.BitWriter, m *Model, curr, prev []int32) error {
	width := int32(len(curr))
	var x int32
	for x < width {
		ra := at(prev, 0)
		if x > 0 {
			ra = curr[x-1]
		}
		rb := at(prev, x)
		if ra == rb {
			runLen := int32(0)
			for x+runLen < width && curr[x+runLen] == ra {
				runLen++
			}
			if err := EncodeRunLength(bw, m, runLen, width-x); err != nil {
				return err
			}
			x += runLen
			if x >= width {
				return nil
			}
			rbInterrupt := at(prev, x)
			if err := EncodeRunInterruption(bw, m, ra, rbInterrupt, curr[x]); err != nil {
				return err
			}
			x++
			continue
		}

		s := Sample{Ra: ra, Rb: rb, Rc: at(prev, x-1), Rd: at(prev, x+1)}
		if _, err := EncodeRegular(bw, m, s, curr[x]); err != nil {
			return err
		}
		x++
	}
	return nil
}

// DecodeRow reconstructs one full row of a component into curr, given
// the already-reconstructed row above (prev).
func DecodeRow(br *entropy.BitReader, m *Model, curr, prev []int32) error {
	width := int32(len(curr))
	var x int32
	for x < width {
		ra := at(prev, 0)
		if x > 0 {
			ra = curr[x-1]
		}
		rb := at(prev, x)
		if ra == rb {
			runLen, exhausted, err := DecodeRunLength(br, m, width-x)
			if err != nil {
				return err
			}
			for i := int32(0); i < runLen; i++ {
				curr[x+i] = ra
			}
			x += runLen
			if exhausted || x >= width {
				return nil
			}
			rbInterrupt := at(prev, x)
			v, err := DecodeRunInterruption(br, m, ra, rbInterrupt)
			if err != nil {
				return err
			}
			curr[x] = v
			x++
			continue
		}

		s := Sample{Ra: ra, Rb: rb, Rc: at(prev, x-1), Rd: at(prev, x+1)}
		v, err := DecodeRegular(br, m, s)
		if err != nil {
			return err
		}
		curr[x] = v
		x++
	}
	return nil
}
