package scan

import "github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"

// ArithContexts holds the per-component, per-table conditioning contexts
// for arithmetic-coded DC/AC, per spec §3: "DC table (L,U); AC table Kx;
// up to 4 DC and 4 AC tables." Each DC table holds five contexts for
// each of the four classes returned by entropy.ClassifyDC, starting at
// class*5: the zero/nonzero decision, the sign, and three magnitude
// ladder steps.
type ArithContexts struct {
	DC [4][20]entropy.Context // per DC table: 4 classes x (zero, sign, 3 magnitude steps)
	AC [4][2][64]entropy.Context
	L, U [4]int // DC conditioning bounds per table
	Kx   [4]int // AC conditioning parameter per table
}

// NewArithContexts allocates conditioning state initialized to the
// standard's uniform starting estimate (index 0, MPS=0).
func NewArithContexts() *ArithContexts {
	return &ArithContexts{}
}

// EncodeDCArith arithmetic-codes one DC difference using table tbl's
// contexts, per spec §4.2.
func EncodeDCArith(enc *entropy.Encoder, ctxs *ArithContexts, tbl int, prevDiff int, diff int32) error {
	class := entropy.ClassifyDC(prevDiff, ctxs.L[tbl], ctxs.U[tbl])
	base := class * 5
	nz := 0
	if diff != 0 {
		nz = 1
	}
	if err := enc.Encode(nz, &ctxs.DC[tbl][base]); err != nil {
		return err
	}
	if diff == 0 {
		return nil
	}
	sign := 0
	if diff < 0 {
		sign = 1
	}
	if err := enc.Encode(sign, &ctxs.DC[tbl][base+1]); err != nil {
		return err
	}
	return encodeMagnitude(enc, ctxs.DC[tbl][base+2:base+5], int(absInt32(diff))-1)
}

// DecodeDCArith is the inverse of EncodeDCArith.
func DecodeDCArith(dec *entropy.Decoder, ctxs *ArithContexts, tbl int, prevDiff int) (int32, error) {
	class := entropy.ClassifyDC(prevDiff, ctxs.L[tbl], ctxs.U[tbl])
	base := class * 5
	nz, err := dec.Decode(&ctxs.DC[tbl][base])
	if err != nil {
		return 0, err
	}
	if nz == 0 {
		return 0, nil
	}
	sign, err := dec.Decode(&ctxs.DC[tbl][base+1])
	if err != nil {
		return 0, err
	}
	mag, err := decodeMagnitude(dec, ctxs.DC[tbl][base+2:base+5])
	if err != nil {
		return 0, err
	}
	v := int32(mag + 1)
	if sign != 0 {
		v = -v
	}
	return v, nil
}

// EncodeACArith arithmetic-codes one AC coefficient at zig-zag position
// k using table tbl's contexts, per spec §4.2.
func EncodeACArith(enc *entropy.Encoder, ctxs *ArithContexts, tbl, k int, v int32) error {
	bucket := entropy.ACContextIndex(k, ctxs.Kx[tbl])
	nz := 0
	if v != 0 {
		nz = 1
	}
	if err := enc.Encode(nz, &ctxs.AC[tbl][bucket][k]); err != nil {
		return err
	}
	if v == 0 {
		return nil
	}
	sign := 0
	if v < 0 {
		sign = 1
	}
	if err := enc.Encode(sign, &ctxs.AC[tbl][bucket][k]); err != nil {
		return err
	}
	return encodeMagnitude(enc, ctxs.AC[tbl][1-bucket][0:3], int(absInt32(v))-1)
}

// DecodeACArith is the inverse of EncodeACArith.
func DecodeACArith(dec *entropy.Decoder, ctxs *ArithContexts, tbl, k int) (int32, error) {
	bucket := entropy.ACContextIndex(k, ctxs.Kx[tbl])
	nz, err := dec.Decode(&ctxs.AC[tbl][bucket][k])
	if err != nil {
		return 0, err
	}
	if nz == 0 {
		return 0, nil
	}
	sign, err := dec.Decode(&ctxs.AC[tbl][bucket][k])
	if err != nil {
		return 0, err
	}
	mag, err := decodeMagnitude(dec, ctxs.AC[tbl][1-bucket][0:3])
	if err != nil {
		return 0, err
	}
	v := int32(mag + 1)
	if sign != 0 {
		v = -v
	}
	return v, nil
}

// encodeMagnitude codes a zero-based magnitude in unary: one 1 decision
// per unit, then a terminating 0, stepping through the supplied context
// slice and staying on its last context once the slice is used up.
func encodeMagnitude(enc *entropy.Encoder, ctx []entropy.Context, v int) error {
	i := 0
	for v > 0 {
		if err := enc.Encode(1, &ctx[i]); err != nil {
			return err
		}
		v--
		if i < len(ctx)-1 {
			i++
		}
	}
	return enc.Encode(0, &ctx[i])
}

func decodeMagnitude(dec *entropy.Decoder, ctx []entropy.Context) (int, error) {
	v := 0
	i := 0
	for {
		bit, err := dec.Decode(&ctx[i])
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			return v, nil
		}
		v++
		if i < len(ctx)-1 {
			i++
		}
	}
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
