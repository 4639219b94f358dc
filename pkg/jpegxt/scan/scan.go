// Package scan implements spec §4.5 (C5): the per-scan state machine
// driving DC/AC coefficient coding across an MCU row, in both sequential
// and progressive Huffman forms, the arithmetic-coded equivalent, and
// the lossless predictive mode.
//
// Grounded on the teacher's predictive encoder/decoder
// (pkg/compress/jpegli/encode.go, scan.go): the SSSS-category
// (magnitude-class) Huffman coding scheme and its predict/extend/
// categorize helpers generalize directly from that package's single
// lossless DC predictor to this package's full DC+AC, sequential,
// progressive and lossless variants.
package scan

// State is a scan's cooperative-stepping state, per spec §4.5 and §5
// ("the instance progresses in suspendable steps").
type State int

const (
	StateIdle State = iota
	StateInRow
	StateInMCU
	StateFlushEOB
	StateAwaitRestart
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInRow:
		return "InRow"
	case StateInMCU:
		return "InMCU"
	case StateFlushEOB:
		return "FlushEob"
	case StateAwaitRestart:
		return "AwaitRestart"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// category returns the SSSS magnitude category of v: the number of bits
// needed to represent abs(v), or 0 if v == 0, per T.81 Table F.1.
func category(v int32) byte {
	if v < 0 {
		v = -v
	}
	var n byte
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// extend sign-extends a cat-bit magnitude read from the bitstream back
// into a signed difference, per T.81 Figure F.12 (the EXTEND procedure):
// values with their top bit clear represent negative numbers offset by
// (2^cat - 1).
func extend(bits uint32, cat byte) int32 {
	if cat == 0 {
		return 0
	}
	vt := int32(1) << (cat - 1)
	v := int32(bits)
	if v < vt {
		return v - (int32(1)<<cat - 1)
	}
	return v
}

// signMagnitude is the inverse of extend: given a signed difference,
// returns the (cat, bits) pair to write, per T.81 Figure F.12's encode
// direction.
func signMagnitude(v int32) (cat byte, bits uint32) {
	cat = category(v)
	if v < 0 {
		bits = uint32(v + (int32(1)<<cat - 1))
	} else {
		bits = uint32(v)
	}
	return cat, bits
}

// ZigZag is the standard 8x8 zig-zag scan order, natural-order index per
// zig-zag position, per T.81 Figure A.6.
var ZigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}
