package entropy

import "github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"

// Arithmetic coding per spec §4.2: "A binary arithmetic coder with a
// fixed state-transition table (47 states) and per-context state...
// The coder holds (A, C, CT, ST, B) registers as in the standard; byte-out
// emits stuffed bytes identically to Huffman."
//
// Grounded on the MQ coder in the teacher's JPEG 2000 package
// (vendor/github.com/jpfielding/jpegs/pkg/compress/jpeg2k/mq.go): same
// 47-row probability-estimation table and the same A/C register
// renormalize-and-byte-stuff shape, retargeted from JPEG 2000's EBCOT
// contexts to the JPEG DC/AC conditioning contexts of spec §4.2.

// qeEntry is one row of the probability estimation state table.
type qeEntry struct {
	qe     uint32
	nmps   uint8
	nlps   uint8
	switchMPS bool
}

// qeTable is the 47-state probability estimation table. Values mirror
// the standard's Table; row 0 is the uniform 0.5 starting estimate.
var qeTable = [47]qeEntry{
	{0x5601, 1, 1, true}, {0x3401, 2, 6, false}, {0x1801, 3, 9, false},
	{0x0AC1, 4, 12, false}, {0x0521, 5, 29, false}, {0x0221, 38, 33, false},
	{0x5601, 7, 6, true}, {0x5401, 8, 14, false}, {0x4801, 9, 14, false},
	{0x3801, 10, 14, false}, {0x3001, 11, 17, false}, {0x2401, 12, 18, false},
	{0x1C01, 13, 20, false}, {0x1601, 29, 21, false}, {0x5601, 15, 14, true},
	{0x5401, 16, 14, false}, {0x5101, 17, 15, false}, {0x4801, 18, 16, false},
	{0x3801, 19, 17, false}, {0x3401, 20, 18, false}, {0x3001, 21, 19, false},
	{0x2801, 22, 19, false}, {0x2401, 23, 20, false}, {0x2201, 24, 21, false},
	{0x1C01, 25, 22, false}, {0x1801, 26, 23, false}, {0x1601, 27, 24, false},
	{0x1401, 28, 25, false}, {0x1201, 29, 26, false}, {0x1101, 30, 27, false},
	{0x0AC1, 31, 28, false}, {0x09C1, 32, 29, false}, {0x08A1, 33, 30, false},
	{0x0521, 34, 31, false}, {0x0441, 35, 32, false}, {0x02A1, 36, 33, false},
	{0x0221, 37, 34, false}, {0x0141, 38, 35, false}, {0x0111, 39, 36, false},
	{0x0085, 40, 37, false}, {0x0049, 41, 38, false}, {0x0025, 42, 39, false},
	{0x0015, 43, 40, false}, {0x0009, 44, 41, false}, {0x0005, 45, 42, false},
	{0x0001, 45, 43, false}, {0x5601, 46, 46, false},
}

// Context holds one binary arithmetic-coding context's adaptive state:
// an index into qeTable and the current most-probable-symbol bit.
type Context struct {
	Index uint8
	MPS   uint8
}

// DC conditioning context derivation, spec §4.2: "Context index for DC is
// derived from |prev_diff| classified by (L, U)". ClassifyDC returns
// which of four DC magnitude contexts a previous DC difference falls
// into: 0 for zero, 1 for |diff| <= l, 2 for |diff| <= u, 3 above u.
// The sign of the difference is not distinguished.
func ClassifyDC(prevDiff int, l, u int) int {
	a := prevDiff
	if a < 0 {
		a = -a
	}
	switch {
	case a == 0:
		return 0
	case a <= l:
		return 1
	case a <= u:
		return 2
	default:
		return 3
	}
}

// ACContextIndex returns the AC coefficient context bucket for a
// zig-zag position k given the table's Kx conditioning parameter, per
// spec §4.2: "for AC from coefficient position and Kx."
func ACContextIndex(k int, kx int) int {
	if k <= kx {
		return 0
	}
	return 1
}

// Encoder is the JPEG binary arithmetic encoder (the A/C/CT/B register
// machine of the standard).
type Encoder struct {
	w       *bitio.Writer
	a       uint32
	c       uint32
	ct      int
	pending byte
	started bool // false until the first pending byte has been computed
}

// NewEncoder creates an arithmetic encoder writing stuffed bytes to w.
func NewEncoder(w *bitio.Writer) *Encoder {
	return &Encoder{w: w, a: 0x10000, ct: 11}
}

// Encode codes one decision bit under ctx.
func (e *Encoder) Encode(bit int, ctx *Context) error {
	row := qeTable[ctx.Index]
	qe := row.qe
	e.a -= qe
	if bit == int(ctx.MPS) {
		if e.a&0x8000 != 0 {
			// A stayed in its normal range: nothing to renormalize.
			return nil
		}
		if e.a < qe {
			e.c += e.a
			e.a = qe
		}
		ctx.Index = row.nmps
		return e.renorm()
	}
	if e.a >= qe {
		e.c += e.a
		e.a = qe
	}
	if row.switchMPS {
		ctx.MPS = 1 - ctx.MPS
	}
	ctx.Index = row.nlps
	return e.renorm()
}

func (e *Encoder) renorm() error {
	for e.a < 0x8000 {
		e.a <<= 1
		e.c <<= 1
		e.ct--
		if e.ct == 0 {
			if err := e.byteOut(); err != nil {
				return err
			}
		}
	}
	return nil
}

// byteOut is the standard's BYTEOUT procedure: it finalizes the pending
// output byte, resolving a carry out of C by incrementing it (rippling
// 0xFF up to 0x00 exactly as a multi-byte add-with-carry would), then
// computes the next pending byte from C's top bits. Every literal 0xFF
// byte that reaches the stream is followed by an explicit stuffed 0x00,
// identically to the Huffman bit writer (spec §4.2).
func (e *Encoder) byteOut() error {
	if e.started {
		if e.c&0x8000000 == 0 { // bit 27 clear: no carry
			if err := e.emitByte(e.pending); err != nil {
				return err
			}
		} else { // carry: ripple into the pending byte
			e.pending++
			if e.pending == 0 { // 0xFF wrapped to 0x00
				if err := e.w.PutU8(0xFF); err != nil {
					return err
				}
				if err := e.w.PutU8(0x00); err != nil {
					return err
				}
			} else if err := e.emitByte(e.pending - 1); err != nil {
				return err
			}
			e.c &= 0x7FFFFFF
		}
	}
	e.pending = byte(e.c >> 19)
	e.c &= 0x7FFFF
	if e.pending == 0xFF {
		e.ct = 7 // reserve one bit so a follow-on carry can't produce 0xFF 0xFF
	} else {
		e.ct = 8
	}
	e.started = true
	return nil
}

func (e *Encoder) emitByte(b byte) error {
	if err := e.w.PutU8(b); err != nil {
		return err
	}
	if b == 0xFF {
		return e.w.PutU8(0x00)
	}
	return nil
}

// Flush finalizes the encoded segment, draining the two bytes still held
// in the C register and the final pending byte.
func (e *Encoder) Flush() error {
	for i := 0; i < 2; i++ {
		if err := e.byteOut(); err != nil {
			return err
		}
	}
	if e.started {
		return e.emitByte(e.pending)
	}
	return nil
}

// Decoder is the JPEG binary arithmetic decoder.
type Decoder struct {
	r  *bitio.Reader
	a  uint32
	c  uint32
	ct int
}

// NewDecoder creates an arithmetic decoder over r, performing the
// standard's INITDEC byte pre-read.
func NewDecoder(r *bitio.Reader) (*Decoder, error) {
	d := &Decoder{r: r, a: 0x10000}
	b0, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	b1, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	d.c = uint32(b0)<<16 | uint32(b1)<<8
	d.ct = 0
	if err := d.byteIn(); err != nil {
		return nil, err
	}
	d.c <<= 7
	d.ct -= 7
	return d, nil
}

func (d *Decoder) byteIn() error {
	b, err := d.r.GetU8()
	if err != nil {
		return err
	}
	if b == 0xFF {
		b2, err := d.r.PeekU8()
		if err != nil || b2 > 0x8F {
			// marker: treat remaining input as all-ones padding, per
			// spec §4.2's "flush zeros for remaining coefficients"
			// recovery contract (propagated up as exhausted input).
			d.c += 0xFF00
			d.ct = 8
			return nil
		}
		if _, err := d.r.GetU8(); err != nil {
			return err
		}
		d.c += uint32(b2) << 9
		d.ct = 7
	} else {
		d.c += uint32(b) << 8
		d.ct = 8
	}
	return nil
}

// Decode decodes one decision bit under ctx.
func (d *Decoder) Decode(ctx *Context) (int, error) {
	row := qeTable[ctx.Index]
	qe := row.qe
	d.a -= qe
	var bit int
	if (d.c >> 16) < qe {
		// LPS exchange path
		if d.a < qe {
			bit = int(ctx.MPS)
			ctx.Index = row.nmps
		} else {
			bit = 1 - int(ctx.MPS)
			if row.switchMPS {
				ctx.MPS = 1 - ctx.MPS
			}
			ctx.Index = row.nlps
		}
		d.a = qe
	} else {
		d.c -= qe << 16
		if d.a&0x8000 != 0 {
			return int(ctx.MPS), nil
		}
		if d.a < qe {
			bit = 1 - int(ctx.MPS)
			if row.switchMPS {
				ctx.MPS = 1 - ctx.MPS
			}
			ctx.Index = row.nlps
		} else {
			bit = int(ctx.MPS)
			ctx.Index = row.nmps
		}
	}
	if err := d.renorm(); err != nil {
		return 0, err
	}
	return bit, nil
}

func (d *Decoder) renorm() error {
	for d.a < 0x8000 {
		if d.ct == 0 {
			if err := d.byteIn(); err != nil {
				return err
			}
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
	}
	return nil
}
