// Package entropy implements spec §4.2 (C2): Huffman and arithmetic
// entropy coding with JPEG byte stuffing, plus the measurement pass used
// to build optimized Huffman tables before the real encode. Grounded on
// the teacher's bitReader/huffmanTable (pkg/compress/jpegli/scan.go) for
// the bit-level mechanics, generalized from that package's single
// predictive DC table to the full baseline/progressive DC+AC table set.
package entropy

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// Table is a derived Huffman code table built from (BITS, HUFFVAL) per
// spec §3's Huffman table data model.
type Table struct {
	Bits   [17]int // Bits[n] = number of codes of length n, n in 1..16
	Values []byte  // HUFFVAL, ordered by increasing code length then value order

	codes  []uint16 // parallel to Values: code bit pattern
	sizes  []uint8  // parallel to Values: code length
	lookup [256]int32 // 8-bit fast path: (size<<16)|value, or -1 if no code fits in 8 bits
	maxLen int
}

// NewTable derives a lookup Table from BITS/HUFFVAL, validating the
// invariants of spec §3: "the sum of code counts in any Huffman table
// must not exceed 256, and no code of length 16 has the reserved
// all-ones pattern."
func NewTable(bits [17]int, values []byte) (*Table, error) {
	total := 0
	for i := 1; i <= 16; i++ {
		total += bits[i]
	}
	if total > 256 {
		return nil, xerrors.Errf(xerrors.MalformedStream, nil, "huffman table has %d codes, max 256", total)
	}
	if total != len(values) {
		return nil, xerrors.Errf(xerrors.MalformedStream, nil, "BITS sums to %d but HUFFVAL has %d entries", total, len(values))
	}

	t := &Table{Bits: bits, Values: append([]byte(nil), values...)}
	t.codes = make([]uint16, total)
	t.sizes = make([]uint8, total)
	for i := range t.lookup {
		t.lookup[i] = -1
	}

	code := uint16(0)
	k := 0
	for size := 1; size <= 16; size++ {
		for n := 0; n < bits[size]; n++ {
			if size == 16 && code == 0xFFFF {
				return nil, xerrors.Errf(xerrors.MalformedStream, nil, "reserved all-ones code of length 16")
			}
			t.codes[k] = code
			t.sizes[k] = uint8(size)
			if size <= 8 {
				t.fillLookup(code, uint8(size), int32(values[k]))
			}
			k++
			code++
			t.maxLen = size
		}
		code <<= 1
	}
	return t, nil
}

// fillLookup populates every 8-bit lookup slot whose top `size` bits equal
// code, matching the teacher's ht.lookup[peek] fast path.
func (t *Table) fillLookup(code uint16, size uint8, value int32) {
	shift := 8 - int(size)
	base := int(code) << shift
	for i := 0; i < (1 << shift); i++ {
		t.lookup[base+i] = int32(size)<<16 | value
	}
}

// Encode returns the (code, size) pair for symbol, or InvalidHuffman if
// symbol isn't in the table (spec §7).
func (t *Table) Encode(symbol byte) (code uint16, size uint8, err error) {
	for i, v := range t.Values {
		if v == symbol {
			return t.codes[i], t.sizes[i], nil
		}
	}
	return 0, 0, xerrors.Errf(xerrors.InvalidHuffman, nil, "no code for symbol 0x%02X", symbol)
}

// BitWriter accumulates Huffman/coefficient bits MSB-first and emits
// stuffed bytes to a bitio.Writer, per spec §4.2: "Whenever a full 0xFF
// byte is flushed, the next byte written to C1 is a 0x00 stuffing byte."
type BitWriter struct {
	w    *bitio.Writer
	acc  uint32
	bits int
}

// NewBitWriter wraps w.
func NewBitWriter(w *bitio.Writer) *BitWriter {
	return &BitWriter{w: w}
}

// WriteBits appends the low n bits of value, MSB-first.
func (bw *BitWriter) WriteBits(value uint32, n int) error {
	if n == 0 {
		return nil
	}
	bw.acc = (bw.acc << n) | (value & ((1 << n) - 1))
	bw.bits += n
	for bw.bits >= 8 {
		bw.bits -= 8
		b := byte(bw.acc >> bw.bits)
		if err := bw.emit(b); err != nil {
			return err
		}
	}
	return nil
}

// WriteHuffman writes the table's code for symbol.
func (bw *BitWriter) WriteHuffman(t *Table, symbol byte) error {
	code, size, err := t.Encode(symbol)
	if err != nil {
		return err
	}
	return bw.WriteBits(uint32(code), int(size))
}

func (bw *BitWriter) emit(b byte) error {
	if err := bw.w.PutU8(b); err != nil {
		return err
	}
	if b == 0xFF {
		return bw.w.PutU8(0x00)
	}
	return nil
}

// FlushScan pads the remaining bits with ones (per spec §4.2: "On scan
// flush, pad remaining bits with ones") and emits them, leaving the
// stream byte-aligned for the next marker.
func (bw *BitWriter) FlushScan() error {
	if bw.bits == 0 {
		return nil
	}
	pad := 8 - bw.bits
	return bw.WriteBits(0xFFFFFFFF, pad)
}

// BitReader reads Huffman/coefficient bits from a bitio.Reader, unstuffing
// 0x00 bytes that follow 0xFF and stopping cleanly at a real marker so the
// scan driver can re-read it. Grounded on the teacher's bitReader in
// pkg/compress/jpegli/scan.go, generalized to the 16-bit Huffman
// lookahead baseline/progressive decoding needs.
type BitReader struct {
	r         *bitio.Reader
	acc       uint32
	bits      int
	atMarker  bool
	markerVal byte
}

// NewBitReader wraps r.
func NewBitReader(r *bitio.Reader) *BitReader {
	return &BitReader{r: r}
}

// AtMarker reports whether the reader has hit a marker (0xFF followed by a
// non-zero, non-stuffed byte) and stopped producing bits. The scan driver
// should stop pulling coefficients and let the marker parser (C8) take
// over the underlying stream once this is true.
func (br *BitReader) AtMarker() bool { return br.atMarker }

// fill tops up the bit accumulator by one byte, handling stuffing.
func (br *BitReader) fill() error {
	if br.atMarker {
		// Entropy segment ended at a marker; spec §4.2 says to flush
		// zeros for the remainder of the current block.
		br.acc <<= 8
		br.bits += 8
		return nil
	}
	if v, err := br.r.PeekU16(); err == nil && v > 0xFF00 {
		// A genuine marker. Both of its bytes are only peeked, so a
		// caller re-reading the marker finds its 0xFF lead byte next.
		// Remember we hit one so further fills synthesize zero bits
		// instead of erroring.
		br.markerVal = byte(v)
		br.atMarker = true
		br.acc <<= 8
		br.bits += 8
		return nil
	}
	b, err := br.r.GetU8()
	if err != nil {
		return err
	}
	if b == 0xFF {
		// stuffed byte: real data byte is 0xFF, drop the 0x00
		if _, err := br.r.GetU8(); err != nil {
			return err
		}
	}
	br.acc = (br.acc << 8) | uint32(b)
	br.bits += 8
	return nil
}

// ReadBit reads a single bit.
func (br *BitReader) ReadBit() (int, error) {
	if br.bits == 0 {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	br.bits--
	return int((br.acc >> br.bits) & 1), nil
}

// ReadBits reads n bits (n <= 24) as an unsigned value.
func (br *BitReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for br.bits < n {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	br.bits -= n
	return (br.acc >> br.bits) & ((1 << n) - 1), nil
}

// PeekBits returns the next n bits without consuming them (n <= 16).
func (br *BitReader) PeekBits(n int) (uint32, error) {
	for br.bits < n {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	return (br.acc >> (br.bits - n)) & ((1 << n) - 1), nil
}

func (br *BitReader) consume(n int) { br.bits -= n }

// DecodeHuffman decodes one symbol using t, failing with InvalidHuffman if
// no code matches within 16 bits (spec §4.2/§7).
func (br *BitReader) DecodeHuffman(t *Table) (byte, error) {
	if peek, err := br.PeekBits(8); err == nil {
		if entry := t.lookup[peek]; entry >= 0 {
			size := int(entry >> 16)
			br.consume(size)
			return byte(entry & 0xFF), nil
		}
	}
	code := uint32(0)
	k := 0
	for size := 1; size <= 16; size++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint32(bit)
		for n := 0; n < t.Bits[size]; n++ {
			if uint32(t.codes[k]) == code {
				return t.Values[k], nil
			}
			k++
		}
	}
	return 0, xerrors.Errf(xerrors.InvalidHuffman, nil, "no code matched within 16 bits (code=%016b)", code)
}

// AlignToByte discards any partial byte in the accumulator, as the scan
// driver must do before expecting a restart marker. If the reader has
// already hit that marker, the zero bits synthesized past it are dropped
// too and reading resumes from the stream after the marker is parsed.
func (br *BitReader) AlignToByte() {
	br.bits -= br.bits % 8
	if br.atMarker {
		br.bits = 0
		br.atMarker = false
	}
}
