package marker

import "github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"

// FrameComponent is one component's entry in an SOF segment.
type FrameComponent struct {
	ID  byte
	H   byte // horizontal sampling factor
	V   byte // vertical sampling factor
	Tq  byte // quantization table selector
}

// FrameHeader is a decoded SOF segment.
type FrameHeader struct {
	Code       Code
	Precision  byte
	Height     uint16 // may be 0 pending a DNL segment
	Width      uint16
	Components []FrameComponent
}

// ParseFrameHeader decodes an SOF payload per T.81 Figure B.3.
func ParseFrameHeader(code Code, payload []byte) (FrameHeader, error) {
	if len(payload) < 6 {
		return FrameHeader{}, xerrors.Errf(xerrors.MalformedStream, nil, "SOF payload too short: %d bytes", len(payload))
	}
	nf := int(payload[5])
	want := 6 + nf*3
	if len(payload) != want {
		return FrameHeader{}, xerrors.Errf(xerrors.MalformedStream, nil, "SOF payload length %d, expected %d for %d components", len(payload), want, nf)
	}
	fh := FrameHeader{
		Code:      code,
		Precision: payload[0],
		Height:    uint16(payload[1])<<8 | uint16(payload[2]),
		Width:     uint16(payload[3])<<8 | uint16(payload[4]),
	}
	for i := 0; i < nf; i++ {
		b := payload[6+i*3:]
		fh.Components = append(fh.Components, FrameComponent{
			ID: b[0],
			H:  b[1] >> 4,
			V:  b[1] & 0x0F,
			Tq: b[2],
		})
	}
	return fh, nil
}

// Encode serializes a FrameHeader's payload (the caller supplies the
// marker code separately to WriteSegment).
func (fh FrameHeader) Encode() []byte {
	out := make([]byte, 6, 6+len(fh.Components)*3)
	out[0] = fh.Precision
	out[1] = byte(fh.Height >> 8)
	out[2] = byte(fh.Height)
	out[3] = byte(fh.Width >> 8)
	out[4] = byte(fh.Width)
	out[5] = byte(len(fh.Components))
	for _, c := range fh.Components {
		out = append(out, c.ID, c.H<<4|c.V, c.Tq)
	}
	return out
}

// ScanComponent is one component's entry in an SOS segment.
type ScanComponent struct {
	Selector byte
	Td       byte // DC table selector
	Ta       byte // AC table selector
}

// ScanHeader is a decoded SOS segment.
type ScanHeader struct {
	Components []ScanComponent
	Ss         byte // spectral selection start
	Se         byte // spectral selection end
	Ah         byte // successive approximation high bit
	Al         byte // successive approximation low bit
}

// ParseScanHeader decodes an SOS payload per T.81 Figure B.4.
func ParseScanHeader(payload []byte) (ScanHeader, error) {
	if len(payload) < 1 {
		return ScanHeader{}, xerrors.Errf(xerrors.MalformedStream, nil, "SOS payload too short")
	}
	ns := int(payload[0])
	want := 1 + ns*2 + 3
	if len(payload) != want {
		return ScanHeader{}, xerrors.Errf(xerrors.MalformedStream, nil, "SOS payload length %d, expected %d for %d components", len(payload), want, ns)
	}
	sh := ScanHeader{}
	for i := 0; i < ns; i++ {
		b := payload[1+i*2:]
		sh.Components = append(sh.Components, ScanComponent{
			Selector: b[0],
			Td:       b[1] >> 4,
			Ta:       b[1] & 0x0F,
		})
	}
	tail := payload[1+ns*2:]
	sh.Ss, sh.Se, sh.Ah, sh.Al = tail[0], tail[1], tail[2]>>4, tail[2]&0x0F
	return sh, nil
}

// Encode serializes a ScanHeader's payload.
func (sh ScanHeader) Encode() []byte {
	out := make([]byte, 1, 1+len(sh.Components)*2+3)
	out[0] = byte(len(sh.Components))
	for _, c := range sh.Components {
		out = append(out, c.Selector, c.Td<<4|c.Ta)
	}
	out = append(out, sh.Ss, sh.Se, sh.Ah<<4|sh.Al)
	return out
}

// HuffmanTableDef is one DHT table definition (a DHT segment may carry
// several, back to back).
type HuffmanTableDef struct {
	Class     byte // 0 = DC/lossless, 1 = AC
	Selector  byte
	Bits      [17]int
	Values    []byte
}

// ParseHuffmanTables decodes every table definition in a DHT payload.
func ParseHuffmanTables(payload []byte) ([]HuffmanTableDef, error) {
	var defs []HuffmanTableDef
	for len(payload) > 0 {
		if len(payload) < 17 {
			return nil, xerrors.Errf(xerrors.MalformedStream, nil, "truncated DHT table header")
		}
		tc := payload[0] >> 4
		th := payload[0] & 0x0F
		var bits [17]int
		total := 0
		for i := 1; i <= 16; i++ {
			bits[i] = int(payload[i])
			total += bits[i]
		}
		payload = payload[17:]
		if len(payload) < total {
			return nil, xerrors.Errf(xerrors.MalformedStream, nil, "truncated DHT values: need %d, have %d", total, len(payload))
		}
		defs = append(defs, HuffmanTableDef{
			Class:    tc,
			Selector: th,
			Bits:     bits,
			Values:   append([]byte(nil), payload[:total]...),
		})
		payload = payload[total:]
	}
	return defs, nil
}

// Encode serializes a slice of table definitions into one DHT payload.
func EncodeHuffmanTables(defs []HuffmanTableDef) []byte {
	var out []byte
	for _, d := range defs {
		out = append(out, d.Class<<4|d.Selector)
		for i := 1; i <= 16; i++ {
			out = append(out, byte(d.Bits[i]))
		}
		out = append(out, d.Values...)
	}
	return out
}

// QuantTableDef is one DQT table definition.
type QuantTableDef struct {
	Precision byte // 0 = 8-bit, 1 = 16-bit
	Selector  byte
	Values    [64]uint16 // in wire order; this module's DQT writer and reader use natural row-major order, not T.81 zig-zag
}

// ParseQuantTables decodes every table definition in a DQT payload.
func ParseQuantTables(payload []byte) ([]QuantTableDef, error) {
	var defs []QuantTableDef
	for len(payload) > 0 {
		pq := payload[0] >> 4
		tq := payload[0] & 0x0F
		payload = payload[1:]
		size := 64
		if pq == 1 {
			size = 128
		}
		if len(payload) < size {
			return nil, xerrors.Errf(xerrors.MalformedStream, nil, "truncated DQT values: need %d, have %d", size, len(payload))
		}
		var def QuantTableDef
		def.Precision, def.Selector = pq, tq
		if pq == 0 {
			for i := 0; i < 64; i++ {
				def.Values[i] = uint16(payload[i])
			}
		} else {
			for i := 0; i < 64; i++ {
				def.Values[i] = uint16(payload[i*2])<<8 | uint16(payload[i*2+1])
			}
		}
		defs = append(defs, def)
		payload = payload[size:]
	}
	return defs, nil
}

// EncodeQuantTables serializes a slice of table definitions into one DQT
// payload.
func EncodeQuantTables(defs []QuantTableDef) []byte {
	var out []byte
	for _, d := range defs {
		out = append(out, d.Precision<<4|d.Selector)
		if d.Precision == 0 {
			for _, v := range d.Values {
				out = append(out, byte(v))
			}
		} else {
			for _, v := range d.Values {
				out = append(out, byte(v>>8), byte(v))
			}
		}
	}
	return out
}

// ArithConditioning is one DAC table-conditioning entry.
type ArithConditioning struct {
	Class    byte
	Selector byte
	Value    byte
}

// ParseArithConditioning decodes a DAC payload.
func ParseArithConditioning(payload []byte) ([]ArithConditioning, error) {
	if len(payload)%2 != 0 {
		return nil, xerrors.Errf(xerrors.MalformedStream, nil, "DAC payload length %d is not a multiple of 2", len(payload))
	}
	var out []ArithConditioning
	for i := 0; i < len(payload); i += 2 {
		out = append(out, ArithConditioning{
			Class:    payload[i] >> 4,
			Selector: payload[i] & 0x0F,
			Value:    payload[i+1],
		})
	}
	return out, nil
}

// EncodeArithConditioning serializes DAC entries.
func EncodeArithConditioning(entries []ArithConditioning) []byte {
	out := make([]byte, 0, len(entries)*2)
	for _, e := range entries {
		out = append(out, e.Class<<4|e.Selector, e.Value)
	}
	return out
}

// ParseRestartInterval decodes a DRI payload.
func ParseRestartInterval(payload []byte) (uint16, error) {
	if len(payload) != 2 {
		return 0, xerrors.Errf(xerrors.MalformedStream, nil, "DRI payload must be 2 bytes, got %d", len(payload))
	}
	return uint16(payload[0])<<8 | uint16(payload[1]), nil
}

// EncodeRestartInterval serializes a DRI payload.
func EncodeRestartInterval(ri uint16) []byte {
	return []byte{byte(ri >> 8), byte(ri)}
}

// ParseDNL decodes a DNL payload (the deferred image height).
func ParseDNL(payload []byte) (uint16, error) {
	if len(payload) != 2 {
		return 0, xerrors.Errf(xerrors.MalformedStream, nil, "DNL payload must be 2 bytes, got %d", len(payload))
	}
	return uint16(payload[0])<<8 | uint16(payload[1]), nil
}

// EncodeDNL serializes a DNL payload.
func EncodeDNL(lines uint16) []byte {
	return []byte{byte(lines >> 8), byte(lines)}
}
