// Package marker implements spec §4.8 (C8): parsing and writing of JPEG
// marker segments. Every marker is a 0xFF byte followed by a non-zero
// type byte; all markers except SOI/EOI/RSTn carry a 16-bit big-endian
// segment length that includes the two length bytes themselves.
//
// Grounded on the teacher's marker constant block (pkg/compress/jpeg2k/
// markers.go), retargeted from JPEG 2000's marker set to T.81/18477's.
package marker

import (
	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// Code is a JPEG marker type byte (the byte following 0xFF).
type Code byte

// Marker codes, ITU-T T.81 Table B.1 plus the JPEG XT extensions of
// ISO/IEC 18477 (carried in APPn boxes, not new marker codes).
const (
	SOI Code = 0xD8 // Start of image
	EOI Code = 0xD9 // End of image

	SOF0 Code = 0xC0 // Baseline DCT, Huffman
	SOF1 Code = 0xC1 // Extended sequential DCT, Huffman
	SOF2 Code = 0xC2 // Progressive DCT, Huffman
	SOF3 Code = 0xC3 // Lossless, Huffman

	SOF5 Code = 0xC5 // Differential sequential DCT, Huffman
	SOF6 Code = 0xC6 // Differential progressive DCT, Huffman
	SOF7 Code = 0xC7 // Differential lossless, Huffman

	SOF9  Code = 0xC9 // Extended sequential DCT, arithmetic
	SOF10 Code = 0xCA // Progressive DCT, arithmetic
	SOF11 Code = 0xCB // Lossless, arithmetic

	SOF13 Code = 0xCD // Differential sequential DCT, arithmetic
	SOF14 Code = 0xCE // Differential progressive DCT, arithmetic

	DHT Code = 0xC4 // Huffman table definition
	DAC Code = 0xCC // Arithmetic conditioning table
	DQT Code = 0xDB // Quantization table definition
	DRI Code = 0xDD // Restart interval definition
	DNL Code = 0xDC // Define number of lines

	SOS Code = 0xDA // Start of scan
	COM Code = 0xFE // Comment

	RST0 Code = 0xD0
	RST7 Code = 0xD7

	APP0 Code = 0xE0
	APPF Code = 0xEF

	TEM Code = 0x01 // Temporary private use, standalone like RST/SOI
)

// IsRestart reports whether c is one of RST0..RST7.
func IsRestart(c Code) bool { return c >= RST0 && c <= RST7 }

// IsApp reports whether c is one of APP0..APPF.
func IsApp(c Code) bool { return c >= APP0 && c <= APPF }

// IsStandalone reports whether c carries no length-prefixed segment body
// (SOI, EOI, RSTn, and TEM all stand alone per spec §4.8).
func IsStandalone(c Code) bool {
	return c == SOI || c == EOI || c == TEM || IsRestart(c)
}

// Segment is one parsed marker segment: the code plus its raw payload
// (the bytes after the length field, excluding the length field itself).
// Standalone markers have a nil Payload.
type Segment struct {
	Code    Code
	Payload []byte
}

// Find scans forward from the current read position for the next 0xFF
// marker byte, skipping any fill bytes (0xFF 0xFF runs collapse to the
// last 0xFF) per T.81's marker-scanning convention, and returns its code.
// It does not consume the marker's payload.
func Find(r *bitio.Reader) (Code, error) {
	for {
		b, err := r.GetU8()
		if err != nil {
			return 0, err
		}
		if b != 0xFF {
			return 0, xerrors.Errf(xerrors.MalformedStream, nil, "expected marker 0xFF, got 0x%02X", b)
		}
		code, err := r.GetU8()
		if err != nil {
			return 0, err
		}
		for code == 0xFF {
			// fill byte run, per T.81 B.1.1.5: the code is the first
			// byte after the run
			if code, err = r.GetU8(); err != nil {
				return 0, err
			}
		}
		if code == 0x00 {
			// an entropy-coded stuffed byte leaking into the marker
			// scanner (a decoder bug upstream)
			return 0, xerrors.Errf(xerrors.MalformedStream, nil, "stuffed byte found where a marker was expected")
		}
		return Code(code), nil
	}
}

// ReadSegment reads one length-prefixed segment's payload after its code
// has already been consumed by Find. Standalone codes must not be passed
// here; use IsStandalone to branch first.
func ReadSegment(r *bitio.Reader) ([]byte, error) {
	length, err := r.GetU16BE()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, xerrors.Errf(xerrors.MalformedStream, nil, "segment length %d is smaller than its own length field", length)
	}
	payload := make([]byte, int(length)-2)
	if err := r.Read(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// ReadOne consumes one complete segment (finding the marker, then reading
// its payload if it isn't standalone).
func ReadOne(r *bitio.Reader) (Segment, error) {
	code, err := Find(r)
	if err != nil {
		return Segment{}, err
	}
	if IsStandalone(code) {
		return Segment{Code: code}, nil
	}
	payload, err := ReadSegment(r)
	if err != nil {
		return Segment{}, err
	}
	return Segment{Code: code, Payload: payload}, nil
}

// SkipUnknown validates that an unrecognized marker is one the decoder
// may skip cleanly (spec §4.8: "Unrecognized markers in [FFC0, FFFE]
// with length prefix MUST be skipped cleanly; unrecognized markers
// outside that range fail").
func SkipUnknown(code Code) error {
	if code >= 0xC0 && code <= 0xFE {
		return nil
	}
	return xerrors.Errf(xerrors.MalformedStream, nil, "unrecognized marker 0xFF%02X outside the skippable range", byte(code))
}

// WriteStandalone writes a standalone marker (no length field).
func WriteStandalone(w *bitio.Writer, code Code) error {
	if err := w.PutU8(0xFF); err != nil {
		return err
	}
	return w.PutU8(byte(code))
}

// WriteSegment writes a length-prefixed marker segment.
func WriteSegment(w *bitio.Writer, code Code, payload []byte) error {
	if err := w.PutU8(0xFF); err != nil {
		return err
	}
	if err := w.PutU8(byte(code)); err != nil {
		return err
	}
	length := len(payload) + 2
	if length > 0xFFFF {
		return xerrors.Errf(xerrors.OverflowParam, nil, "segment payload too large: %d bytes", len(payload))
	}
	if err := w.PutU16BE(uint16(length)); err != nil {
		return err
	}
	return w.Write(payload)
}
