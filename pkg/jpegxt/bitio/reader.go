// Package bitio implements the buffered byte stream of spec §4.1 (C1): a
// buffered bidirectional octet stream over an external I/O callback, with
// a one-byte-guaranteed unget and the peek/seek primitives the marker
// finder (C8) and entropy layer (C2) need. Byte-stuffing is deliberately
// not handled here — spec §4.1 assigns that to the entropy layer.
package bitio

import (
	"bufio"
	"io"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
)

// Reader is the decoder-side byte stream. It wraps an io.Reader (ideally
// also an io.Seeker, for seek_to); when the underlying transport isn't
// seekable, Skip still works by discarding buffered bytes.
type Reader struct {
	br       *bufio.Reader
	seeker   io.Seeker
	pos      int64
	ungetB   byte
	hasUnget bool
}

// NewReader wraps r. If r implements io.Seeker, SeekTo is available;
// otherwise SeekTo returns a MalformedStream error for any offset.
func NewReader(r io.Reader) *Reader {
	seeker, _ := r.(io.Seeker)
	return &Reader{br: bufio.NewReaderSize(r, 32*1024), seeker: seeker}
}

// GetU8 reads one byte, failing with UnexpectedEOF at end of stream.
func (r *Reader) GetU8() (byte, error) {
	if r.hasUnget {
		r.hasUnget = false
		return r.ungetB, nil
	}
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, xerrors.Errf(xerrors.UnexpectedEOF, err, "byte stream exhausted")
	}
	r.pos++
	return b, nil
}

// PeekU8 returns the next byte without consuming it.
func (r *Reader) PeekU8() (byte, error) {
	if r.hasUnget {
		return r.ungetB, nil
	}
	b, err := r.br.Peek(1)
	if err != nil {
		return 0, xerrors.Errf(xerrors.UnexpectedEOF, err, "byte stream exhausted")
	}
	return b[0], nil
}

// PeekU16 peeks two bytes big-endian without consuming them, used by the
// marker finder to test for 0xFFxx without committing to a read.
func (r *Reader) PeekU16() (uint16, error) {
	if r.hasUnget {
		b, err := r.br.Peek(1)
		if err != nil {
			return 0, xerrors.Errf(xerrors.UnexpectedEOF, err, "byte stream exhausted")
		}
		return uint16(r.ungetB)<<8 | uint16(b[0]), nil
	}
	b, err := r.br.Peek(2)
	if err != nil {
		return 0, xerrors.Errf(xerrors.UnexpectedEOF, err, "byte stream exhausted")
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// UngetU8 pushes one byte back. Only one byte of unget is guaranteed, per
// spec §4.1; a second call before an intervening GetU8 overwrites the
// first.
func (r *Reader) UngetU8(b byte) {
	r.ungetB = b
	r.hasUnget = true
}

// GetU16BE reads a big-endian 16-bit value.
func (r *Reader) GetU16BE() (uint16, error) {
	hi, err := r.GetU8()
	if err != nil {
		return 0, err
	}
	lo, err := r.GetU8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Read fills buf fully or fails with UnexpectedEOF, honoring a pending
// unget byte as its first output byte.
func (r *Reader) Read(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	i := 0
	if r.hasUnget {
		buf[0] = r.ungetB
		r.hasUnget = false
		i = 1
	}
	if i < len(buf) {
		n, err := io.ReadFull(r.br, buf[i:])
		r.pos += int64(n)
		if err != nil {
			return xerrors.Errf(xerrors.UnexpectedEOF, err, "short read (%d of %d bytes)", n, len(buf)-i)
		}
	}
	return nil
}

// Skip discards n bytes, buffering through them if the transport is not
// seekable.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if r.hasUnget {
		r.hasUnget = false
		n--
	}
	discarded, err := r.br.Discard(n)
	r.pos += int64(discarded)
	if err != nil {
		return xerrors.Errf(xerrors.UnexpectedEOF, err, "skip past end of stream")
	}
	return nil
}

// SeekTo repositions a seekable underlying stream to an absolute offset.
// The decoder stream is read-only, so this is the only positioning
// primitive besides Skip.
func (r *Reader) SeekTo(off int64) error {
	if r.seeker == nil {
		return xerrors.Errf(xerrors.MalformedStream, nil, "seek_to requires a seekable stream")
	}
	if _, err := r.seeker.Seek(off, io.SeekStart); err != nil {
		return xerrors.Errf(xerrors.MalformedStream, err, "seek_to(%d) failed", off)
	}
	r.br.Reset(r.underlying())
	r.pos = off
	r.hasUnget = false
	return nil
}

func (r *Reader) underlying() io.Reader {
	return r.seeker.(io.Reader)
}

// Pos returns the number of bytes consumed so far (not counting an
// outstanding unget byte).
func (r *Reader) Pos() int64 { return r.pos }
