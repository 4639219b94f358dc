package bitio_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	require.NoError(t, w.PutU8(0x12))
	require.NoError(t, w.PutU16BE(0xABCD))
	require.NoError(t, w.Write([]byte{1, 2, 3}))
	require.NoError(t, w.Flush())
	assert.EqualValues(t, 6, w.Pos())

	r := bitio.NewReader(&buf)
	b, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	v, err := r.GetU16BE()
	require.NoError(t, err)
	assert.EqualValues(t, 0xABCD, v)

	rest := make([]byte, 3)
	require.NoError(t, r.Read(rest))
	assert.Equal(t, []byte{1, 2, 3}, rest)
	assert.EqualValues(t, 6, r.Pos())
}

func TestUngetReplaysByte(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0xAA, 0xBB}))
	b, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)

	r.UngetU8(b)
	replayed, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), replayed)

	next, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xBB), next)
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{0xFF, 0xD8, 0x01}))
	u16, err := r.PeekU16()
	require.NoError(t, err)
	assert.EqualValues(t, 0xFFD8, u16)

	b, err := r.PeekU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), b)

	got, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), got, "peeking must not have advanced the stream")
}

func TestSkipAndEOF(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	require.NoError(t, r.Skip(3))
	b, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(4), b)

	_, err = r.GetU8()
	require.NoError(t, err)
	_, err = r.GetU8()
	assert.Error(t, err, "reading past end of stream must fail")
}

func TestSeekToOnSeekableStream(t *testing.T) {
	r := bitio.NewReader(bytes.NewReader([]byte{10, 20, 30, 40}))
	require.NoError(t, r.SeekTo(2))
	b, err := r.GetU8()
	require.NoError(t, err)
	assert.Equal(t, byte(30), b)
}
