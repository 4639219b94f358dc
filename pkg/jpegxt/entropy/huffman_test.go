package entropy_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/stretchr/testify/require"
)

func TestBitWriterStuffsFFBytes(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)

	require.NoError(t, bw.WriteBits(0xFF, 8))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	got := buf.Bytes()
	require.GreaterOrEqual(t, len(got), 2)
	require.Equal(t, byte(0xFF), got[0])
	require.Equal(t, byte(0x00), got[1], "a literal 0xFF data byte must be followed by a stuffed 0x00")
}

func TestBitWriterBitReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)

	values := []struct {
		v uint32
		n int
	}{
		{0x1, 1}, {0x3, 2}, {0x7F, 7}, {0xABC, 12}, {0xFF, 8}, {0x0, 4},
	}
	for _, tc := range values {
		require.NoError(t, bw.WriteBits(tc.v, tc.n))
	}
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	for _, tc := range values {
		got, err := br.ReadBits(tc.n)
		require.NoError(t, err)
		require.Equal(t, tc.v, got)
	}
}

func TestCounterBuildProducesDecodableTable(t *testing.T) {
	c := entropy.NewCounter()
	// Skewed frequency distribution: a handful of very common symbols and
	// a long tail, so the canonical-length construction assigns a spread
	// of code lengths (up to 9 bits here, well inside the 16-bit limit).
	for i := 0; i < 200; i++ {
		c.Count(0)
	}
	for i := 0; i < 50; i++ {
		c.Count(1)
	}
	for sym := 2; sym < 100; sym++ {
		c.Count(byte(sym))
	}

	table, err := c.Build()
	require.NoError(t, err)
	require.NotEmpty(t, table.Values)

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	for _, sym := range table.Values {
		require.NoError(t, bw.WriteHuffman(table, sym))
	}
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	for _, want := range table.Values {
		got, err := br.DecodeHuffman(table)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestCounterDebugIDStableForSameFrequencies(t *testing.T) {
	a := entropy.NewCounter()
	b := entropy.NewCounter()
	for _, c := range []*entropy.Counter{a, b} {
		c.Count(5)
		c.Count(5)
		c.Count(9)
	}
	require.Equal(t, a.DebugID(), b.DebugID())

	c := entropy.NewCounter()
	c.Count(5)
	require.NotEqual(t, a.DebugID(), c.DebugID())
}
