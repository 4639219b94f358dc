package scan_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressiveDCFirstAndRefineRoundTrip(t *testing.T) {
	dcTable := exhaustiveTable(t, []byte{0, 1, 2, 3, 4, 5, 6})
	const al byte = 2
	dc := int32(100)

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	pred := scan.NewPredictor(1)
	require.NoError(t, scan.EncodeDCFirst(bw, dcTable, 0, dc, al, pred))
	require.NoError(t, scan.EncodeDCRefine(bw, dc, al-1))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decPred := scan.NewPredictor(1)
	coarse, err := scan.DecodeDCFirst(br, dcTable, 0, al, decPred)
	require.NoError(t, err)

	require.NoError(t, scan.DecodeDCRefine(br, &coarse, al-1))

	want := (dc>>al)<<al | ((dc>>(al-1))&1)<<(al-1)
	assert.Equal(t, want, coarse, "coarse DC plus one refinement bit must reproduce those two bit positions exactly")
}

func TestProgressiveACFirstPassRoundTripWithEOBRun(t *testing.T) {
	// blockA's nonzero value at k=3 has zeroRun=2 (k=1,2 are zero) and
	// cat(8)=4, giving run/cat symbol 0x24; the trailing EOB run over
	// blockA's tail plus all of blockB is a run of 2 blocks, flushed as
	// 0x10 (r=1) plus one extra bit 0.
	acTable := exhaustiveTable(t, []byte{0x00, 0x10, 0xF0, 0x24})

	blockA := [64]int32{}
	blockA[scan.ZigZag[3]] = 8 // nonzero, survives an Al=0 shift

	blockB := [64]int32{} // all-zero band: should produce a pending EOB run

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	run := &scan.EOBRun{}
	require.NoError(t, scan.EncodeACFirst(bw, acTable, &blockA, 1, 63, 0, run))
	require.NoError(t, scan.EncodeACFirst(bw, acTable, &blockB, 1, 63, 0, run))
	require.NoError(t, scan.FlushPendingEOBRun(bw, acTable, run))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decRun := &scan.EOBRun{}
	var outA, outB [64]int32
	require.NoError(t, scan.DecodeACFirst(br, acTable, &outA, 1, 63, 0, decRun))
	require.NoError(t, scan.DecodeACFirst(br, acTable, &outB, 1, 63, 0, decRun))

	assert.Equal(t, blockA, outA)
	assert.Equal(t, blockB, outB)
}
