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

func TestZigZagIsAPermutation(t *testing.T) {
	seen := make(map[int]bool)
	for _, idx := range scan.ZigZag {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 64)
		assert.False(t, seen[idx], "index %d repeated", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 64)
}

func exhaustiveTable(t *testing.T, symbols []byte) *entropy.Table {
	t.Helper()
	c := entropy.NewCounter()
	for _, s := range symbols {
		c.Count(s)
	}
	table, err := c.Build()
	require.NoError(t, err)
	return table
}

func TestSequentialBlockEncodeDecodeRoundTrip(t *testing.T) {
	dcSymbols := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	// run/cat symbols actually emitted below: (run=0,cat=3), (run=0,cat=2),
	// (run=7,cat=4) for the three nonzero ACs, plus the trailing EOB.
	acSymbols := []byte{0x00, 0x02, 0x03, 0x74}
	dcTable := exhaustiveTable(t, dcSymbols)
	acTable := exhaustiveTable(t, acSymbols)

	var coeffs [64]int32
	coeffs[0] = 37
	coeffs[scan.ZigZag[1]] = 5  // k=1, run=0, cat(5)=3
	coeffs[scan.ZigZag[2]] = -3 // k=2, run=0, cat(3)=2
	coeffs[scan.ZigZag[10]] = 9 // k=10, run=7 (k=3..9 zero), cat(9)=4

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	pred := scan.NewPredictor(1)
	require.NoError(t, scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &coeffs, pred))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decPred := scan.NewPredictor(1)
	var out [64]int32
	require.NoError(t, scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &out, decPred))

	assert.Equal(t, coeffs, out)
}

func TestSequentialBlockDCPredictionCarriesAcrossBlocks(t *testing.T) {
	dcTable := exhaustiveTable(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8})
	acTable := exhaustiveTable(t, []byte{0x00})

	var first, second [64]int32
	first[0] = 100
	second[0] = 105 // delta of +5 from the first block's DC

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	pred := scan.NewPredictor(1)
	require.NoError(t, scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &first, pred))
	require.NoError(t, scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &second, pred))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decPred := scan.NewPredictor(1)
	var outFirst, outSecond [64]int32
	require.NoError(t, scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &outFirst, decPred))
	require.NoError(t, scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &outSecond, decPred))

	assert.EqualValues(t, 100, outFirst[0])
	assert.EqualValues(t, 105, outSecond[0])
}

func TestPredictorResetZeroesDCState(t *testing.T) {
	dcTable := exhaustiveTable(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8})
	acTable := exhaustiveTable(t, []byte{0x00})

	var block [64]int32
	block[0] = 50

	pred := scan.NewPredictor(1)
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	require.NoError(t, scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &block, pred))
	pred.Reset()
	require.NoError(t, scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &block, pred))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decPred := scan.NewPredictor(1)
	var outFirst, outSecond [64]int32
	require.NoError(t, scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &outFirst, decPred))
	decPred.Reset()
	require.NoError(t, scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &outSecond, decPred))

	assert.EqualValues(t, 50, outFirst[0])
	assert.EqualValues(t, 50, outSecond[0], "a Reset between blocks must re-zero the DC predictor, not carry the delta")
}

func TestLosslessPredictEdgesAndPlanar(t *testing.T) {
	prevRow := []int32{10, 20, 30}
	currRow := []int32{5, 0, 0}

	assert.Equal(t, int32(128), scan.Predict(1, currRow, prevRow, 0, 0, 8), "top-left predicts from the half-range midpoint")
	assert.Equal(t, int32(5), scan.Predict(1, currRow, prevRow, 1, 0, 8), "first row predicts from the left neighbor")
	assert.Equal(t, int32(10), scan.Predict(1, currRow, prevRow, 0, 1, 8), "first column predicts from the sample above")

	// Interior sample: predictor 4 is the planar ra+rb-rc predictor.
	assert.Equal(t, currRow[0]+prevRow[1]-prevRow[0], scan.Predict(4, currRow, prevRow, 1, 1, 8))
}

func TestLosslessSampleEncodeDecodeRoundTrip(t *testing.T) {
	table := exhaustiveTable(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	prevRow := []int32{100, 110, 120}
	currRow := []int32{95, 0, 0}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	require.NoError(t, scan.EncodeLosslessSample(bw, table, 115, 4, currRow, prevRow, 1, 1, 8))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	got, err := scan.DecodeLosslessSample(br, table, 4, currRow, prevRow, 1, 1, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 115, got)
}
