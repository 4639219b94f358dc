package ls_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/entropy"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/ls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictMED(t *testing.T) {
	cases := []struct {
		name       string
		ra, rb, rc int32
		want       int32
	}{
		{"rc is max of ra,rb: predicts min", 10, 20, 25, 10},
		{"rc is min of ra,rb: predicts max", 10, 20, 5, 20},
		{"rc between: planar predictor", 10, 20, 15, 15},
		{"flat neighborhood", 7, 7, 7, 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ls.PredictMED(c.ra, c.rb, c.rc))
		})
	}
}

func TestQuantizeReconstructLosslessRoundTrip(t *testing.T) {
	for _, errVal := range []int32{-37, -1, 0, 1, 5, 100} {
		q := ls.Quantize(errVal, 0)
		assert.Equal(t, errVal, q, "NEAR=0 quantization must be the identity")

		got := ls.Reconstruct(50, q, 0, 255)
		assert.Equal(t, clampExpected(50+errVal, 255), got)
	}
}

func TestQuantizeNearLosslessBound(t *testing.T) {
	const near = 3
	for _, errVal := range []int32{-50, -10, -1, 0, 1, 10, 50} {
		q := ls.Quantize(errVal, near)
		recon := ls.Reconstruct(100, q, near, 255)
		diff := recon - (100 + errVal)
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, int32(near), "reconstructed sample must stay within NEAR of the original")
	}
}

func clampExpected(v, maxVal int32) int32 {
	if v < 0 {
		return 0
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

func TestContextIndexSymmetryAndSign(t *testing.T) {
	m := ls.NewModel(255, 0, 64)

	idx, sign := m.ContextIndex(0, 0, 0)
	assert.Equal(t, 0, idx)
	assert.Equal(t, int32(1), sign)

	posIdx, posSign := m.ContextIndex(10, 0, 0)
	negIdx, negSign := m.ContextIndex(-10, 0, 0)
	assert.Equal(t, posIdx, negIdx, "gradient sign flip must map to the same context by symmetry")
	assert.Equal(t, int32(1), posSign)
	assert.Equal(t, int32(-1), negSign)
}

func TestRunInterruptionContext(t *testing.T) {
	assert.Equal(t, 365, ls.RunInterruptionContext(10, 10))
	assert.Equal(t, 366, ls.RunInterruptionContext(10, 20))
}

func TestEncodeDecodeRowLosslessRoundTrip(t *testing.T) {
	prev := []int32{0, 0, 0, 0, 0, 0, 0, 0}
	curr := []int32{5, 5, 5, 5, 120, 121, 119, 200}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	encModel := ls.NewModel(255, 0, 64)
	require.NoError(t, ls.EncodeRow(bw, encModel, curr, prev))
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decModel := ls.NewModel(255, 0, 64)
	got := make([]int32, len(curr))
	require.NoError(t, ls.DecodeRow(br, decModel, got, prev))

	assert.Equal(t, curr, got, "lossless NEAR=0 round trip must reproduce the row exactly")
}
