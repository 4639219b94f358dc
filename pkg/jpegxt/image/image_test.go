package image_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePyramidBaseOnly(t *testing.T) {
	base := image.Level{Kind: image.KindBase, Width: 2, Height: 2, Plane: []float32{1, 2, 3, 4}}
	out, err := image.ComposePyramid([]image.Level{base}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, out)
}

func TestComposePyramidUpsamplesToTarget(t *testing.T) {
	base := image.Level{Kind: image.KindBase, Width: 1, Height: 1, Plane: []float32{7}}
	out, err := image.ComposePyramid([]image.Level{base}, 2, 2)
	require.NoError(t, err)
	require.Len(t, out, 4)
	for _, v := range out {
		assert.InDelta(t, 7, v, 0.001)
	}
}

func TestComposePyramidAppliesDifferentialLevel(t *testing.T) {
	base := image.Level{Kind: image.KindBase, Width: 1, Height: 1, Plane: []float32{10}}
	diff := image.Level{Kind: image.KindLosslessDifferential, Width: 1, Height: 1, Plane: []float32{5}}
	out, err := image.ComposePyramid([]image.Level{base, diff}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{15}, out)
}

func TestComposePyramidRejectsSecondNonDifferentialLevel(t *testing.T) {
	base := image.Level{Kind: image.KindBase, Width: 1, Height: 1, Plane: []float32{1}}
	second := image.Level{Kind: image.KindDCTApproximation, Width: 1, Height: 1, Plane: []float32{2}}
	_, err := image.ComposePyramid([]image.Level{base, second}, 1, 1)
	assert.Error(t, err)
}

func TestComposePyramidRejectsEmpty(t *testing.T) {
	_, err := image.ComposePyramid(nil, 1, 1)
	assert.Error(t, err)
}

func TestApplyAndExtractResidualRoundTrip(t *testing.T) {
	source := []float32{10, 20, 30}
	base := []float32{9, 19, 33}

	residual := image.ExtractResidual(source, base)
	recon := image.ApplyResidual(base, residual)

	for i := range source {
		assert.InDelta(t, source[i], recon[i], 0.0001)
	}
}

func TestSplitMergeHiddenDCTRoundTrip(t *testing.T) {
	var coeffs [64]int32
	for i := range coeffs {
		coeffs[i] = int32(i*7 - 200)
	}
	coarse, refine := image.SplitHiddenDCT(&coeffs, 2)
	merged := image.MergeHiddenDCT(&coarse, &refine, 2)
	assert.Equal(t, coeffs, merged)
}

func TestSplitHiddenDCTZeroBitsIsIdentity(t *testing.T) {
	var coeffs [64]int32
	coeffs[0] = 42
	coeffs[5] = -13
	coarse, refine := image.SplitHiddenDCT(&coeffs, 0)
	assert.Equal(t, coeffs, coarse)
	for _, r := range refine {
		assert.Zero(t, r)
	}
}

func TestResolveHeightRejectsFewerRowsThanDecoded(t *testing.T) {
	_, err := image.ResolveHeight(10, 2, 8)
	assert.Error(t, err, "16 lines already decoded, DNL cannot declare fewer than that")

	got, err := image.ResolveHeight(20, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, got)
}

func TestDequantizeWithDeadZoneDCUsesPlainRounding(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 8
	}
	q := dct.NewQuantTable(raw)

	var unquantized [64]float32
	unquantized[0] = 2.5
	unquantized[1] = 0.3 // same order of magnitude, but AC index 1 goes through the dead zone

	out := image.DequantizeWithDeadZone(unquantized, q)
	assert.Equal(t, int32(unquantized[0]*q.Forward[0]+0.5), out[0], "DC must use plain rounding, not the AC dead zone")
	assert.Zero(t, out[1], "a small AC value must fall inside the widened dead zone")
}
