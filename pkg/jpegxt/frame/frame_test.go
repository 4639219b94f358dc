package frame_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeometryMCUMath(t *testing.T) {
	comps := []frame.Component{
		{ID: 1, H: 2, V: 2},
		{ID: 2, H: 1, V: 1},
		{ID: 3, H: 1, V: 1},
	}
	g, err := frame.NewGeometry(100, 50, comps)
	require.NoError(t, err)

	assert.Equal(t, 2, g.HMax)
	assert.Equal(t, 2, g.VMax)
	assert.Equal(t, 16, g.MCUWidth)
	assert.Equal(t, 16, g.MCUHeight)
	assert.Equal(t, 7, g.MCUsPerRow, "ceil(100/16)")
	assert.Equal(t, 4, g.MCURows, "ceil(50/16)")

	w, h := g.ComponentGrid(1)
	assert.Equal(t, 50, w, "chroma grid halves the luma width for H=1,Hmax=2")
	assert.Equal(t, 25, h)

	assert.Equal(t, 4, g.BlocksPerMCU(0))
	assert.Equal(t, 1, g.BlocksPerMCU(1))
}

func TestTotalBlocksPerMCURejectsOverLimit(t *testing.T) {
	comps := []frame.Component{
		{ID: 1, H: 4, V: 4},
		{ID: 2, H: 4, V: 4},
		{ID: 3, H: 4, V: 4},
	}
	g, err := frame.NewGeometry(64, 64, comps)
	require.NoError(t, err)

	_, err = g.TotalBlocksPerMCU([]int{0, 1, 2})
	assert.Error(t, err, "48 interleaved blocks exceeds the 10-block MCU limit")

	n, err := g.TotalBlocksPerMCU([]int{0})
	require.NoError(t, err)
	assert.Equal(t, 16, n, "a single non-interleaved component is never limit-checked")
}

func TestNewGeometryRejectsBadSampling(t *testing.T) {
	_, err := frame.NewGeometry(8, 8, []frame.Component{{ID: 1, H: 5, V: 1}})
	assert.Error(t, err)

	_, err = frame.NewGeometry(8, 8, nil)
	assert.Error(t, err, "zero components is invalid")
}

func TestBlockBufferSizingAndMutation(t *testing.T) {
	comps := []frame.Component{{ID: 1, H: 2, V: 1}, {ID: 2, H: 1, V: 1}}
	g, err := frame.NewGeometry(32, 16, comps)
	require.NoError(t, err)

	bb := frame.NewBlockBuffer(g)
	blk := bb.Block(0, 0)
	blk[0] = 99
	assert.Equal(t, int32(99), bb.Block(0, 0)[0], "Block must return a pointer into shared storage")

	bb.Release()
}

func TestUpsampleIdentityWhenSameSize(t *testing.T) {
	src := []int32{1, 2, 3, 4}
	got := frame.Upsample(src, 2, 2, 2, 2)
	assert.Equal(t, src, got)
}

func TestDownsampleAreaAverage(t *testing.T) {
	src := []int32{0, 0, 100, 100}
	got := frame.Downsample(src, 2, 2, 1, 1)
	require.Len(t, got, 1)
	assert.InDelta(t, 50, got[0], 1)
}

func TestUpsampleThenDownsampleStaysClose(t *testing.T) {
	src := make([]int32, 4*4)
	for i := range src {
		src[i] = int32(i * 10)
	}
	up := frame.Upsample(src, 4, 4, 8, 8)
	down := frame.Downsample(up, 8, 8, 4, 4)
	require.Len(t, down, len(src))
	for i := range src {
		assert.InDelta(t, src[i], down[i], 15)
	}
}
