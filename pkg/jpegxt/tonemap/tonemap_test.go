package tonemap_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/tonemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLUTApplyClampsOutOfRange(t *testing.T) {
	l := tonemap.NewLUT([]uint32{10, 20, 30})
	assert.EqualValues(t, 10, l.Apply(-5))
	assert.EqualValues(t, 20, l.Apply(1))
	assert.EqualValues(t, 30, l.Apply(99))
}

func TestInvertIdentityLUTIsMonotone(t *testing.T) {
	forward := make([]uint32, 256)
	for i := range forward {
		forward[i] = uint32(i)
	}
	inv, err := tonemap.Invert(forward, 8)
	require.NoError(t, err)
	require.Len(t, inv.Table, 256)
	for i := 1; i < len(inv.Table); i++ {
		assert.GreaterOrEqual(t, inv.Table[i], inv.Table[i-1], "inverted LUT must stay monotone")
	}
}

func TestInvertFlatForwardRegionExpandsMonotonically(t *testing.T) {
	// A forward map with a long flat run in the middle (many HDR inputs
	// collapsing to the same LDR output), which the inverse must expand
	// back into an increasing run rather than leaving it degenerate.
	forward := make([]uint32, 1024)
	for i := range forward {
		switch {
		case i < 300:
			forward[i] = 0
		case i < 700:
			forward[i] = 128
		default:
			forward[i] = 255
		}
	}
	inv, err := tonemap.Invert(forward, 8)
	require.NoError(t, err)
	for i := 1; i < len(inv.Table); i++ {
		assert.GreaterOrEqual(t, inv.Table[i], inv.Table[i-1])
	}
}

func TestInvertRejectsOutOfRangeBits(t *testing.T) {
	_, err := tonemap.Invert([]uint32{0, 1}, 0)
	assert.Error(t, err)
	_, err = tonemap.Invert([]uint32{0, 1}, 17)
	assert.Error(t, err)
}

func TestHiddenDCTSplitMergeRoundTripPositiveAndNegative(t *testing.T) {
	for _, c := range []int32{0, 1, 255, -1, -255, 1000, -1000} {
		for k := 0; k <= 4; k++ {
			coarse, refine := tonemap.HiddenDCTSplit(c, k)
			got := tonemap.HiddenDCTMerge(coarse, refine, k)
			assert.Equal(t, c, got, "coeff=%d k=%d", c, k)
		}
	}
}
