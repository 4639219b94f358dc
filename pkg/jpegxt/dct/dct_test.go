package dct_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardInverseBlockRoundTrip(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 1 // unit quantizer: transform should round-trip near-exactly
	}
	q := dct.NewQuantTable(raw)

	var samples [64]int32
	for i := range samples {
		samples[i] = int32(i%17) - 8
	}

	coeffs := dct.ForwardBlock(&samples, q)
	recon := dct.InverseBlock(&coeffs, q)

	for i := range samples {
		assert.InDelta(t, samples[i], recon[i], 2, "sample %d: %d vs %d", i, samples[i], recon[i])
	}
}

func TestForwardBlockDCOnly(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 16
	}
	q := dct.NewQuantTable(raw)

	var samples [64]int32
	for i := range samples {
		samples[i] = 5 // flat block: only DC should be nonzero
	}

	coeffs := dct.ForwardBlock(&samples, q)
	require.NotZero(t, coeffs[0])
	for i := 1; i < 64; i++ {
		assert.Zero(t, coeffs[i], "AC coefficient %d should be zero for a flat block", i)
	}
}

func TestScaleQuantTableMonotonicAroundQuality50(t *testing.T) {
	base := [64]uint16{}
	for i := range base {
		base[i] = 16
	}
	low := dct.ScaleQuantTable(base, 10)
	mid := dct.ScaleQuantTable(base, 50)
	high := dct.ScaleQuantTable(base, 95)

	assert.Greater(t, low[0], mid[0], "low quality should produce coarser (larger) steps")
	assert.GreaterOrEqual(t, mid[0], high[0], "high quality should produce finer (smaller or equal) steps")
}

func TestLiftingBlockRoundTripExactWithUnitQuantizer(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 1
	}
	q := dct.NewLiftingQuantTable(raw, false)

	var samples [64]int32
	for i := range samples {
		samples[i] = int32(i%23) - 11
	}

	coeffs := dct.ForwardLiftingBlock(&samples, q)
	recon := dct.InverseLiftingBlock(&coeffs, q)

	assert.Equal(t, samples, recon, "the reversible lifting transform must round-trip exactly")
}

func TestLiftingBlockDCOnlyForFlatBlock(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 1
	}
	q := dct.NewLiftingQuantTable(raw, false)

	var samples [64]int32
	for i := range samples {
		samples[i] = 7
	}

	coeffs := dct.ForwardLiftingBlock(&samples, q)
	recon := dct.InverseLiftingBlock(&coeffs, q)
	assert.Equal(t, samples, recon)
}

func TestQuantizeDeadZoneWidensZeroBin(t *testing.T) {
	scale := float32(1.0)
	small := dct.QuantizeDeadZone(0.3, scale)
	assert.Zero(t, small, "a small AC value should fall inside the widened dead zone")

	large := dct.QuantizeDeadZone(0.9, scale)
	assert.NotZero(t, large, "a value past the dead zone threshold should still quantize nonzero")
}
