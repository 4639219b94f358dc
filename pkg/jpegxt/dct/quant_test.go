package dct_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/dct"
	"github.com/stretchr/testify/assert"
)

func TestEstimateLambdaGrowsWithACEnergy(t *testing.T) {
	var quiet, busy [64]float32
	for i := 1; i < 64; i++ {
		busy[i] = 50
	}
	assert.Less(t, dct.EstimateLambda(&quiet), dct.EstimateLambda(&busy))
}

func TestOptimizeRDNeverTouchesDC(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 8
	}
	q := dct.NewQuantTable(raw)

	quantized := [64]int32{}
	quantized[0] = 99
	rd := &dct.RDBlock{Quant: q}
	rd.Unquantized[0] = 12345 // would look very wrong if OptimizeRD touched it

	dct.OptimizeRD(&quantized, rd, 0.1)
	assert.EqualValues(t, 99, quantized[0], "DC must be left untouched by the R/D pass")
}

func TestOptimizeRDPicksCloserNeighborWhenCheaper(t *testing.T) {
	raw := [64]uint16{}
	for i := range raw {
		raw[i] = 8
	}
	q := dct.NewQuantTable(raw)

	quantized := [64]int32{}
	quantized[5] = 10
	rd := &dct.RDBlock{Quant: q}
	// Set the true unquantized value so it reconstructs much closer to
	// (base-1)*invScale than to base*invScale, at a lambda small enough
	// that the distortion gain dominates the rate penalty.
	rd.Unquantized[5] = float32(9) * q.Inverse[5]

	dct.OptimizeRD(&quantized, rd, 0.0001)
	assert.EqualValues(t, 9, quantized[5])
}
