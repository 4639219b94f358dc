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

func TestDriverEncodeDecodeWithRestarts(t *testing.T) {
	const mcusTotal = 5
	const restartInterval = 2
	dcTable := exhaustiveTable(t, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	acTable := exhaustiveTable(t, []byte{0x00})

	values := []int32{10, 20, 30, 40, 50}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	pred := scan.NewPredictor(1)
	drv := scan.NewDriver(mcusTotal, restartInterval)
	for !drv.Done() {
		code := func(mcuIndex int) error {
			var block [64]int32
			block[0] = values[mcuIndex]
			return scan.EncodeSequentialBlock(bw, dcTable, acTable, 0, &block, pred)
		}
		require.NoError(t, drv.StepEncode(bw, w, code, pred, nil))
	}
	require.NoError(t, bw.FlushScan())
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)
	br := entropy.NewBitReader(r)
	decPred := scan.NewPredictor(1)
	decDrv := scan.NewDriver(mcusTotal, restartInterval)
	got := make([]int32, mcusTotal)
	for !decDrv.Done() {
		code := func(mcuIndex int) error {
			var block [64]int32
			if err := scan.DecodeSequentialBlock(br, dcTable, acTable, 0, &block, decPred); err != nil {
				return err
			}
			got[mcuIndex] = block[0]
			return nil
		}
		require.NoError(t, decDrv.StepDecode(br, r, code, decPred, nil))
	}

	assert.Equal(t, values, got)
}

func TestDriverRejectsStepAfterDone(t *testing.T) {
	drv := scan.NewDriver(1, 0)
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	bw := entropy.NewBitWriter(w)
	noop := func(int) error { return nil }

	require.NoError(t, drv.StepEncode(bw, w, noop, nil, nil))
	assert.True(t, drv.Done())

	err := drv.StepEncode(bw, w, noop, nil, nil)
	assert.Error(t, err)
}
