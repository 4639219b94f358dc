package marker_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/bitio"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/marker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSegmentReadOneRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	require.NoError(t, marker.WriteStandalone(w, marker.SOI))
	require.NoError(t, marker.WriteSegment(w, marker.COM, []byte("hello")))
	require.NoError(t, marker.WriteStandalone(w, marker.EOI))
	require.NoError(t, w.Flush())

	r := bitio.NewReader(&buf)

	seg, err := marker.ReadOne(r)
	require.NoError(t, err)
	assert.Equal(t, marker.SOI, seg.Code)
	assert.Nil(t, seg.Payload)

	seg, err = marker.ReadOne(r)
	require.NoError(t, err)
	assert.Equal(t, marker.COM, seg.Code)
	assert.Equal(t, []byte("hello"), seg.Payload)

	seg, err = marker.ReadOne(r)
	require.NoError(t, err)
	assert.Equal(t, marker.EOI, seg.Code)
}

func TestFrameHeaderEncodeParseRoundTrip(t *testing.T) {
	fh := marker.FrameHeader{
		Code:      marker.SOF0,
		Precision: 8,
		Height:    480,
		Width:     640,
		Components: []marker.FrameComponent{
			{ID: 1, H: 2, V: 2, Tq: 0},
			{ID: 2, H: 1, V: 1, Tq: 1},
			{ID: 3, H: 1, V: 1, Tq: 1},
		},
	}
	got, err := marker.ParseFrameHeader(marker.SOF0, fh.Encode())
	require.NoError(t, err)
	assert.Equal(t, fh, got)
}

func TestScanHeaderEncodeParseRoundTrip(t *testing.T) {
	sh := marker.ScanHeader{
		Components: []marker.ScanComponent{
			{Selector: 1, Td: 0, Ta: 0},
			{Selector: 2, Td: 1, Ta: 1},
		},
		Ss: 0, Se: 63, Ah: 0, Al: 0,
	}
	got, err := marker.ParseScanHeader(sh.Encode())
	require.NoError(t, err)
	assert.Equal(t, sh, got)
}

func TestQuantTableDefEncodeParseRoundTrip(t *testing.T) {
	var values [64]uint16
	for i := range values {
		values[i] = uint16(i + 1)
	}
	defs := []marker.QuantTableDef{{Precision: 0, Selector: 0, Values: values}}
	got, err := marker.ParseQuantTables(marker.EncodeQuantTables(defs))
	require.NoError(t, err)
	assert.Equal(t, defs, got)
}

func TestQuantTableDef16BitEncodeParseRoundTrip(t *testing.T) {
	var values [64]uint16
	for i := range values {
		values[i] = uint16(300 + i)
	}
	defs := []marker.QuantTableDef{{Precision: 1, Selector: 2, Values: values}}
	got, err := marker.ParseQuantTables(marker.EncodeQuantTables(defs))
	require.NoError(t, err)
	assert.Equal(t, defs, got)
}

func TestHuffmanTableDefEncodeParseRoundTrip(t *testing.T) {
	var bits [17]int
	bits[1] = 1
	bits[3] = 2
	defs := []marker.HuffmanTableDef{
		{Class: 0, Selector: 0, Bits: bits, Values: []byte{5, 9, 200}},
	}
	got, err := marker.ParseHuffmanTables(marker.EncodeHuffmanTables(defs))
	require.NoError(t, err)
	assert.Equal(t, defs, got)
}

func TestRestartIntervalAndDNLRoundTrip(t *testing.T) {
	ri, err := marker.ParseRestartInterval(marker.EncodeRestartInterval(1024))
	require.NoError(t, err)
	assert.EqualValues(t, 1024, ri)

	lines, err := marker.ParseDNL(marker.EncodeDNL(3000))
	require.NoError(t, err)
	assert.EqualValues(t, 3000, lines)
}

func TestArithConditioningRoundTrip(t *testing.T) {
	entries := []marker.ArithConditioning{{Class: 0, Selector: 0, Value: 5}, {Class: 1, Selector: 1, Value: 63}}
	got, err := marker.ParseArithConditioning(marker.EncodeArithConditioning(entries))
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSkipUnknownRange(t *testing.T) {
	assert.NoError(t, marker.SkipUnknown(marker.Code(0xC0)))
	assert.NoError(t, marker.SkipUnknown(marker.Code(0xFE)))
	assert.Error(t, marker.SkipUnknown(marker.Code(0x01)))
}
