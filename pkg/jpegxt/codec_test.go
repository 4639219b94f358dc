package jpegxt_test

import (
	"bytes"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/profile"
	"github.com/jpfielding/jpegxt/pkg/jpegxt/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeGrayRoundTripApproximatesSource(t *testing.T) {
	const w, h = 16, 16
	plane := &jpegxt.Plane{Width: w, Height: h, Samples: make([]int32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane.Samples[y*w+x] = int32((x*8 + y*4) % 256)
		}
	}

	cfg := jpegxt.FromTagItems(nil)
	cfg.Quality = 90

	var buf bytes.Buffer
	require.NoError(t, jpegxt.EncodeGray(&buf, plane, cfg))
	assert.NotZero(t, buf.Len())

	got, err := jpegxt.DecodeGray(&buf)
	require.NoError(t, err)
	require.Equal(t, w, got.Width)
	require.Equal(t, h, got.Height)

	var maxDiff int32
	for i := range plane.Samples {
		diff := plane.Samples[i] - got.Samples[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}
	assert.Less(t, maxDiff, int32(40), "high-quality lossy round trip should stay visually close to the source")
}

func TestConfigValidateRejectsOutOfProfileCombination(t *testing.T) {
	cfg := jpegxt.FromTagItems(nil)
	cfg.FrameType = profile.JPEGLS
	cfg.Flags = profile.Arithmetic

	err := cfg.Validate()
	assert.Error(t, err, "JPEG-LS + arithmetic is not a registered profile")
}

func TestConfigValidateRejectsOutOfRangeQuality(t *testing.T) {
	cfg := jpegxt.FromTagItems(nil)
	cfg.Quality = 0
	assert.Error(t, cfg.Validate())

	cfg.Quality = 101
	assert.Error(t, cfg.Validate())
}

func TestFromTagItemsAppliesRecognizedTags(t *testing.T) {
	cfg := jpegxt.FromTagItems(nil)
	assert.Equal(t, 75, cfg.Quality, "default quality matches the simplest registered profile")
	assert.Equal(t, profile.Baseline, cfg.FrameType)

	b := tags.NewBuilder(
		tags.With(tags.Quality, 42),
		tags.With(tags.RestartInterval, 16),
	)
	cfg = jpegxt.FromTagItems(b.Items())
	assert.Equal(t, 42, cfg.Quality)
	assert.Equal(t, 16, cfg.RestartInterval)
}
