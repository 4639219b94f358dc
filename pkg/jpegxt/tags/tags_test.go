package tags_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesCanonicalVR(t *testing.T) {
	assert.Equal(t, tags.VRInt, tags.New(tags.Quality, 80).VR)
	assert.Equal(t, tags.VREnum, tags.New(tags.FrameType, 1).VR)
	assert.Equal(t, tags.VRBool, tags.New(tags.FrameFlags, true).VR)
	assert.Equal(t, tags.VRSampling, tags.New(tags.Subsampling, nil).VR)
	assert.Equal(t, tags.VRScanList, tags.New(tags.Scans, nil).VR)
}

func TestBuilderWithOverwritesInPlace(t *testing.T) {
	b := tags.NewBuilder(
		tags.With(tags.Quality, 50),
		tags.With(tags.FrameType, 2),
		tags.With(tags.Quality, 90),
	)
	items := b.Items()
	require.Len(t, items, 2, "overwriting Quality must not append a second entry")
	assert.Equal(t, tags.Quality, items[0].Tag, "original insertion order is preserved")
	assert.Equal(t, 90, items[0].Value)

	item, ok := b.Get(tags.FrameType)
	require.True(t, ok)
	assert.Equal(t, 2, item.Value)

	_, ok = b.Get(tags.ErrorBound)
	assert.False(t, ok)
}

func TestTagStringNames(t *testing.T) {
	assert.Equal(t, "quality", tags.Quality.String())
	assert.Contains(t, tags.Tag(999).String(), "999")
}
