package profile_test

import (
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFindsRegisteredProfile(t *testing.T) {
	p, ok := profile.Lookup(profile.Baseline, 0)
	require.True(t, ok)
	assert.Equal(t, "Baseline DCT, Huffman", p.Name())
}

func TestLookupRejectsUnregisteredCombination(t *testing.T) {
	_, ok := profile.Lookup(profile.JPEGLS, profile.Arithmetic)
	assert.False(t, ok, "JPEG-LS + arithmetic is not a registered profile")

	_, ok = profile.Lookup(profile.Baseline, profile.Pyramidal)
	assert.False(t, ok, "pyramidal is intentionally never registered")
}

func TestMustLookupPanicsOnUnregistered(t *testing.T) {
	assert.Panics(t, func() {
		profile.MustLookup(profile.JPEGLS, profile.Arithmetic)
	})
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "huffman", profile.Flags(0).String())
	assert.Equal(t, "arithmetic", profile.Arithmetic.String())
	combined := profile.Arithmetic | profile.ResidualCoding
	assert.Equal(t, "arithmetic|residual", combined.String())
}

func TestAllReturnsACopy(t *testing.T) {
	all := profile.All()
	require.NotEmpty(t, all)
	all[0] = profile.Profile{}
	again := profile.All()
	assert.NotEqual(t, all[0], again[0], "mutating the returned slice must not affect the registry")
}
