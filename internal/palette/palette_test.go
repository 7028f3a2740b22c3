package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtcore/vt/internal/cellmodel"
)

func TestNewWithNilLookupUsesDefaults(t *testing.T) {
	p := New(nil)
	r, g, b, ok := p.Color(1).AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(205), r)
	assert.Equal(t, uint8(49), g)
	assert.Equal(t, uint8(49), b)
	assert.False(t, p.Overridden(1))
}

func TestNewAppliesOverridesFromLookup(t *testing.T) {
	lookup := func(name string) (string, bool) {
		if name == "terminal_color_0" {
			return "#112233", true
		}
		return "", false
	}
	p := New(lookup)

	r, g, b, ok := p.Color(0).AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
	assert.True(t, p.Overridden(0))
	assert.False(t, p.Overridden(1))
}

func TestReseedPreservesIdentityAndClearsStaleOverrides(t *testing.T) {
	p := New(func(name string) (string, bool) {
		if name == "terminal_color_2" {
			return "#ff0000", true
		}
		return "", false
	})
	require.True(t, p.Overridden(2))

	p.Reseed(func(name string) (string, bool) { return "", false })

	assert.False(t, p.Overridden(2), "Reseed with no overrides must reset every slot back to default")
	r, _, _, _ := p.Color(2).AsRGB()
	assert.Equal(t, uint8(13), r) // Default16[2]
}

func TestSetAndResetSingleSlot(t *testing.T) {
	p := New(nil)
	p.Set(5, cellmodel.RGB(1, 2, 3))
	assert.True(t, p.Overridden(5))

	p.Reset(5)
	assert.False(t, p.Overridden(5))
}

func TestResetAllClearsEveryLowSlot(t *testing.T) {
	p := New(nil)
	for i := uint8(0); i < 16; i++ {
		p.Set(i, cellmodel.RGB(9, 9, 9))
	}
	p.ResetAll()
	for i := uint8(0); i < 16; i++ {
		assert.False(t, p.Overridden(i))
	}
}

func TestSlotsAbove15AreNeverOverridden(t *testing.T) {
	p := New(nil)
	assert.False(t, p.Overridden(200))
}

func TestColorCubeAbove15Computed(t *testing.T) {
	p := New(nil)
	r, g, b, ok := p.Color(16).AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), b)
}

func TestColorGrayscaleRamp(t *testing.T) {
	p := New(nil)
	r, g, b, ok := p.Color(232).AsRGB()
	require.True(t, ok)
	assert.Equal(t, uint8(8), r)
	assert.Equal(t, r, g)
	assert.Equal(t, r, b)
}

func TestThemePolarityNotification(t *testing.T) {
	assert.Equal(t, "\x1b[997;1n", ThemeDark.Notification())
	assert.Equal(t, "\x1b[997;2n", ThemeLight.Notification())
}
