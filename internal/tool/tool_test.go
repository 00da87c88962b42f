package tool

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"fill", "brush", "eraser"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	k, err := ParseKind(" Brush ")
	require.NoError(t, err)
	assert.Equal(t, Brush, k)

	_, err = ParseKind("spray")
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestKindText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("eraser")))
	assert.Equal(t, Eraser, k)
	b, err := k.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "eraser", string(b))
	assert.True(t, Eraser.Draws())
	assert.False(t, Fill.Draws())
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF6B6B")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0xFF, 0x6B, 0x6B, 0xFF}, c)

	c, err = ParseHex("00c9a780")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x00, 0xC9, 0xA7, 0x80}, c)

	c, err = ParseHex("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c)

	for _, bad := range []string{"", "#12345", "#GGGGGG", "red"} {
		_, err := ParseHex(bad)
		assert.ErrorIs(t, err, ErrBadColor, bad)
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#845EC2", Hex(color.NRGBA{0x84, 0x5E, 0xC2, 0xFF}))
	assert.Equal(t, "#845EC210", Hex(color.NRGBA{0x84, 0x5E, 0xC2, 0x10}))
}
