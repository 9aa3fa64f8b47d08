package qr

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventalbum/internal/domain"
)

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()
	data, err := r.Render("https://album.test/ayse-mehmet")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Width, img.Bounds().Dy())

	// Quiet zone is white, the finder pattern starts right after it.
	assert.False(t, isBlack(img.At(0, 0)))
	assert.False(t, isBlack(img.At(Width-1, Width-1)))
	// Version 3 (29 modules) at medium: 33 modules across, ~24px each.
	assert.True(t, isBlack(img.At(2*Width/33+2, 2*Width/33+2)))
}

func TestRenderer_Deterministic(t *testing.T) {
	r := NewRenderer()
	a, err := r.Render("https://album.test/elif-can")
	require.NoError(t, err)
	b, err := r.Render("https://album.test/elif-can")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := r.Render("https://album.test/other")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestRenderer_EncodingFailures(t *testing.T) {
	r := NewRenderer()
	for name, in := range map[string]string{
		"empty":    "",
		"too long": strings.Repeat("x", 8000),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Render(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrEncodingFailed))
		})
	}
}
