package hal

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGB565RoundTripsExtremes(t *testing.T) {
	for _, c := range []color.RGBA{
		{A: 0xFF},
		{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
	} {
		assert.Equal(t, c, ColorFrom565(RGB565(c)))
	}
	assert.Equal(t, uint16(0xF800), RGB565(color.RGBA{R: 0xFF}))
	assert.Equal(t, uint16(0x07E0), RGB565(color.RGBA{G: 0xFF}))
}
