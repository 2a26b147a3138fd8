package hal

import "image/color"

// RGB565 packs c into a little-endian framebuffer pixel. Alpha is ignored.
func RGB565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// ColorFrom565 expands a framebuffer pixel to an opaque color, scaling
// each channel to the full 0..255 range.
func ColorFrom565(p uint16) color.RGBA {
	return color.RGBA{
		R: uint8(uint32(p>>11&0x1F) * 255 / 31),
		G: uint8(uint32(p>>5&0x3F) * 255 / 63),
		B: uint8(uint32(p&0x1F) * 255 / 31),
		A: 0xFF,
	}
}
