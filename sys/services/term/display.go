package term

import (
	"image/color"

	"kbshell/hal"

	"tinygo.org/x/drivers"
)

// fbDisplayer exposes an RGB565 framebuffer as a tinyterm.Displayer.
type fbDisplayer struct {
	fb     hal.Framebuffer
	w, h   int
	stride int
}

func newFBDisplayer(fb hal.Framebuffer) *fbDisplayer {
	return &fbDisplayer{fb: fb, w: fb.Width(), h: fb.Height(), stride: fb.StrideBytes()}
}

func (d *fbDisplayer) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	if int(x) < 0 || int(x) >= d.w || int(y) < 0 || int(y) >= d.h {
		return
	}
	d.put(d.fb.Buffer(), int(y)*d.stride+int(x)*2, hal.RGB565(c))
}

func (d *fbDisplayer) Display() error {
	return d.fb.Present()
}

// ScrollUp moves the whole picture up by lines rows and fills the bottom
// with bg.
func (d *fbDisplayer) ScrollUp(lines int16, bg color.RGBA) error {
	n := int(lines)
	if n <= 0 {
		return nil
	}
	if n >= d.h {
		return d.FillRectangle(0, 0, int16(d.w), int16(d.h), bg)
	}
	buf := d.fb.Buffer()
	copy(buf, buf[n*d.stride:d.h*d.stride])
	return d.FillRectangle(0, int16(d.h-n), int16(d.w), int16(n), bg)
}

func (d *fbDisplayer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, x1 := clip(int(x), int(x)+int(width), d.w)
	y0, y1 := clip(int(y), int(y)+int(height), d.h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	buf := d.fb.Buffer()
	px := hal.RGB565(c)
	for row := y0; row < y1; row++ {
		off := row * d.stride
		for col := x0; col < x1; col++ {
			d.put(buf, off+col*2, px)
		}
	}
	return nil
}

// SetScroll is a no-op; the terminal scrolls in software.
func (d *fbDisplayer) SetScroll(line int16) {}

func (d *fbDisplayer) SetRotation(rotation drivers.Rotation) error { return nil }

func (d *fbDisplayer) put(buf []byte, off int, px uint16) {
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(px)
	buf[off+1] = byte(px >> 8)
}

func clip(lo, hi, limit int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > limit {
		hi = limit
	}
	return lo, hi
}
