package hal

import (
	"image/color"
	"sync"
)

// hostFramebuffer is an RGB565 buffer shared between the OS (writer) and the
// window (reader). Present marks the frame as ready to be copied.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
	dirty  bool
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
		dirty:  true,
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
	return nil
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := RGB565(color.RGBA{R: r, G: g, B: b})
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
	f.dirty = true
}

// snapshotRGB565 copies the frame into dst if it was presented since the last
// snapshot and reports whether it did.
func (f *hostFramebuffer) snapshotRGB565(dst []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.dirty {
		return false
	}
	copy(dst, f.buf)
	f.dirty = false
	return true
}
