package app

import (
	"image/color"
	"strings"

	"kbshell/hal"
	"kbshell/sys/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// FaultError is returned by System.Step once a task has panicked. The
// process should exit with ExitCode after the host runner has returned.
type FaultError struct {
	Info kernel.PanicInfo
}

func (e *FaultError) Error() string { return "panic: " + e.Info.String() }

// ExitCode is the process status for a fault.
func (e *FaultError) ExitCode() int { return 1 }

// installPanicHandler reports the first task panic on every output the HAL
// offers, then hands it to done.
func installPanicHandler(h hal.HAL, done func(kernel.PanicInfo)) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)

		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}
		if s := h.Serial(); s != nil {
			_, _ = s.Write([]byte("\n" + lines[0] + "\n"))
		}
		if disp := h.Display(); disp != nil {
			if fb := disp.Framebuffer(); fb != nil {
				drawPanicScreen(fb, lines)
			}
		}
		done(info)
	})
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{"panic: " + info.String()}
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

const (
	panicFontHeight = 10
	panicFontOffset = 6
)

func drawPanicScreen(fb hal.Framebuffer, lines []string) {
	if fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	fb.ClearRGB(255, 255, 255)

	font := &proggy.TinySZ8pt7b
	_, w := tinyfont.LineWidth(font, "0")
	cols := fb.Width() / int(w)
	if cols <= 0 {
		return
	}

	d := panicDisplay{fb: fb}
	black := color.RGBA{A: 255}
	y := 0
	for _, line := range lines {
		for r := []rune(line); len(r) > 0; {
			if y+panicFontHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			n := min(cols, len(r))
			tinyfont.WriteLine(d, font, 0, int16(y+panicFontOffset), string(r[:n]), black)
			r = r[n:]
			y += panicFontHeight
		}
	}
	_ = fb.Present()
}

// panicDisplay draws straight into the framebuffer without going through the
// terminal task.
type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) { return int16(d.fb.Width()), int16(d.fb.Height()) }

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || int(x) >= d.fb.Width() || y < 0 || int(y) >= d.fb.Height() {
		return
	}
	px := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	off := int(y)*d.fb.StrideBytes() + int(x)*2
	buf := d.fb.Buffer()
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(px)
	buf[off+1] = byte(px >> 8)
}

func (d panicDisplay) Display() error { return nil }
