package hal

import "unicode/utf8"

// textGrid is a scrolling grid of text lines. The cursor is always at the
// end of the last line.
type textGrid struct {
	width  int
	height int
	lines  [][]rune

	partial []byte
}

func (g *textGrid) resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	g.width, g.height = w, h
	if len(g.lines) == 0 {
		g.lines = [][]rune{nil}
	}
	g.trim()
}

func (g *textGrid) cursorX() int {
	return len(g.lines[len(g.lines)-1])
}

func (g *textGrid) write(p []byte) {
	if g.width == 0 {
		g.resize(80, 24)
	}
	b := append(g.partial, p...)
	g.partial = g.partial[:0]

	for len(b) > 0 {
		if !utf8.FullRune(b) {
			g.partial = append(g.partial, b...)
			return
		}
		r, sz := utf8.DecodeRune(b)
		b = b[sz:]
		g.put(r)
	}
}

func (g *textGrid) put(r rune) {
	last := len(g.lines) - 1
	switch {
	case r == '\n':
		g.newline()
	case r == '\r':
		g.lines[last] = g.lines[last][:0]
	case r == '\b':
		if n := len(g.lines[last]); n > 0 {
			g.lines[last] = g.lines[last][:n-1]
		}
	case r == '\t':
		for i := 0; i < 4; i++ {
			g.put(' ')
		}
	case r < 0x20 || r == 0x7f:
	default:
		if len(g.lines[last]) >= g.width {
			g.newline()
			last = len(g.lines) - 1
		}
		g.lines[last] = append(g.lines[last], r)
	}
}

func (g *textGrid) newline() {
	g.lines = append(g.lines, nil)
	g.trim()
}

func (g *textGrid) trim() {
	if excess := len(g.lines) - g.height; excess > 0 {
		g.lines = append(g.lines[:0], g.lines[excess:]...)
	}
}
