package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gridText(g *textGrid) []string {
	out := make([]string, len(g.lines))
	for i, l := range g.lines {
		out[i] = string(l)
	}
	return out
}

func TestTextGridWritesAndScrolls(t *testing.T) {
	var g textGrid
	g.resize(10, 3)

	g.write([]byte("one\ntwo\nthree\nfour"))
	assert.Equal(t, []string{"two", "three", "four"}, gridText(&g))
	assert.Equal(t, 4, g.cursorX())
}

func TestTextGridWraps(t *testing.T) {
	var g textGrid
	g.resize(3, 5)

	g.write([]byte("abcdefg"))
	assert.Equal(t, []string{"abc", "def", "g"}, gridText(&g))
}

func TestTextGridControlCharacters(t *testing.T) {
	var g textGrid
	g.resize(20, 2)

	g.write([]byte("abc\b\x1bd\x00\r> x\ty"))
	assert.Equal(t, []string{"> x    y"}, gridText(&g))
}

func TestTextGridSplitUTF8(t *testing.T) {
	var g textGrid
	g.resize(20, 2)

	b := []byte("ü")
	g.write(b[:1])
	assert.Equal(t, []string{""}, gridText(&g))
	g.write(b[1:])
	assert.Equal(t, []string{"ü"}, gridText(&g))
}
