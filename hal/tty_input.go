package hal

import (
	"unicode/utf8"

	"kbshell/sys/keyboard"
)

// ttyInput turns terminal bytes into key events. A terminal only reports
// characters, so shifted characters are synthesized as LeftShift down/up
// around the key.
type ttyInput struct {
	// pending holds an incomplete UTF-8 rune or CSI sequence from the
	// previous read.
	pending []byte
}

// maxCSI bounds a buffered escape sequence; longer ones are discarded.
const maxCSI = 16

func tap(c keyboard.Control) []keyboard.Event {
	k := keyboard.ControlKey(c)
	return []keyboard.Event{keyboard.KeyDown(k), keyboard.KeyUp(k)}
}

var csiKeys = map[string]keyboard.Control{
	"A":  keyboard.Up,
	"B":  keyboard.Down,
	"C":  keyboard.Right,
	"D":  keyboard.Left,
	"H":  keyboard.Home,
	"F":  keyboard.End,
	"2~": keyboard.Insert,
	"3~": keyboard.Delete,
	"5~": keyboard.PageUp,
	"6~": keyboard.PageDown,
}

// feed consumes one read's worth of bytes. stop is set on Ctrl-C or Ctrl-D;
// bytes after it are ignored.
func (in *ttyInput) feed(p []byte) (evs []keyboard.Event, stop bool) {
	in.pending = append(in.pending, p...)
	b := in.pending

	for len(b) > 0 {
		switch c := b[0]; {
		case c == 0x03 || c == 0x04:
			in.pending = in.pending[:0]
			return evs, true
		case c == 0x1b:
			n, key, ok, more := parseCSI(b)
			if more {
				in.pending = append(in.pending[:0], b...)
				return evs, false
			}
			if ok {
				evs = append(evs, tap(key)...)
			} else if n == 1 {
				evs = append(evs, tap(keyboard.Escape)...)
			}
			b = b[n:]
		case c == '\r' || c == '\n':
			evs = append(evs, tap(keyboard.Enter)...)
			b = b[1:]
		case c == 0x7f || c == 0x08:
			evs = append(evs, tap(keyboard.Backspace)...)
			b = b[1:]
		case c < 0x20 && c != '\t':
			b = b[1:]
		default:
			if !utf8.FullRune(b) {
				in.pending = append(in.pending[:0], b...)
				return evs, false
			}
			r, sz := utf8.DecodeRune(b)
			b = b[sz:]
			if r == utf8.RuneError && sz == 1 {
				continue
			}
			if typed, ok := keyboard.Type(r); ok {
				evs = append(evs, typed...)
			}
		}
	}
	in.pending = in.pending[:0]
	return evs, false
}

// parseCSI parses "ESC [ params final" at the start of b. It returns the
// number of bytes consumed and the key, if the sequence names one. A lone ESC
// consumes one byte. more reports a sequence cut off before its final byte;
// nothing is consumed and the caller waits for the next read.
func parseCSI(b []byte) (n int, key keyboard.Control, ok, more bool) {
	if len(b) < 2 || b[1] != '[' {
		return 1, 0, false, false
	}
	for i := 2; i < len(b); i++ {
		if b[i] >= 0x40 && b[i] <= 0x7e {
			key, ok = csiKeys[string(b[2:i+1])]
			return i + 1, key, ok, false
		}
	}
	if len(b) >= maxCSI {
		return len(b), 0, false, false
	}
	return 0, 0, false, true
}
