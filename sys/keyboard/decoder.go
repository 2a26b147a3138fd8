package keyboard

// State is a snapshot of the decoder's modifier flags.
type State struct {
	LeftShift  bool
	RightShift bool
	CapsLock   bool
	NumLock    bool
}

// Decoder tracks modifier state across a stream of key events and turns
// key-down events into characters.
//
// Held flags follow explicit down/up events only. Lock flags toggle on every
// key-down of their key.
type Decoder struct {
	keymap Keymap

	lshift   bool
	rshift   bool
	capsLock bool
	numLock  bool
}

// NewDecoder returns a decoder with all flags cleared. A nil keymap selects US.
func NewDecoder(km Keymap) *Decoder {
	if km == nil {
		km = US
	}
	return &Decoder{keymap: km}
}

// State returns the current flags.
func (d *Decoder) State() State {
	return State{
		LeftShift:  d.lshift,
		RightShift: d.rshift,
		CapsLock:   d.capsLock,
		NumLock:    d.numLock,
	}
}

// Shift reports whether both shift keys are held.
//
// A single shift key does not count; this is the condition that suppresses
// Enter.
func (d *Decoder) Shift() bool {
	return d.lshift && d.rshift
}

// IsCommit reports whether ev is the release of Enter while Shift is false.
// It never changes decoder state.
func (d *Decoder) IsCommit(ev Event) bool {
	if ev.Kind != KindUp {
		return false
	}
	c, ok := ev.Key.Control()
	if !ok || c != Enter {
		return false
	}
	return !d.Shift()
}

// Decode applies ev to the modifier state and returns the character produced
// by a key-down of a non-modifier key.
//
// Events that do not name a known key are ignored.
func (d *Decoder) Decode(ev Event) (rune, bool) {
	switch ev.Kind {
	case KindUp:
		d.release(ev.Key)
		return 0, false
	case KindDown:
		if m, ok := ev.Key.Modifier(); ok {
			d.press(m)
			return 0, false
		}
		c, ok := ev.Key.Control()
		if !ok {
			return 0, false
		}
		return d.keymap.Unicode(c, d.lshift, d.rshift, d.capsLock, d.numLock), true
	default:
		return 0, false
	}
}

func (d *Decoder) release(key VirtualKeyCode) {
	m, ok := key.Modifier()
	if !ok {
		return
	}
	switch m {
	case LeftShift:
		d.lshift = false
	case RightShift:
		d.rshift = false
	}
}

func (d *Decoder) press(m Modifier) {
	switch m {
	case LeftShift:
		d.lshift = true
	case RightShift:
		d.rshift = true
	case CapsLock:
		d.capsLock = !d.capsLock
	case NumLock:
		d.numLock = !d.numLock
	}
}
