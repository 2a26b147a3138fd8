package keyboard

// Keymap maps a control key plus modifier flags to a character.
//
// Implementations must be total: every control key yields a rune. Keys with
// no printable meaning yield NUL.
type Keymap interface {
	Unicode(key Control, lshift, rshift, capsLock, numLock bool) rune
}

// KeymapFunc adapts a function to Keymap.
type KeymapFunc func(key Control, lshift, rshift, capsLock, numLock bool) rune

func (f KeymapFunc) Unicode(key Control, lshift, rshift, capsLock, numLock bool) rune {
	return f(key, lshift, rshift, capsLock, numLock)
}

// US is the US QWERTY layout.
var US Keymap = usKeymap{}

type usKeymap struct{}

// usPair holds the unshifted and shifted rune of a key.
type usPair struct {
	base    rune
	shifted rune
}

var usRow = [controlEnd]usPair{
	Digit0: {'0', ')'},
	Digit1: {'1', '!'},
	Digit2: {'2', '@'},
	Digit3: {'3', '#'},
	Digit4: {'4', '$'},
	Digit5: {'5', '%'},
	Digit6: {'6', '^'},
	Digit7: {'7', '&'},
	Digit8: {'8', '*'},
	Digit9: {'9', '('},

	Minus:        {'-', '_'},
	Equal:        {'=', '+'},
	LeftBracket:  {'[', '{'},
	RightBracket: {']', '}'},
	Backslash:    {'\\', '|'},
	Semicolon:    {';', ':'},
	Apostrophe:   {'\'', '"'},
	Grave:        {'`', '~'},
	Comma:        {',', '<'},
	Period:       {'.', '>'},
	Slash:        {'/', '?'},

	Space:     {' ', ' '},
	Enter:     {'\n', '\n'},
	KpEnter:   {'\n', '\n'},
	Tab:       {'\t', '\t'},
	Backspace: {'\b', '\b'},
	Escape:    {0x1b, 0x1b},
	Delete:    {0x7f, 0x7f},

	KpPlus:     {'+', '+'},
	KpMinus:    {'-', '-'},
	KpMultiply: {'*', '*'},
	KpDivide:   {'/', '/'},
}

func (usKeymap) Unicode(key Control, lshift, rshift, capsLock, numLock bool) rune {
	shift := lshift || rshift

	switch {
	case key >= KeyA && key <= KeyZ:
		r := 'a' + rune(key-KeyA)
		if shift != capsLock {
			r -= 'a' - 'A'
		}
		return r
	case key >= Kp0 && key <= Kp9:
		if !numLock {
			return 0
		}
		return '0' + rune(key-Kp0)
	case key == KpDecimal:
		if !numLock {
			return 0
		}
		return '.'
	case key == 0 || key >= controlEnd:
		return 0
	}

	p := usRow[key]
	if shift {
		return p.shifted
	}
	return p.base
}

type typedKey struct {
	key   Control
	shift bool
}

var usReverse = func() map[rune]typedKey {
	m := make(map[rune]typedKey, 128)
	for c := KeyA; c <= KeyZ; c++ {
		m['a'+rune(c-KeyA)] = typedKey{key: c}
		m['A'+rune(c-KeyA)] = typedKey{key: c, shift: true}
	}
	for c := Control(1); c < controlEnd; c++ {
		p := usRow[c]
		if p.base == 0 || c == KpEnter || (c >= KpPlus && c <= KpDivide) {
			continue
		}
		if _, ok := m[p.base]; !ok {
			m[p.base] = typedKey{key: c}
		}
		if _, ok := m[p.shifted]; !ok {
			m[p.shifted] = typedKey{key: c, shift: true}
		}
	}
	return m
}()

// Type returns the key events a US keyboard produces when r is typed.
//
// Shifted runes are wrapped in LeftShift down/up.
func Type(r rune) ([]Event, bool) {
	if r == '\r' {
		r = '\n'
	}
	tk, ok := usReverse[r]
	if !ok {
		return nil, false
	}
	key := ControlKey(tk.key)
	if !tk.shift {
		return []Event{KeyDown(key), KeyUp(key)}, true
	}
	shift := ModifierKey(LeftShift)
	return []Event{KeyDown(shift), KeyDown(key), KeyUp(key), KeyUp(shift)}, true
}

// TypeString concatenates Type for each rune of s, skipping runes the layout
// cannot produce.
func TypeString(s string) []Event {
	var out []Event
	for _, r := range s {
		evs, ok := Type(r)
		if !ok {
			continue
		}
		out = append(out, evs...)
	}
	return out
}
