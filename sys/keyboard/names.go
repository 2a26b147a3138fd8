package keyboard

import (
	"fmt"
	"strings"
)

var modifierNames = [modifierEnd]string{
	LeftShift:  "LeftShift",
	RightShift: "RightShift",
	CapsLock:   "CapsLock",
	NumLock:    "NumLock",
	ScrollLock: "ScrollLock",
	LeftCtrl:   "LeftCtrl",
	RightCtrl:  "RightCtrl",
	LeftAlt:    "LeftAlt",
	RightAlt:   "RightAlt",
	LeftMeta:   "LeftMeta",
	RightMeta:  "RightMeta",
}

var controlNames = [controlEnd]string{
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F", KeyG: "G",
	KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L", KeyM: "M", KeyN: "N",
	KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R", KeyS: "S", KeyT: "T", KeyU: "U",
	KeyV: "V", KeyW: "W", KeyX: "X", KeyY: "Y", KeyZ: "Z",

	Digit0: "0", Digit1: "1", Digit2: "2", Digit3: "3", Digit4: "4",
	Digit5: "5", Digit6: "6", Digit7: "7", Digit8: "8", Digit9: "9",

	Space:     "Space",
	Enter:     "Enter",
	Tab:       "Tab",
	Backspace: "Backspace",
	Escape:    "Escape",
	Delete:    "Delete",
	Insert:    "Insert",
	Home:      "Home",
	End:       "End",
	PageUp:    "PageUp",
	PageDown:  "PageDown",
	Up:        "Up",
	Down:      "Down",
	Left:      "Left",
	Right:     "Right",

	Minus:        "Minus",
	Equal:        "Equal",
	LeftBracket:  "LeftBracket",
	RightBracket: "RightBracket",
	Backslash:    "Backslash",
	Semicolon:    "Semicolon",
	Apostrophe:   "Apostrophe",
	Grave:        "Grave",
	Comma:        "Comma",
	Period:       "Period",
	Slash:        "Slash",

	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",

	Kp0: "Kp0", Kp1: "Kp1", Kp2: "Kp2", Kp3: "Kp3", Kp4: "Kp4",
	Kp5: "Kp5", Kp6: "Kp6", Kp7: "Kp7", Kp8: "Kp8", Kp9: "Kp9",
	KpDecimal:  "KpDecimal",
	KpPlus:     "KpPlus",
	KpMinus:    "KpMinus",
	KpMultiply: "KpMultiply",
	KpDivide:   "KpDivide",
	KpEnter:    "KpEnter",
}

var keysByName = func() map[string]VirtualKeyCode {
	m := make(map[string]VirtualKeyCode, len(modifierNames)+len(controlNames))
	for i, name := range modifierNames {
		if name != "" {
			m[strings.ToLower(name)] = ModifierKey(Modifier(i))
		}
	}
	for i, name := range controlNames {
		if name != "" {
			m[strings.ToLower(name)] = ControlKey(Control(i))
		}
	}
	return m
}()

func (m Modifier) String() string {
	if m == 0 || m >= modifierEnd {
		return "unknown"
	}
	return modifierNames[m]
}

func (c Control) String() string {
	if c == 0 || c >= controlEnd {
		return "unknown"
	}
	return controlNames[c]
}

func (k VirtualKeyCode) String() string {
	if m, ok := k.Modifier(); ok {
		return m.String()
	}
	if c, ok := k.Control(); ok {
		return c.String()
	}
	return "invalid"
}

// ParseKey looks up a key by name. Matching is case-insensitive.
func ParseKey(name string) (VirtualKeyCode, error) {
	key, ok := keysByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return VirtualKeyCode{}, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}
