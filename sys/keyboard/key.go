package keyboard

// Modifier is a key that changes how later keys are interpreted.
type Modifier uint8

const (
	LeftShift Modifier = iota + 1
	RightShift
	CapsLock
	NumLock
	ScrollLock
	LeftCtrl
	RightCtrl
	LeftAlt
	RightAlt
	LeftMeta
	RightMeta

	modifierEnd
)

// Control is any printable or control key, including Enter.
type Control uint8

const (
	KeyA Control = iota + 1
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9

	Space
	Enter
	Tab
	Backspace
	Escape
	Delete
	Insert
	Home
	End
	PageUp
	PageDown
	Up
	Down
	Left
	Right

	Minus
	Equal
	LeftBracket
	RightBracket
	Backslash
	Semicolon
	Apostrophe
	Grave
	Comma
	Period
	Slash

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	Kp0
	Kp1
	Kp2
	Kp3
	Kp4
	Kp5
	Kp6
	Kp7
	Kp8
	Kp9
	KpDecimal
	KpPlus
	KpMinus
	KpMultiply
	KpDivide
	KpEnter

	controlEnd
)

// Class tags the variant held by a VirtualKeyCode.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassModifier
	ClassControl
)

// VirtualKeyCode identifies a key as either a Modifier or a Control key.
//
// The zero value is invalid.
type VirtualKeyCode struct {
	class Class
	code  uint8
}

// ModifierKey wraps a modifier.
func ModifierKey(m Modifier) VirtualKeyCode {
	return VirtualKeyCode{class: ClassModifier, code: uint8(m)}
}

// ControlKey wraps a control or letter key.
func ControlKey(c Control) VirtualKeyCode {
	return VirtualKeyCode{class: ClassControl, code: uint8(c)}
}

// FromRaw rebuilds a key from its class and code, reporting whether the pair
// names a known key.
func FromRaw(class Class, code uint8) (VirtualKeyCode, bool) {
	switch class {
	case ClassModifier:
		if code == 0 || code >= uint8(modifierEnd) {
			return VirtualKeyCode{}, false
		}
	case ClassControl:
		if code == 0 || code >= uint8(controlEnd) {
			return VirtualKeyCode{}, false
		}
	default:
		return VirtualKeyCode{}, false
	}
	return VirtualKeyCode{class: class, code: code}, true
}

func (k VirtualKeyCode) Class() Class { return k.class }
func (k VirtualKeyCode) Code() uint8  { return k.code }

// Valid reports whether k names a known key.
func (k VirtualKeyCode) Valid() bool {
	_, ok := FromRaw(k.class, k.code)
	return ok
}

// Modifier returns the modifier held by k.
func (k VirtualKeyCode) Modifier() (Modifier, bool) {
	if k.class != ClassModifier || !k.Valid() {
		return 0, false
	}
	return Modifier(k.code), true
}

// Control returns the control key held by k.
func (k VirtualKeyCode) Control() (Control, bool) {
	if k.class != ClassControl || !k.Valid() {
		return 0, false
	}
	return Control(k.code), true
}

// Kind says whether an event is a press or a release.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindDown
	KindUp
)

func (k Kind) String() string {
	switch k {
	case KindDown:
		return "down"
	case KindUp:
		return "up"
	default:
		return "invalid"
	}
}

// Event is a single key-down or key-up occurrence.
type Event struct {
	Kind Kind
	Key  VirtualKeyCode
}

// KeyDown returns a press event for key.
func KeyDown(key VirtualKeyCode) Event { return Event{Kind: KindDown, Key: key} }

// KeyUp returns a release event for key.
func KeyUp(key VirtualKeyCode) Event { return Event{Kind: KindUp, Key: key} }

func (e Event) String() string {
	return e.Kind.String() + "(" + e.Key.String() + ")"
}
