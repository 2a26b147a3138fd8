package proto

import (
	"errors"
	"fmt"

	"kbshell/sys/keyboard"
)

// KeyEventBytes is the size of a MsgKeyEvent payload.
const KeyEventBytes = 3

var (
	ErrShortPayload = errors.New("short payload")
	ErrBadEventKind = errors.New("bad event kind")
	ErrBadKeyClass  = errors.New("bad key class")
	ErrBadKeyCode   = errors.New("bad key code")
)

// KeyEventPayload encodes a MsgKeyEvent payload.
//
// Payload format:
//
//	u8 kind  (1 = down, 2 = up)
//	u8 class (1 = modifier, 2 = control)
//	u8 code  (keyboard.Modifier or keyboard.Control)
func KeyEventPayload(ev keyboard.Event) []byte {
	return []byte{byte(ev.Kind), byte(ev.Key.Class()), ev.Key.Code()}
}

// DecodeKeyEventPayload validates and decodes a MsgKeyEvent payload.
//
// Every field is checked; a record that does not describe a known event is
// rejected instead of being reinterpreted.
func DecodeKeyEventPayload(b []byte) (keyboard.Event, error) {
	if len(b) != KeyEventBytes {
		return keyboard.Event{}, fmt.Errorf("key event: %w: got %d bytes, want %d", ErrShortPayload, len(b), KeyEventBytes)
	}

	kind := keyboard.Kind(b[0])
	if kind != keyboard.KindDown && kind != keyboard.KindUp {
		return keyboard.Event{}, fmt.Errorf("key event: %w: %d", ErrBadEventKind, b[0])
	}

	class := keyboard.Class(b[1])
	if class != keyboard.ClassModifier && class != keyboard.ClassControl {
		return keyboard.Event{}, fmt.Errorf("key event: %w: %d", ErrBadKeyClass, b[1])
	}

	key, ok := keyboard.FromRaw(class, b[2])
	if !ok {
		return keyboard.Event{}, fmt.Errorf("key event: %w: class=%d code=%d", ErrBadKeyCode, b[1], b[2])
	}
	return keyboard.Event{Kind: kind, Key: key}, nil
}
