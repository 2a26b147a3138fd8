package hal

import (
	"errors"

	"kbshell/sys/keyboard"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Keyboard delivers raw key-down/key-up events in the order they happened.
//
// Modifier keys are reported as events of their own; consumers track their
// state.
type Keyboard interface {
	Events() <-chan keyboard.Event
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Serial is a byte-stream console. Writes never signal backpressure.
type Serial interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined; higher-level timers live in userland.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the OS and the outside world.
//
// Any accessor may return nil when the backend has no such device.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Serial() Serial
	Time() Time
}
