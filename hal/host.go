package hal

import (
	"io"
	"log/slog"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	serial Serial
}

func newHostHAL(log *slog.Logger) *hostHAL {
	if log == nil {
		log = slog.Default()
	}
	return &hostHAL{
		logger: &hostLogger{log: log},
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Time() Time     { return h.t }
func (h *hostHAL) Input() Input   { return hostInput{kbd: h.kbd} }

func (h *hostHAL) Display() Display {
	if h.fb == nil {
		return nil
	}
	return hostDisplay{fb: h.fb}
}

func (h *hostHAL) Serial() Serial {
	if h.serial == nil {
		return nil
	}
	return h.serial
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

// hostLogger forwards OS log lines to slog.
type hostLogger struct {
	log *slog.Logger
}

// NewLogger returns a Logger that forwards OS log lines to log.
func NewLogger(log *slog.Logger) Logger {
	if log == nil {
		log = slog.Default()
	}
	return &hostLogger{log: log}
}

func (l *hostLogger) WriteLineString(s string) {
	l.log.Info(s, "src", "os")
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// hostSerial writes console output to w. In raw mode "\n" becomes "\r\n".
type hostSerial struct {
	mu  sync.Mutex
	r   io.Reader
	w   io.Writer
	raw bool
}

func (s *hostSerial) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, ErrNotImplemented
	}
	return s.r.Read(p)
}

func (s *hostSerial) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, ErrNotImplemented
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.raw {
		return s.w.Write(p)
	}

	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := s.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
