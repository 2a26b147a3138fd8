package hal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kbshell/sys/keyboard"

	"github.com/gdamore/tcell/v2"
)

// RunScreen runs the OS full-screen in the terminal. Output is rendered into a
// tcell screen; Ctrl-C stops the runner.
func RunScreen(ctx context.Context, newApp func(HAL) func() error, cfg RunConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen backend: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen backend: init: %w", err)
	}
	defer screen.Fini()

	out := &screenSerial{screen: screen}
	out.grid.resize(screen.Size())

	h := newHostHAL(cfg.Logger)
	h.serial = out

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go pollScreen(ctx, screen, out, h.kbd, cancel)

	step := newApp(h)
	cfg.Logger.Info("screen backend started", "hz", cfg.Hz)

	err = runTicks(ctx, h, step, cfg)
	if errors.Is(context.Cause(ctx), ErrStopped) {
		return nil
	}
	return err
}

func pollScreen(ctx context.Context, screen tcell.Screen, out *screenSerial, kbd *hostKeyboard, cancel context.CancelCauseFunc) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			out.resize(ev.Size())
		case *tcell.EventKey:
			evs, stop := screenKeyEvents(ev)
			if stop {
				cancel(ErrStopped)
				return
			}
			for _, kev := range evs {
				select {
				case kbd.ch <- kev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

var screenKeys = map[tcell.Key]keyboard.Control{
	tcell.KeyEnter:      keyboard.Enter,
	tcell.KeyTab:        keyboard.Tab,
	tcell.KeyBackspace:  keyboard.Backspace,
	tcell.KeyBackspace2: keyboard.Backspace,
	tcell.KeyEscape:     keyboard.Escape,
	tcell.KeyDelete:     keyboard.Delete,
	tcell.KeyInsert:     keyboard.Insert,
	tcell.KeyHome:       keyboard.Home,
	tcell.KeyEnd:        keyboard.End,
	tcell.KeyPgUp:       keyboard.PageUp,
	tcell.KeyPgDn:       keyboard.PageDown,
	tcell.KeyUp:         keyboard.Up,
	tcell.KeyDown:       keyboard.Down,
	tcell.KeyLeft:       keyboard.Left,
	tcell.KeyRight:      keyboard.Right,
	tcell.KeyF1:         keyboard.F1,
	tcell.KeyF2:         keyboard.F2,
	tcell.KeyF3:         keyboard.F3,
	tcell.KeyF4:         keyboard.F4,
	tcell.KeyF5:         keyboard.F5,
	tcell.KeyF6:         keyboard.F6,
	tcell.KeyF7:         keyboard.F7,
	tcell.KeyF8:         keyboard.F8,
	tcell.KeyF9:         keyboard.F9,
	tcell.KeyF10:        keyboard.F10,
	tcell.KeyF11:        keyboard.F11,
	tcell.KeyF12:        keyboard.F12,
}

// screenKeyEvents converts a tcell key into down/up events.
func screenKeyEvents(ev *tcell.EventKey) (evs []keyboard.Event, stop bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD:
		return nil, true
	case tcell.KeyRune:
		evs, _ = keyboard.Type(ev.Rune())
		return evs, false
	}
	if c, ok := screenKeys[ev.Key()]; ok {
		return tap(c), false
	}
	return nil, false
}

// screenSerial renders console output into a tcell screen.
type screenSerial struct {
	mu     sync.Mutex
	screen tcell.Screen
	grid   textGrid
}

func (s *screenSerial) Read(p []byte) (int, error) { return 0, ErrNotImplemented }

func (s *screenSerial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.write(p)
	s.draw()
	return len(p), nil
}

func (s *screenSerial) resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.resize(w, h)
	s.screen.Sync()
	s.draw()
}

func (s *screenSerial) draw() {
	s.screen.Clear()
	for y, line := range s.grid.lines {
		for x, r := range line {
			s.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		}
	}
	s.screen.ShowCursor(s.grid.cursorX(), len(s.grid.lines)-1)
	s.screen.Show()
}
