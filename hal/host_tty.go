package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// RunTTY runs the OS on the controlling terminal. Stdin is switched to raw
// mode so that every keystroke reaches the keyboard driver; Ctrl-C or Ctrl-D
// stops the runner.
func RunTTY(ctx context.Context, newApp func(HAL) func() error, cfg RunConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("tty backend: stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("tty backend: raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, old) }()

	h := newHostHAL(cfg.Logger)
	h.serial = &hostSerial{w: os.Stdout, raw: true}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	go readTTY(ctx, os.Stdin, h.kbd, cancel)

	step := newApp(h)
	cfg.Logger.Info("tty backend started", "hz", cfg.Hz)

	err = runTicks(ctx, h, step, cfg)
	if errors.Is(context.Cause(ctx), ErrStopped) {
		return nil
	}
	return err
}

func readTTY(ctx context.Context, r io.Reader, kbd *hostKeyboard, cancel context.CancelCauseFunc) {
	var in ttyInput
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			evs, stop := in.feed(buf[:n])
			for _, ev := range evs {
				select {
				case kbd.ch <- ev:
				case <-ctx.Done():
					return
				}
			}
			if stop {
				cancel(ErrStopped)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				cancel(fmt.Errorf("tty read: %w", err))
				return
			}
			cancel(ErrStopped)
			return
		}
	}
}
