package hal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Backend selects how the host presents the OS.
type Backend string

const (
	// BackendWindow opens a desktop window with a framebuffer and raw keyboard.
	BackendWindow Backend = "window"
	// BackendTTY runs on the controlling terminal in raw mode.
	BackendTTY Backend = "tty"
	// BackendScreen runs full-screen in the terminal via tcell.
	BackendScreen Backend = "screen"
	// BackendHeadless runs without input; output goes to stdout.
	BackendHeadless Backend = "headless"
)

// ErrStopped is returned when the user asks the runner to stop.
var ErrStopped = errors.New("stopped")

// RunConfig controls the host runners.
type RunConfig struct {
	Backend Backend
	Hz      int
	Ticks   uint64
	Logger  *slog.Logger
}

func (c *RunConfig) normalize() error {
	if c.Hz <= 0 {
		c.Hz = 60
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if time.Second/time.Duration(c.Hz) <= 0 {
		return fmt.Errorf("invalid hz: %d", c.Hz)
	}
	return nil
}

// Run starts the selected backend and blocks until it stops.
//
// newApp is called once with the backend's HAL and returns the per-frame
// step function.
func Run(ctx context.Context, newApp func(HAL) func() error, cfg RunConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}
	switch cfg.Backend {
	case BackendWindow, "":
		return RunWindow(ctx, newApp, cfg)
	case BackendTTY:
		return RunTTY(ctx, newApp, cfg)
	case BackendScreen:
		return RunScreen(ctx, newApp, cfg)
	case BackendHeadless:
		return RunHeadless(ctx, newApp, cfg)
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// RunHeadless runs the OS without a window or keyboard. Console output is
// written to stdout.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg RunConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}
	h := newHostHAL(cfg.Logger)
	h.serial = &hostSerial{w: os.Stdout}

	step := newApp(h)
	cfg.Logger.Info("headless backend started", "hz", cfg.Hz, "ticks", cfg.Ticks)
	return runTicks(ctx, h, step, cfg)
}

// runTicks drives step at cfg.Hz until ctx is done, step fails, or cfg.Ticks
// frames have run.
func runTicks(ctx context.Context, h *hostHAL, step func() error, cfg RunConfig) error {
	d := time.Second / time.Duration(cfg.Hz)
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step(1)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
