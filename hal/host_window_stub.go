//go:build !cgo

package hal

import (
	"context"
	"errors"
)

func RunWindow(_ context.Context, _ func(h HAL) func() error, _ RunConfig) error {
	return errors.New("window backend requires cgo (build/run with CGO_ENABLED=1), try --backend=tty")
}
