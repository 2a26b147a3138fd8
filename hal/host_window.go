//go:build cgo

package hal

import (
	"context"
	"image"

	"kbshell/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	windowWidth  = 320
	windowHeight = 240
)

// RunWindow starts a desktop window that displays the framebuffer and forwards
// raw keyboard events. It blocks until the window closes or ctx is done.
func RunWindow(ctx context.Context, newApp func(HAL) func() error, cfg RunConfig) error {
	if err := cfg.normalize(); err != nil {
		return err
	}
	h := newHostHAL(cfg.Logger)
	h.fb = newHostFramebuffer(windowWidth, windowHeight)
	step := newApp(h)

	g := &hostGame{ctx: ctx, h: h, step: step, ticks: cfg.Ticks}
	ebiten.SetWindowTitle("kbshell (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(windowWidth*2, windowHeight*2)
	ebiten.SetTPS(cfg.Hz)
	cfg.Logger.Info("window backend started", "width", windowWidth, "height", windowHeight, "tps", cfg.Hz)
	err := ebiten.RunGame(g)
	if n := h.kbd.Dropped(); n > 0 {
		cfg.Logger.Warn("keyboard queue overflowed", "dropped", n)
	}
	return err
}

type hostGame struct {
	ctx     context.Context
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error

	ticks uint64
	frame uint64
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	pollEbitenKeys(g.h.kbd)
	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	g.frame++
	if g.ticks > 0 && g.frame >= g.ticks {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	if fb.snapshotRGB565(g.scratch) {
		src := g.scratch
		dst := g.img.Pix
		for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
			c := ColorFrom565(uint16(src[i]) | uint16(src[i+1])<<8)
			j := (i / 2) * 4
			dst[j+0] = c.R
			dst[j+1] = c.G
			dst[j+2] = c.B
			dst[j+3] = c.A
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
