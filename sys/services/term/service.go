package term

import (
	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/proto"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// clearSequence resets a serial terminal.
const clearSequence = "\x1b[2J\x1b[H"

// Service is the console output sink. It renders onto the framebuffer when a
// display is present and writes to the serial port otherwise.
type Service struct {
	disp   hal.Display
	serial hal.Serial
	ep     kernel.Capability

	fb    hal.Framebuffer
	d     *fbDisplayer
	t     *tinyterm.Terminal
	dirty bool
}

func New(disp hal.Display, serial hal.Serial, ep kernel.Capability) *Service {
	s := &Service{disp: disp, serial: serial, ep: ep}
	if disp != nil {
		s.fb = disp.Framebuffer()
	}
	if s.fb != nil && s.fb.Format() == hal.PixelFormatRGB565 {
		s.d = newFBDisplayer(s.fb)
		s.reset()
	}
	return s
}

func (s *Service) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			s.present()
			return
		}
		s.handle(msg)
	}
}

func (s *Service) handle(msg kernel.Message) {
	switch proto.Kind(msg.Kind) {
	case proto.MsgTermWrite:
		s.write(msg.Payload())
	case proto.MsgTermClear:
		if s.t != nil {
			s.reset()
			return
		}
		s.write([]byte(clearSequence))
	}
}

func (s *Service) write(b []byte) {
	if s.t != nil {
		_, _ = s.t.Write(b)
		s.dirty = true
		return
	}
	if s.serial != nil {
		_, _ = s.serial.Write(b)
	}
}

func (s *Service) present() {
	if !s.dirty || s.t == nil {
		return
	}
	s.t.Display()
	s.dirty = false
}

func (s *Service) reset() {
	s.fb.ClearRGB(0, 0, 0)
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	s.dirty = true
}
