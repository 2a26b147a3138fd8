package kbd

import (
	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/keyboard"
	"kbshell/sys/proto"
)

// maxPending bounds the records held back while the stream endpoint is full.
const maxPending = 256

// Service forwards raw keyboard events from the HAL to the key event stream.
type Service struct {
	in     hal.Input
	outCap kernel.Capability

	events  <-chan keyboard.Event
	pending [][]byte
	dropped int
}

func New(in hal.Input, streamCap kernel.Capability) *Service {
	return &Service{in: in, outCap: streamCap}
}

// Dropped reports how many events were discarded because the pending queue
// was full.
func (s *Service) Dropped() int { return s.dropped }

func (s *Service) Step(ctx *kernel.Context) {
	if s.events == nil && !s.attach() {
		ctx.BlockOnTick()
		return
	}

	s.flush(ctx)
	if len(s.pending) > 0 {
		ctx.BlockOnTick()
		return
	}

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.events = nil
				return
			}
			s.enqueue(ev)
			s.flush(ctx)
			if len(s.pending) > 0 {
				ctx.BlockOnTick()
				return
			}
		default:
			ctx.BlockOnTick()
			return
		}
	}
}

func (s *Service) attach() bool {
	if s.in == nil {
		return false
	}
	kbd := s.in.Keyboard()
	if kbd == nil {
		return false
	}
	s.events = kbd.Events()
	return s.events != nil
}

func (s *Service) enqueue(ev keyboard.Event) {
	if len(s.pending) >= maxPending {
		s.dropped++
		return
	}
	s.pending = append(s.pending, proto.KeyEventPayload(ev))
}

func (s *Service) flush(ctx *kernel.Context) {
	for len(s.pending) > 0 {
		res := ctx.SendToCapResult(s.outCap, uint16(proto.MsgKeyEvent), s.pending[0])
		switch res {
		case kernel.SendOK:
			s.pending = s.pending[1:]
		case kernel.SendErrQueueFull:
			return
		default:
			s.dropped += len(s.pending)
			s.pending = nil
			return
		}
	}
}
