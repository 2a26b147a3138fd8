// Package console implements the line-editing console task.
//
// The task reads raw keyboard records from the key event stream, tracks
// modifier state with a keyboard.Decoder, echoes every decoded character and
// ends the line when Enter is released.
package console

import (
	logclient "kbshell/sys/client/logger"
	"kbshell/sys/kernel"
	"kbshell/sys/keyboard"
	"kbshell/sys/proto"
)

// DefaultPrompt is printed after every committed line.
const DefaultPrompt = "> "

// maxPendingOutput bounds buffered echo output while the sink is busy.
const maxPendingOutput = 4096

type Config struct {
	// Prompt follows every committed line. Empty means DefaultPrompt.
	Prompt string
	// Banner is printed once, followed by the prompt, before the first event.
	Banner string
	// Keymap translates keys to characters. Nil means keyboard.US.
	Keymap keyboard.Keymap
}

type Service struct {
	inCap  kernel.Capability
	outCap kernel.Capability
	logCap kernel.Capability
	cfg    Config

	dec  *keyboard.Decoder
	line []rune

	pending []byte
	started bool
	commits int

	// dropped counts echo bytes lost to a full output buffer; overflowing
	// is set from the first loss until the buffer accepts output again.
	dropped     int
	overflowing bool
}

// New creates the console task. inCap must carry receive rights on the key
// event stream; outCap and logCap need send rights.
func New(inCap, outCap, logCap kernel.Capability, cfg Config) *Service {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	return &Service{
		inCap:  inCap,
		outCap: outCap,
		logCap: logCap,
		cfg:    cfg,
		dec:    keyboard.NewDecoder(cfg.Keymap),
	}
}

// Line returns the characters typed since the last commit.
func (s *Service) Line() string { return string(s.line) }

// Commits returns the number of committed lines.
func (s *Service) Commits() int { return s.commits }

// DroppedOutput returns the number of output bytes discarded because the
// sink fell too far behind.
func (s *Service) DroppedOutput() int { return s.dropped }

// State returns the decoder's modifier flags.
func (s *Service) State() keyboard.State { return s.dec.State() }

// Step performs one iteration of the console loop: at most one poll of the
// event stream. It never blocks; returning is the yield.
func (s *Service) Step(ctx *kernel.Context) {
	if !s.started {
		s.started = true
		if s.cfg.Banner != "" {
			s.write(ctx, s.cfg.Banner+"\n"+s.cfg.Prompt)
		}
	}

	s.flush(ctx)

	msg, ok := ctx.TryRecv(s.inCap)
	if !ok {
		return
	}
	s.handle(ctx, msg)
	s.flush(ctx)
}

func (s *Service) handle(ctx *kernel.Context, msg kernel.Message) {
	if proto.Kind(msg.Kind) != proto.MsgKeyEvent {
		logclient.Logf(ctx, s.logCap, "console: unexpected %s message", proto.Kind(msg.Kind))
		return
	}
	ev, err := proto.DecodeKeyEventPayload(msg.Payload())
	if err != nil {
		logclient.Logf(ctx, s.logCap, "console: drop record: %v", err)
		return
	}

	if r, ok := s.dec.Decode(ev); ok {
		s.line = append(s.line, r)
		s.write(ctx, string(r))
		return
	}
	if s.dec.IsCommit(ev) {
		s.write(ctx, string(s.line)+"\n"+s.cfg.Prompt)
		s.line = s.line[:0]
		s.commits++
	}
}

// write queues str for the sink. When the buffer is full str is dropped and
// the first drop of each overflow is logged, since the echo no longer matches
// the line.
func (s *Service) write(ctx *kernel.Context, str string) {
	if len(s.pending)+len(str) > maxPendingOutput {
		s.dropped += len(str)
		if !s.overflowing {
			s.overflowing = true
			logclient.Logf(ctx, s.logCap, "console: output buffer full, dropping %d bytes", len(str))
		}
		return
	}
	s.overflowing = false
	s.pending = append(s.pending, str...)
}

func (s *Service) flush(ctx *kernel.Context) {
	for len(s.pending) > 0 {
		if !s.outCap.Valid() {
			s.pending = s.pending[:0]
			return
		}

		chunk := s.pending
		if len(chunk) > kernel.MaxMessageBytes {
			chunk = chunk[:kernel.MaxMessageBytes]
		}

		res := ctx.SendToCapResult(s.outCap, uint16(proto.MsgTermWrite), chunk)
		switch res {
		case kernel.SendOK:
			s.pending = s.pending[len(chunk):]
		case kernel.SendErrQueueFull:
			return
		default:
			s.pending = s.pending[:0]
			return
		}
	}
}
