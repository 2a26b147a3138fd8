package app

import (
	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/services/console"
	"kbshell/sys/services/kbd"
	"kbshell/sys/services/logger"
	"kbshell/sys/services/term"
)

// DefaultStepBudget is the number of task steps run per host frame.
const DefaultStepBudget = 64

type Config struct {
	Prompt     string
	Banner     string
	StepBudget int
}

// System is a booted kernel with the console stack wired up.
type System struct {
	k      *kernel.Kernel
	ticks  <-chan uint64
	budget int

	stream  kernel.Capability
	console *console.Service
	fault   *FaultError
}

// New boots the OS on h and returns the per-frame step function.
func New(h hal.HAL, cfg Config) func() error {
	return Boot(h, cfg).Step
}

// Boot is NewSystem plus the fatal path: the first task panic is reported on
// h and every later Step returns it as a *FaultError, so the host runner
// unwinds and restores the terminal before the process exits.
func Boot(h hal.HAL, cfg Config) *System {
	s := NewSystem(h, cfg)
	installPanicHandler(h, func(info kernel.PanicInfo) {
		s.fault = &FaultError{Info: info}
	})
	return s
}

// NewSystem wires the kernel, endpoints and tasks:
//
//	kbd -> stream -> console -> term
//	            \-> logger  <-/
func NewSystem(h hal.HAL, cfg Config) *System {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}

	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	termEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	streamEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	k.AddTask(term.New(h.Display(), h.Serial(), termEP.Restrict(kernel.RightRecv)))
	if in := h.Input(); in != nil {
		k.AddTask(kbd.New(in, streamEP.Restrict(kernel.RightSend)))
	}

	con := console.New(
		streamEP.Restrict(kernel.RightRecv),
		termEP.Restrict(kernel.RightSend),
		logEP.Restrict(kernel.RightSend),
		console.Config{Prompt: cfg.Prompt, Banner: cfg.Banner},
	)
	k.AddTask(con)

	s := &System{
		k:       k,
		budget:  cfg.StepBudget,
		stream:  streamEP.Restrict(kernel.RightSend),
		console: con,
	}
	if ht := h.Time(); ht != nil {
		s.ticks = ht.Ticks()
	}
	return s
}

// AddTask registers an extra task, e.g. a scripted event source.
func (s *System) AddTask(t kernel.Task) kernel.TaskID { return s.k.AddTask(t) }

// StreamCap returns a send-only capability on the console's key event stream.
func (s *System) StreamCap() kernel.Capability { return s.stream }

// Console returns the console task.
func (s *System) Console() *console.Service { return s.console }

// Step delivers pending ticks and runs up to the step budget.
func (s *System) Step() error {
	if s.fault != nil {
		return s.fault
	}
	s.drainTicks()
	s.k.Run(s.budget)
	if s.fault != nil {
		return s.fault
	}
	return nil
}

func (s *System) drainTicks() {
	if s.ticks == nil {
		return
	}
	for {
		select {
		case seq, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				return
			}
			s.k.TickTo(seq)
		default:
			return
		}
	}
}
