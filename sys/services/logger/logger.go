package logger

import (
	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/proto"
)

type Service struct {
	log hal.Logger
	ep  kernel.Capability
}

func New(log hal.Logger, ep kernel.Capability) *Service {
	return &Service{log: log, ep: ep}
}

func (s *Service) Step(ctx *kernel.Context) {
	msg, ok := ctx.Recv(s.ep)
	if !ok {
		return
	}
	if s.log == nil {
		return
	}
	if proto.Kind(msg.Kind) != proto.MsgLogLine {
		return
	}
	s.log.WriteLineBytes(msg.Payload())
}
