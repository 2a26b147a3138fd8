package kbd

import (
	"testing"

	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/keyboard"
	"kbshell/sys/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanKeyboard struct {
	ch chan keyboard.Event
}

func (k *chanKeyboard) Events() <-chan keyboard.Event { return k.ch }

type chanInput struct {
	kbd *chanKeyboard
}

func (in chanInput) Keyboard() hal.Keyboard { return in.kbd }

func newInput(depth int) chanInput {
	return chanInput{kbd: &chanKeyboard{ch: make(chan keyboard.Event, depth)}}
}

// drain pops every queued record from the stream endpoint.
type drain struct {
	ep  kernel.Capability
	got []keyboard.Event
	t   *testing.T
}

func (d *drain) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.TryRecv(d.ep)
		if !ok {
			break
		}
		require.Equal(d.t, uint16(proto.MsgKeyEvent), msg.Kind)
		ev, err := proto.DecodeKeyEventPayload(msg.Payload())
		require.NoError(d.t, err)
		d.got = append(d.got, ev)
	}
	ctx.BlockOnTick()
}

func typed(t *testing.T, s string) []keyboard.Event {
	t.Helper()
	var evs []keyboard.Event
	for _, r := range s {
		e, ok := keyboard.Type(r)
		require.True(t, ok, "rune %q", r)
		evs = append(evs, e...)
	}
	return evs
}

func TestServiceForwardsEventsInOrder(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	in := newInput(64)

	k.AddTask(New(in, ep.Restrict(kernel.RightSend)))
	d := &drain{ep: ep.Restrict(kernel.RightRecv), t: t}
	k.AddTask(d)

	want := typed(t, "Hi")
	for _, ev := range want {
		in.kbd.ch <- ev
	}

	k.Run(8)
	assert.Equal(t, want, d.got)
}

func TestServiceHoldsRecordsWhileQueueFull(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	in := newInput(64)
	svc := New(in, ep.Restrict(kernel.RightSend))
	k.AddTask(svc)

	want := typed(t, "abcdef")
	require.Len(t, want, 12)
	for _, ev := range want {
		in.kbd.ch <- ev
	}

	require.True(t, k.Step())
	assert.Len(t, svc.pending, 1)
	assert.Len(t, in.kbd.ch, 3)

	d := &drain{ep: ep.Restrict(kernel.RightRecv), t: t}
	k.AddTask(d)
	for i := 0; i < 4; i++ {
		k.Tick()
		k.Run(8)
	}

	assert.Equal(t, want, d.got)
	assert.Empty(t, svc.pending)
	assert.Zero(t, svc.Dropped())
}

func TestServiceWithoutKeyboardIdles(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend)
	svc := New(nil, ep)
	k.AddTask(svc)

	assert.Equal(t, 1, k.Run(8))
	k.Tick()
	assert.Equal(t, 1, k.Run(8))
}

func TestServiceDropsOnInvalidCapability(t *testing.T) {
	k := kernel.New()
	in := newInput(4)
	svc := New(in, kernel.Capability{})
	k.AddTask(svc)

	in.kbd.ch <- keyboard.KeyDown(keyboard.ControlKey(keyboard.KeyA))
	k.Run(1)

	assert.Empty(t, svc.pending)
	assert.Equal(t, 1, svc.Dropped())
}
