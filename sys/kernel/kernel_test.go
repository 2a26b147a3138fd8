package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcTask func(*Context)

func (f funcTask) Step(ctx *Context) { f(ctx) }

func TestMailboxEmpty(t *testing.T) {
	var mb mailbox
	_, ok := mb.pop()
	assert.False(t, ok)
	assert.Equal(t, 0, mb.len())
}

func TestMailboxFullAndWrap(t *testing.T) {
	var mb mailbox
	for round := 0; round < 70; round++ {
		for i := 0; i < mailboxSlots; i++ {
			require.True(t, mb.push(Message{Kind: uint16(i)}), "round %d slot %d", round, i)
		}
		require.False(t, mb.push(Message{}), "push into full mailbox")
		require.Equal(t, mailboxSlots, mb.len())

		for i := 0; i < mailboxSlots; i++ {
			msg, ok := mb.pop()
			require.True(t, ok)
			require.Equal(t, uint16(i), msg.Kind, "messages must come out in order")
		}
	}
}

func TestMessagePayloadClampsLen(t *testing.T) {
	var msg Message
	msg.Len = MaxMessageBytes + 10
	assert.Len(t, msg.Payload(), MaxMessageBytes)
}

func TestCapabilityRestrict(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	require.True(t, ep.Valid())

	send := ep.Restrict(RightSend)
	assert.True(t, send.canSend())
	assert.False(t, send.canRecv())
	assert.False(t, send.Restrict(RightRecv).Valid())

	ctx := &Context{k: k}
	assert.Equal(t, SendOK, ctx.SendToCapResult(send, 1, []byte("x")))
	_, ok := ctx.TryRecv(send)
	assert.False(t, ok, "send-only capability cannot receive")

	recvOnly := ep.Restrict(RightRecv)
	assert.Equal(t, SendErrToNoSendRight, ctx.SendToCapResult(recvOnly, 1, nil))
	assert.Equal(t, SendErrInvalidToCap, ctx.SendToCapResult(Capability{}, 1, nil))

	msg, ok := ctx.TryRecv(recvOnly)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), msg.Payload())
}

func TestSendErrors(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)
	ctx := &Context{k: k}

	assert.Equal(t, SendErrPayloadTooLarge, ctx.SendToCapResult(ep, 1, make([]byte, MaxMessageBytes+1)))

	for i := 0; i < mailboxSlots; i++ {
		require.Equal(t, SendOK, ctx.SendToCapResult(ep, 1, nil))
	}
	assert.Equal(t, SendErrQueueFull, ctx.SendToCapResult(ep, 1, nil))
	assert.Equal(t, mailboxSlots, ctx.Pending(ep))

	bogus := Capability{ep: 30, rights: RightSend}
	assert.Equal(t, SendErrNoEndpoint, ctx.SendToCapResult(bogus, 1, nil))
}

func TestStepRoundRobin(t *testing.T) {
	k := New()
	var order []int
	k.AddTask(funcTask(func(*Context) { order = append(order, 0) }))
	k.AddTask(funcTask(func(*Context) { order = append(order, 1) }))
	k.AddTask(funcTask(func(*Context) { order = append(order, 2) }))

	assert.Equal(t, 7, k.Run(7))
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, order)
}

func TestStepWithoutTasks(t *testing.T) {
	k := New()
	assert.False(t, k.Step())
	assert.Equal(t, 0, k.Run(10))
}

func TestRecvParksUntilSend(t *testing.T) {
	k := New()
	ep := k.NewEndpoint(RightSend | RightRecv)

	var got []byte
	steps := 0
	k.AddTask(funcTask(func(ctx *Context) {
		steps++
		msg, ok := ctx.Recv(ep.Restrict(RightRecv))
		if !ok {
			return
		}
		got = append(got, msg.Payload()...)
	}))

	require.True(t, k.Step())
	assert.False(t, k.Step(), "task must be parked on an empty endpoint")
	assert.Equal(t, 1, steps)

	ctx := &Context{k: k}
	require.Equal(t, SendOK, ctx.SendToCapResult(ep, 1, []byte("hi")))

	require.True(t, k.Step())
	assert.Equal(t, []byte("hi"), got)
	assert.Equal(t, 2, steps)
}

func TestBlockOnTick(t *testing.T) {
	k := New()
	steps := 0
	k.AddTask(funcTask(func(ctx *Context) {
		steps++
		ctx.BlockOnTick()
	}))

	require.True(t, k.Step())
	assert.False(t, k.Step())

	k.TickTo(5)
	assert.Equal(t, uint64(5), (&Context{k: k}).NowTick())
	require.True(t, k.Step())
	assert.Equal(t, 2, steps)

	k.TickTo(3)
	assert.False(t, k.Step(), "stale tick must not wake tasks")
	k.Tick()
	assert.True(t, k.Step())
	assert.Equal(t, uint64(6), (&Context{k: k}).NowTick())
}

func TestPanickingTaskIsRetired(t *testing.T) {
	var infos []PanicInfo
	SetPanicHandler(func(info PanicInfo) { infos = append(infos, info) })
	defer SetPanicHandler(nil)

	k := New()
	other := 0
	k.AddTask(funcTask(func(*Context) { panic("boom") }))
	k.AddTask(funcTask(func(*Context) { other++ }))

	assert.Equal(t, 4, k.Run(4))
	assert.Equal(t, 3, other, "surviving task keeps running")

	require.Len(t, infos, 1)
	assert.Equal(t, TaskID(0), infos[0].TaskID)
	assert.Equal(t, "boom", infos[0].Value)
	assert.Equal(t, "task 0: boom", infos[0].String())
	assert.NotEmpty(t, infos[0].Stack)
	assert.True(t, InPanicMode())
}
