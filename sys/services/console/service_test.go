package console

import (
	"strings"
	"testing"

	"kbshell/sys/kernel"
	"kbshell/sys/keyboard"
	"kbshell/sys/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lshift = keyboard.ModifierKey(keyboard.LeftShift)
	rshift = keyboard.ModifierKey(keyboard.RightShift)
	caps   = keyboard.ModifierKey(keyboard.CapsLock)
	keyA   = keyboard.ControlKey(keyboard.KeyA)
	enter  = keyboard.ControlKey(keyboard.Enter)
)

func down(k keyboard.VirtualKeyCode) keyboard.Event { return keyboard.KeyDown(k) }
func up(k keyboard.VirtualKeyCode) keyboard.Event   { return keyboard.KeyUp(k) }

// feeder sends queued records to the event stream as fast as it accepts them.
type feeder struct {
	to      kernel.Capability
	records [][]byte
}

func (f *feeder) Step(ctx *kernel.Context) {
	for len(f.records) > 0 {
		if ctx.SendToCapResult(f.to, uint16(proto.MsgKeyEvent), f.records[0]) != kernel.SendOK {
			return
		}
		f.records = f.records[1:]
	}
}

// capture collects every payload delivered to an endpoint.
type capture struct {
	ep    kernel.Capability
	kinds []proto.Kind
	out   strings.Builder
	lines []string
}

func (c *capture) Step(ctx *kernel.Context) {
	for {
		msg, ok := ctx.TryRecv(c.ep)
		if !ok {
			return
		}
		c.kinds = append(c.kinds, proto.Kind(msg.Kind))
		c.out.Write(msg.Payload())
		c.lines = append(c.lines, string(msg.Payload()))
	}
}

type harness struct {
	k    *kernel.Kernel
	svc  *Service
	feed *feeder
	term *capture
	log  *capture
}

func newHarness(cfg Config) *harness {
	k := kernel.New()
	in := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logEp := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	h := &harness{
		k:    k,
		svc:  New(in.Restrict(kernel.RightRecv), out.Restrict(kernel.RightSend), logEp.Restrict(kernel.RightSend), cfg),
		feed: &feeder{to: in.Restrict(kernel.RightSend)},
		term: &capture{ep: out.Restrict(kernel.RightRecv)},
		log:  &capture{ep: logEp.Restrict(kernel.RightRecv)},
	}
	k.AddTask(h.feed)
	k.AddTask(h.svc)
	k.AddTask(h.term)
	k.AddTask(h.log)
	return h
}

func (h *harness) send(evs ...keyboard.Event) {
	for _, ev := range evs {
		h.feed.records = append(h.feed.records, proto.KeyEventPayload(ev))
	}
	h.run()
}

func (h *harness) sendRaw(records ...[]byte) {
	h.feed.records = append(h.feed.records, records...)
	h.run()
}

func (h *harness) run() {
	h.k.Run(64 + 8*len(h.feed.records))
}

func TestConsoleEchoesDecodedCharacter(t *testing.T) {
	h := newHarness(Config{})
	h.send(down(keyA))

	assert.Equal(t, "a", h.term.out.String())
	assert.Equal(t, "a", h.svc.Line())
	assert.Equal(t, 0, h.svc.Commits())
}

func TestConsoleCommitsOnEnterRelease(t *testing.T) {
	h := newHarness(Config{})
	h.send(down(lshift), down(keyA), up(lshift), up(enter))

	assert.Equal(t, "A"+"A\n> ", h.term.out.String())
	assert.Equal(t, "", h.svc.Line())
	assert.Equal(t, 1, h.svc.Commits())
	assert.Equal(t, keyboard.State{}, h.svc.State())
}

func TestConsoleSuppressesCommitUnderBothShifts(t *testing.T) {
	h := newHarness(Config{})
	h.send(down(lshift), down(rshift), up(enter))

	assert.Empty(t, h.term.out.String())
	assert.Empty(t, h.svc.Line())
	assert.Equal(t, 0, h.svc.Commits())
}

func TestConsoleSingleShiftDoesNotSuppressCommit(t *testing.T) {
	h := newHarness(Config{})
	h.send(down(rshift), up(enter))

	assert.Equal(t, "\n> ", h.term.out.String())
	assert.Equal(t, 1, h.svc.Commits())
}

func TestConsoleIgnoresUnmatchedReleases(t *testing.T) {
	h := newHarness(Config{})
	h.send(up(lshift), up(rshift), up(caps), up(keyA), up(keyboard.ModifierKey(keyboard.NumLock)))

	assert.Empty(t, h.term.out.String())
	assert.Empty(t, h.svc.Line())
	assert.Equal(t, keyboard.State{}, h.svc.State())
}

func TestConsoleEnterPressIsPartOfLine(t *testing.T) {
	h := newHarness(Config{})
	var evs []keyboard.Event
	for _, r := range "hi\n" {
		e, ok := keyboard.Type(r)
		require.True(t, ok)
		evs = append(evs, e...)
	}
	h.send(evs...)

	assert.Equal(t, "hi\n"+"hi\n\n> ", h.term.out.String())
	assert.Equal(t, 1, h.svc.Commits())
	assert.Empty(t, h.svc.Line())
}

func TestConsoleCapsLock(t *testing.T) {
	h := newHarness(Config{})
	h.send(down(caps), up(caps), down(keyA), up(keyA), down(lshift), down(keyA))

	assert.Equal(t, "Aa", h.term.out.String())
	assert.True(t, h.svc.State().CapsLock)
}

func TestConsoleDropsMalformedRecords(t *testing.T) {
	h := newHarness(Config{})
	h.sendRaw(
		[]byte{9, 2, byte(keyboard.KeyA)},
		[]byte{1},
		proto.KeyEventPayload(down(keyA)),
	)

	assert.Equal(t, "a", h.term.out.String())
	require.Len(t, h.log.lines, 2)
	assert.Contains(t, h.log.lines[0], "bad event kind")
	assert.Contains(t, h.log.lines[1], "short payload")
	for _, k := range h.log.kinds {
		assert.Equal(t, proto.MsgLogLine, k)
	}
}

func TestConsoleBannerAndPrompt(t *testing.T) {
	h := newHarness(Config{Banner: "kbshell", Prompt: "$ "})
	h.send(down(keyA), up(keyA), up(enter))

	assert.Equal(t, "kbshell\n$ "+"a"+"a\n$ ", h.term.out.String())
}

func TestConsoleCustomKeymap(t *testing.T) {
	km := keyboard.KeymapFunc(func(key keyboard.Control, lshift, rshift, capsLock, numLock bool) rune {
		return '#'
	})
	h := newHarness(Config{Keymap: km})
	h.send(down(keyA), down(keyboard.ControlKey(keyboard.Digit1)))

	assert.Equal(t, "##", h.term.out.String())
}

func TestConsoleBuffersOutputWhileSinkBusy(t *testing.T) {
	k := kernel.New()
	in := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	svc := New(in.Restrict(kernel.RightRecv), out.Restrict(kernel.RightSend), kernel.Capability{}, Config{})
	feed := &feeder{to: in.Restrict(kernel.RightSend)}
	k.AddTask(feed)
	k.AddTask(svc)

	want := "abcdefghijkl"
	for _, r := range want {
		e, ok := keyboard.Type(r)
		require.True(t, ok)
		for _, ev := range e {
			feed.records = append(feed.records, proto.KeyEventPayload(ev))
		}
	}
	k.Run(200)
	require.Empty(t, feed.records)
	assert.NotEmpty(t, svc.pending)

	term := &capture{ep: out.Restrict(kernel.RightRecv)}
	k.AddTask(term)
	k.Run(200)

	assert.Equal(t, want, term.out.String())
	assert.Empty(t, svc.pending)
}

func TestConsoleWithoutOutputCapability(t *testing.T) {
	k := kernel.New()
	in := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	svc := New(in.Restrict(kernel.RightRecv), kernel.Capability{}, kernel.Capability{}, Config{})
	feed := &feeder{to: in.Restrict(kernel.RightSend), records: [][]byte{proto.KeyEventPayload(down(keyA))}}
	k.AddTask(feed)
	k.AddTask(svc)

	k.Run(16)
	assert.Equal(t, "a", svc.Line())
	assert.Empty(t, svc.pending)
}

// turn runs the console once per kernel step and records the stream and
// sink depth around each call.
type turn struct {
	svc     *Service
	in, out kernel.Capability

	before, after, output []int
}

func (t *turn) Step(ctx *kernel.Context) {
	t.before = append(t.before, ctx.Pending(t.in))
	t.svc.Step(ctx)
	t.after = append(t.after, ctx.Pending(t.in))
	t.output = append(t.output, ctx.Pending(t.out))
}

func newTurn(records [][]byte) (*kernel.Kernel, *turn) {
	k := kernel.New()
	in := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	t := &turn{
		svc: New(in.Restrict(kernel.RightRecv), out.Restrict(kernel.RightSend), kernel.Capability{}, Config{}),
		in:  in,
		out: out,
	}
	k.AddTask(&feeder{to: in.Restrict(kernel.RightSend), records: records})
	k.AddTask(t)
	return k, t
}

func stepOnce(k *kernel.Kernel, t *turn) {
	for i := 0; i < 8 && len(t.before) == 0; i++ {
		k.Step()
	}
}

func TestConsoleConsumesOneRecordPerStep(t *testing.T) {
	var records [][]byte
	for _, key := range []keyboard.Control{keyboard.KeyA, keyboard.KeyB, keyboard.KeyC, keyboard.KeyD, keyboard.KeyE} {
		records = append(records, proto.KeyEventPayload(down(keyboard.ControlKey(key))))
	}
	k, tr := newTurn(records)

	stepOnce(k, tr)
	require.Len(t, tr.before, 1)
	assert.Equal(t, 5, tr.before[0])
	assert.Equal(t, 4, tr.after[0], "one poll per turn")
	assert.Equal(t, "a", tr.svc.Line())
	assert.Equal(t, 1, tr.output[0])
}

func TestConsoleStepOnEmptyStreamIsNoop(t *testing.T) {
	k, tr := newTurn(nil)

	stepOnce(k, tr)
	require.Len(t, tr.before, 1)
	assert.Equal(t, 0, tr.after[0])
	assert.Equal(t, 0, tr.output[0])
	assert.Empty(t, tr.svc.Line())
	assert.Equal(t, 0, tr.svc.Commits())
	assert.Equal(t, keyboard.State{}, tr.svc.State())
}

func TestConsoleLogsOutputOverflowOnce(t *testing.T) {
	k := kernel.New()
	in := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logEp := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	svc := New(in.Restrict(kernel.RightRecv), out.Restrict(kernel.RightSend), logEp.Restrict(kernel.RightSend), Config{})
	feed := &feeder{to: in.Restrict(kernel.RightSend)}
	log := &capture{ep: logEp.Restrict(kernel.RightRecv)}
	k.AddTask(feed)
	k.AddTask(svc)
	k.AddTask(log)

	// Nothing drains the sink: eight one-byte messages fill its mailbox, then
	// the buffer fills, then echo is dropped.
	const typed = 8 + maxPendingOutput + 96
	for i := 0; i < typed; i++ {
		feed.records = append(feed.records, proto.KeyEventPayload(down(keyA)))
	}
	k.Run(4 * typed)

	require.Empty(t, feed.records)
	assert.Len(t, svc.Line(), typed, "the line keeps every character")
	assert.Equal(t, 96, svc.DroppedOutput())
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "output buffer full")
}
