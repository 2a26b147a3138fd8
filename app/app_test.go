package app

import (
	"bytes"
	"strings"
	"testing"

	"kbshell/hal"
	"kbshell/sys/kernel"
	"kbshell/sys/keyboard"
	"kbshell/sys/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHAL struct {
	log    *testLogger
	kbd    *testKeyboard
	serial *bytes.Buffer
	ticks  chan uint64
	seq    uint64
}

type testLogger struct{ lines []string }

func (l *testLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testKeyboard struct{ ch chan keyboard.Event }

func (k *testKeyboard) Events() <-chan keyboard.Event { return k.ch }

type testInput struct{ kbd *testKeyboard }

func (in testInput) Keyboard() hal.Keyboard { return in.kbd }

type testSerial struct{ *bytes.Buffer }

func (s testSerial) Read(p []byte) (int, error) { return 0, hal.ErrNotImplemented }

type testTime struct{ ch chan uint64 }

func (t testTime) Ticks() <-chan uint64 { return t.ch }

func newTestHAL() *testHAL {
	return &testHAL{
		log:    &testLogger{},
		kbd:    &testKeyboard{ch: make(chan keyboard.Event, 256)},
		serial: &bytes.Buffer{},
		ticks:  make(chan uint64, 16),
	}
}

func (h *testHAL) Logger() hal.Logger   { return h.log }
func (h *testHAL) Display() hal.Display { return nil }
func (h *testHAL) Input() hal.Input     { return testInput{kbd: h.kbd} }
func (h *testHAL) Serial() hal.Serial   { return testSerial{h.serial} }
func (h *testHAL) Time() hal.Time       { return testTime{ch: h.ticks} }

// frame advances the tick and runs one host frame.
func (h *testHAL) frame(t *testing.T, step func() error) {
	t.Helper()
	h.seq++
	h.ticks <- h.seq
	require.NoError(t, step())
}

func (h *testHAL) typeString(s string) {
	for _, ev := range keyboard.TypeString(s) {
		h.kbd.ch <- ev
	}
}

func TestSystemEchoesAndCommits(t *testing.T) {
	h := newTestHAL()
	sys := NewSystem(h, Config{})

	h.typeString("ls -l")
	for i := 0; i < 8; i++ {
		h.frame(t, sys.Step)
	}
	assert.Equal(t, "ls -l", h.serial.String())
	assert.Equal(t, "ls -l", sys.Console().Line())

	enter := keyboard.ControlKey(keyboard.Enter)
	h.kbd.ch <- keyboard.KeyUp(enter)
	for i := 0; i < 4; i++ {
		h.frame(t, sys.Step)
	}
	assert.Equal(t, "ls -l"+"ls -l\n> ", h.serial.String())
	assert.Empty(t, sys.Console().Line())
}

func TestSystemBannerAndPrompt(t *testing.T) {
	h := newTestHAL()
	sys := NewSystem(h, Config{Banner: "kbshell dev", Prompt: "% "})

	h.frame(t, sys.Step)
	assert.Equal(t, "kbshell dev\n% ", h.serial.String())
}

// injector sends raw records to the console stream once.
type injector struct {
	to      kernel.Capability
	records [][]byte
}

func (in *injector) Step(ctx *kernel.Context) {
	for len(in.records) > 0 && ctx.SendToCap(in.to, uint16(proto.MsgKeyEvent), in.records[0]) {
		in.records = in.records[1:]
	}
	ctx.BlockOnTick()
}

func TestSystemLogsMalformedRecords(t *testing.T) {
	h := newTestHAL()
	sys := NewSystem(h, Config{})
	sys.AddTask(&injector{to: sys.StreamCap(), records: [][]byte{
		{1, 7, 1},
		proto.KeyEventPayload(keyboard.KeyDown(keyboard.ControlKey(keyboard.KeyZ))),
	}})

	for i := 0; i < 4; i++ {
		h.frame(t, sys.Step)
	}
	assert.Equal(t, "z", h.serial.String())
	require.NotEmpty(t, h.log.lines)
	assert.Contains(t, h.log.lines[0], "bad key class")
}

type panicker struct{}

func (panicker) Step(*kernel.Context) { panic("boom") }

func TestPanicReportsAndStopsTheRunner(t *testing.T) {
	h := newTestHAL()
	sys := Boot(h, Config{})
	sys.AddTask(panicker{})

	h.ticks <- 1
	err := sys.Step()
	var fault *FaultError
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, kernel.TaskID(4), fault.Info.TaskID)
	assert.Equal(t, 1, fault.ExitCode())
	assert.Equal(t, "panic: task 4: boom", err.Error())

	h.ticks <- 2
	require.ErrorIs(t, sys.Step(), err, "later frames keep reporting the fault")
	assert.True(t, kernel.InPanicMode())
	assert.Contains(t, h.serial.String(), "panic: task 4: boom")
	require.NotEmpty(t, h.log.lines)
	assert.True(t, strings.HasPrefix(h.log.lines[0], "panic: task 4: boom"))
}

func TestDrawPanicScreen(t *testing.T) {
	fb := newMemFB(80, 24)
	drawPanicScreen(fb, []string{"panic: task 1: boom", "main.go:1"})

	assert.Equal(t, 1, fb.presents)
	dark := 0
	for i := 0; i+1 < len(fb.buf); i += 2 {
		if fb.buf[i] == 0 && fb.buf[i+1] == 0 {
			dark++
		}
	}
	assert.Positive(t, dark)
}

type memFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newMemFB(w, h int) *memFB { return &memFB{w: w, h: h, buf: make([]byte, w*h*2)} }

func (f *memFB) Width() int              { return f.w }
func (f *memFB) Height() int             { return f.h }
func (f *memFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *memFB) StrideBytes() int        { return f.w * 2 }
func (f *memFB) Buffer() []byte          { return f.buf }
func (f *memFB) Present() error          { f.presents++; return nil }

func (f *memFB) ClearRGB(r, g, b uint8) {
	for i := range f.buf {
		f.buf[i] = 0xff
	}
}
