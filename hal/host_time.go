package hal

import "time"

// hostTick is the OS tick period on host.
const hostTick = time.Millisecond

// hostTime converts wall-clock time between frames into 1ms ticks. Only the
// newest tick value matters to consumers, so a full channel drops updates.
type hostTime struct {
	ch  chan uint64
	seq uint64
	now func() time.Time

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 64), now: time.Now}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step advances by the elapsed time since the previous call; the first call
// advances by minTicks.
func (t *hostTime) step(minTicks uint64) {
	now := t.now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.advance(minTicks)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / hostTick)
	if ticks == 0 {
		return
	}
	t.acc %= hostTick
	t.advance(ticks)
}

func (t *hostTime) advance(n uint64) {
	if n == 0 {
		return
	}
	t.seq += n
	select {
	case t.ch <- t.seq:
	default:
	}
}
