package hal

import (
	"sync/atomic"

	"kbshell/sys/keyboard"
)

const keyQueueDepth = 256

type hostKeyboard struct {
	ch chan keyboard.Event

	// held keeps modifier releases that found the queue full; they are
	// delivered ahead of later events. Losing one would leave the decoder's
	// flag set for the rest of the session.
	held    []keyboard.Event
	dropped atomic.Uint64
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan keyboard.Event, keyQueueDepth)}
}

func (k *hostKeyboard) Events() <-chan keyboard.Event { return k.ch }

// Dropped returns the number of events discarded because the queue was full.
func (k *hostKeyboard) Dropped() uint64 { return k.dropped.Load() }

// emit queues ev without blocking. Modifier releases are held and retried;
// anything else is dropped when the queue is full. emit must be called from a
// single goroutine.
func (k *hostKeyboard) emit(ev keyboard.Event) bool {
	if k.retry() {
		select {
		case k.ch <- ev:
			return true
		default:
		}
	}
	if isModifierRelease(ev) {
		k.held = append(k.held, ev)
		return true
	}
	k.dropped.Add(1)
	return false
}

// retry delivers held releases in order and reports whether none are left.
func (k *hostKeyboard) retry() bool {
	for len(k.held) > 0 {
		select {
		case k.ch <- k.held[0]:
			k.held = k.held[1:]
		default:
			return false
		}
	}
	return true
}

func isModifierRelease(ev keyboard.Event) bool {
	_, ok := ev.Key.Modifier()
	return ok && ev.Kind == keyboard.KindUp
}
