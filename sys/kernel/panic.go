package kernel

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// PanicInfo describes the first task that panicked.
type PanicInfo struct {
	TaskID TaskID
	Tick   uint64
	Value  any
	Stack  []byte
}

func (p PanicInfo) String() string {
	return fmt.Sprintf("task %d: %v", p.TaskID, p.Value)
}

// PanicHandler receives the first task panic. It runs on the scheduler's
// goroutine and must not panic itself.
type PanicHandler func(PanicInfo)

var (
	panicked  atomic.Bool
	fatalOnce sync.Once
	onPanic   atomic.Pointer[PanicHandler]
)

// InPanicMode reports whether any task has panicked in this process.
func InPanicMode() bool { return panicked.Load() }

// SetPanicHandler replaces the process-wide handler; nil removes it. Only the
// first panic reaches a handler.
func SetPanicHandler(fn func(PanicInfo)) {
	if fn == nil {
		onPanic.Store(nil)
		return
	}
	h := PanicHandler(fn)
	onPanic.Store(&h)
}

// fatal is called from the recover in runStep, so debug.Stack still shows
// the panicking frames.
func fatal(info PanicInfo) {
	fatalOnce.Do(func() {
		panicked.Store(true)
		info.Stack = debug.Stack()
		if h := onPanic.Load(); h != nil {
			(*h)(info)
		}
	})
}
