// Package kernel schedules the shell's tasks and routes their messages.
//
// The host calls Run once per frame; each Task.Step runs to completion on the
// caller's goroutine, so tasks share no locks.
package kernel

// Wait sets are uint32 bitmasks indexed by TaskID, which caps tasks at 32.
const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 8
)

// TaskID is the registration order of a task, starting at zero.
type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability names an endpoint plus the rights held on it. The zero value
// grants nothing; only NewEndpoint and Restrict produce usable ones.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool {
	return c.rights != 0
}

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// Message is a fixed-size IPC envelope.
type Message struct {
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
}

// MaxMessageBytes is the maximum payload size for IPC messages.
const MaxMessageBytes = 128

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidToCap
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is one service: keyboard driver, console, terminal or logger.
//
// Step must not block. Returning yields to the next runnable task; a task
// that wants to sleep calls Context.Recv or Context.BlockOnTick first.
type Task interface {
	Step(*Context)
}

type endpointState struct {
	q        mailbox
	waitMask uint32
}

type taskState struct {
	task     Task
	runnable bool
	waiting  Endpoint
}

// Kernel runs tasks round robin and owns every endpoint mailbox.
type Kernel struct {
	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	tasks     [maxTasks]taskState
	taskCount TaskID

	rr TaskID

	tick         uint64
	tickWaitMask uint32
}

// New creates a kernel instance.
func New() *Kernel {
	return &Kernel{}
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	if k.endpointCount >= maxEndpoints {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task and returns its ID.
func (k *Kernel) AddTask(t Task) TaskID {
	if k.taskCount >= maxTasks {
		return 0
	}
	id := k.taskCount
	k.taskCount++
	k.tasks[id] = taskState{task: t, runnable: true}
	return id
}

// Step runs at most one runnable task step. It reports whether a task ran.
func (k *Kernel) Step() bool {
	if k.taskCount == 0 {
		return false
	}

	for i := TaskID(0); i < k.taskCount; i++ {
		id := (k.rr + i) % k.taskCount
		st := &k.tasks[id]
		if st.task == nil || !st.runnable {
			continue
		}

		k.rr = (id + 1) % k.taskCount
		ctx := &Context{k: k, taskID: id}
		if !k.runStep(id, st.task, ctx) {
			// The task panicked; it never runs again.
			st.task = nil
			st.runnable = false
			return true
		}

		if ctx.blocked {
			st.runnable = false
			if ctx.blockOnTick {
				k.tickWaitMask |= 1 << id
			} else {
				st.waiting = ctx.blockOn
				if st.waiting < k.endpointCount {
					k.endpoints[st.waiting].waitMask |= 1 << id
				}
			}
		}
		return true
	}
	return false
}

// Run performs up to budget task steps and returns how many ran.
func (k *Kernel) Run(budget int) int {
	n := 0
	for n < budget {
		if !k.Step() {
			break
		}
		n++
	}
	return n
}

func (k *Kernel) runStep(id TaskID, t Task, ctx *Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			fatal(PanicInfo{TaskID: id, Tick: k.tick, Value: r})
		}
	}()
	t.Step(ctx)
	return true
}

// Tick advances the tick counter by one and wakes tasks blocked via
// Context.BlockOnTick.
func (k *Kernel) Tick() {
	k.TickTo(k.tick + 1)
}

// TickTo moves the tick counter forward to seq. Older values are ignored.
func (k *Kernel) TickTo(seq uint64) {
	if seq <= k.tick {
		return
	}
	k.tick = seq
	k.wake(k.tickWaitMask)
	k.tickWaitMask = 0
}

// wake makes every live task in mask runnable. Retired tasks stay parked.
func (k *Kernel) wake(mask uint32) {
	for tid := TaskID(0); mask != 0 && tid < k.taskCount; tid++ {
		if mask&(1<<tid) == 0 {
			continue
		}
		mask &^= 1 << tid
		if k.tasks[tid].task != nil {
			k.tasks[tid].runnable = true
		}
	}
}

func (k *Kernel) send(to Endpoint, kind uint16, payload []byte) SendResult {
	if to >= k.endpointCount {
		return SendErrNoEndpoint
	}
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	var msg Message
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)

	ep := &k.endpoints[to]
	if !ep.q.push(msg) {
		return SendErrQueueFull
	}

	k.wake(ep.waitMask)
	ep.waitMask = 0
	return SendOK
}

func (k *Kernel) recv(to Endpoint) (Message, bool) {
	if to >= k.endpointCount {
		return Message{}, false
	}
	return k.endpoints[to].q.pop()
}
