package kernel

// Context provides task-local access to kernel operations for one Step.
type Context struct {
	k      *Kernel
	taskID TaskID

	blocked     bool
	blockOnTick bool
	blockOn     Endpoint
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.taskID }

// TryRecv pops one message from the capability endpoint without blocking.
// It returns false when the endpoint is empty or the capability cannot receive.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	if c.k == nil || !epCap.valid() || !epCap.canRecv() {
		return Message{}, false
	}
	return c.k.recv(epCap.ep)
}

// Recv pops one message from the capability endpoint. When the endpoint is
// empty the task is parked until a message is sent to it; the caller should
// return from Step.
func (c *Context) Recv(epCap Capability) (Message, bool) {
	msg, ok := c.TryRecv(epCap)
	if ok {
		return msg, true
	}
	if epCap.valid() && epCap.canRecv() {
		c.blocked = true
		c.blockOn = epCap.ep
	}
	return Message{}, false
}

// BlockOnTick parks the task until the next kernel tick. The caller should
// return from Step.
func (c *Context) BlockOnTick() {
	c.blocked = true
	c.blockOnTick = true
}

// SendToCap sends a message to the capability endpoint.
func (c *Context) SendToCap(toCap Capability, kind uint16, payload []byte) bool {
	return c.SendToCapResult(toCap, kind, payload) == SendOK
}

// SendToCapResult sends a message to the capability endpoint and reports the
// outcome. It never blocks.
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte) SendResult {
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	if c.k == nil {
		return SendErrNoEndpoint
	}
	return c.k.send(toCap.ep, kind, payload)
}

// NowTick returns the last observed tick value.
func (c *Context) NowTick() uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.tick
}

// Pending returns the number of queued messages on the capability endpoint.
func (c *Context) Pending(epCap Capability) int {
	if c.k == nil || !epCap.valid() || epCap.ep >= c.k.endpointCount {
		return 0
	}
	return c.k.endpoints[epCap.ep].q.len()
}
