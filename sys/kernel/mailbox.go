package kernel

// mailbox is an endpoint's FIFO: at most mailboxSlots messages, delivered in
// send order. head and tail wrap at 256, so the slot index stays correct while
// mailboxSlots is a power of two no larger than 128.
type mailbox struct {
	head  uint8
	tail  uint8
	slots [mailboxSlots]Message
}

func (mb *mailbox) push(msg Message) bool {
	if mb.head-mb.tail >= mailboxSlots {
		return false
	}
	mb.slots[mb.head%mailboxSlots] = msg
	mb.head++
	return true
}

func (mb *mailbox) pop() (Message, bool) {
	if mb.tail == mb.head {
		return Message{}, false
	}
	msg := mb.slots[mb.tail%mailboxSlots]
	mb.tail++
	return msg, true
}

func (mb *mailbox) len() int {
	return int(mb.head - mb.tail)
}
