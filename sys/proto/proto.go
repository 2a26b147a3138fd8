package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgKeyEvent
	MsgTermWrite
	MsgTermClear
)

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgKeyEvent:
		return "key_event"
	case MsgTermWrite:
		return "term_write"
	case MsgTermClear:
		return "term_clear"
	default:
		return "unknown"
	}
}
