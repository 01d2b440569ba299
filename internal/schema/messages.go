package schema

// Messages is the ordered list of messages exchanged with the LLM.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
func NewMessages(msgs ...Message) Messages {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// Len returns the number of messages.
func (mh Messages) Len() int { return len(mh.Messages) }

// Clone returns a copy of mh with an independent backing slice.
func (mh Messages) Clone() Messages {
	return NewMessages(mh.Messages...)
}
