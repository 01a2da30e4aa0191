// Package message provides the data structures shared by receivers, forwarding strategies and senders.
package message

// Token is an opaque completion handle for one received message.
// Its fields are interpreted only by the receiver that produced it.
type Token struct {
	ID     string
	Handle string
}

// Inbound is a message received from the source entity
type Inbound struct {
	Token       Token
	MessageID   string
	ContentType string
	Body        []byte
	Headers     map[string]string
}

// Outbound is a message built for the destination
type Outbound struct {
	MessageID   string
	ContentType string
	Body        []byte
	Headers     map[string]string
}

// Clone builds a new Outbound carrying a copy of the body, the identity and every header.
// The result shares no memory with m, so mutating it cannot alter a message still pending at the source.
func (m Inbound) Clone() Outbound {
	out := Outbound{
		MessageID:   m.MessageID,
		ContentType: m.ContentType,
		Headers:     make(map[string]string, len(m.Headers)),
	}
	if m.Body != nil {
		out.Body = make([]byte, len(m.Body))
		copy(out.Body, m.Body)
	}
	for k, v := range m.Headers {
		out.Headers[k] = v
	}
	return out
}

// Batch is an envelope returned by receivers; it may be empty
type Batch struct {
	Items []Inbound
}

// Len returns the number of messages in the batch
func (b Batch) Len() int {
	return len(b.Items)
}

// Tokens returns the completion tokens of every message, in receive order
func (b Batch) Tokens() []Token {
	if len(b.Items) == 0 {
		return nil
	}
	tokens := make([]Token, len(b.Items))
	for i := range b.Items {
		tokens[i] = b.Items[i].Token
	}
	return tokens
}
