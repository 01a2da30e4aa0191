package forwarder

import (
	"context"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Acknowledger completes confirmed tokens at the source
type Acknowledger struct {
	receiver Receiver
}

// NewAcknowledger creates an acknowledger bound to receiver
func NewAcknowledger(receiver Receiver) *Acknowledger {
	return &Acknowledger{receiver: receiver}
}

// Complete acknowledges tokens; an empty set is a no-op
func (a *Acknowledger) Complete(ctx context.Context, tokens []message.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	return a.receiver.Complete(ctx, tokens)
}
