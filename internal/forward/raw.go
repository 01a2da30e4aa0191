package forward

import (
	"context"
	"errors"
	"fmt"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Raw relays each batch to a destination queue as a single all-or-nothing send
type Raw struct {
	sender    Sender
	transform OutboundTransform
}

// NewRaw creates a raw relay; a nil transform means Identity
func NewRaw(sender Sender, transform OutboundTransform) (*Raw, error) {
	if sender == nil {
		return nil, errors.New("raw relay requires a sender")
	}
	if transform == nil {
		transform = Identity
	}
	return &Raw{sender: sender, transform: transform}, nil
}

// Forward copies every message, applies the transform and sends them as one batch.
// On success the tokens of all inputs are returned; on failure none are.
func (r *Raw) Forward(ctx context.Context, batch message.Batch) ([]message.Token, error) {
	if batch.Len() == 0 {
		return nil, nil
	}

	outs := make([]message.Outbound, 0, batch.Len())
	for i := range batch.Items {
		out := batch.Items[i].Clone()
		r.transform.Transform(&out)
		outs = append(outs, out)
	}

	if err := r.sender.SendBatch(ctx, outs); err != nil {
		return nil, fmt.Errorf("failed to send batch of %d messages: %w", len(outs), err)
	}
	return batch.Tokens(), nil
}
