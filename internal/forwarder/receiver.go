// Package forwarder runs the concurrent receive, forward and acknowledge loops.
package forwarder

import (
	"context"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Receiver pulls batches from a source entity and completes them.
// Implementations surface failures and never retry internally.
type Receiver interface {
	// Receive blocks until at least one message is available or the poll
	// timeout elapses, in which case it returns an empty batch and nil.
	Receive(ctx context.Context, max int) (message.Batch, error)
	// Complete acknowledges the given tokens in one batched operation.
	// An empty slice returns nil without touching the broker.
	Complete(ctx context.Context, tokens []message.Token) error
	// Close releases the broker session owned by this receiver
	Close() error
}

// ReceiverFactory creates the receiver of one worker; every call must
// return a receiver with its own broker session
type ReceiverFactory func(ctx context.Context, worker int) (Receiver, error)

// Strategy relays a batch and returns the tokens of the messages that were
// confirmed by the destination. A non-nil error may accompany a partial token set.
type Strategy interface {
	Forward(ctx context.Context, batch message.Batch) ([]message.Token, error)
}
