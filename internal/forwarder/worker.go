package forwarder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ibs-source/queue-forwarder/internal/log"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

// worker owns one receiver and runs receive → forward → acknowledge until shutdown
type worker struct {
	id               int
	receiver         Receiver
	ack              *Acknowledger
	strategy         Strategy
	batchSize        int
	operationTimeout time.Duration
	backoff          *Backoff
	log              *log.Logger
	fields           logrus.Fields
}

func newWorker(id int, receiver Receiver, strategy Strategy, opts Options, logger *log.Logger) *worker {
	return &worker{
		id:               id,
		receiver:         receiver,
		ack:              NewAcknowledger(receiver),
		strategy:         strategy,
		batchSize:        opts.BatchSize,
		operationTimeout: opts.OperationTimeout,
		backoff:          NewBackoff(opts.ErrorBackoff, opts.MaxErrorBackoff, opts.BackoffAfter),
		log:              logger,
		fields:           logrus.Fields{"worker": id},
	}
}

// run loops until ctx is canceled, then closes the receiver
func (w *worker) run(ctx context.Context) {
	defer func() {
		if err := w.receiver.Close(); err != nil {
			w.log.ErrorWithFields(w.fields, "Failed to close receiver: %v", err)
		}
		w.log.DebugWithFields(w.fields, "Worker stopped")
	}()

	for ctx.Err() == nil {
		stop, err := w.iterate(ctx)
		if stop {
			return
		}
		if err == nil {
			w.backoff.Success()
			continue
		}

		w.log.ErrorWithErr(w.fields, err)
		if d := w.backoff.Failure(); d > 0 {
			w.log.WarnWithFields(w.fields, "Backing off %s after %d consecutive failures", d, w.backoff.Failures())
			if sleep(ctx, d) != nil {
				return
			}
		}
	}
}

// iterate runs one receive → forward → acknowledge cycle.
// stop is true when shutdown interrupted the receive wait.
func (w *worker) iterate(ctx context.Context) (stop bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker iteration panic: %v", r)
		}
	}()

	start := time.Now()
	batch, err := w.receiver.Receive(ctx, w.batchSize)
	if ctx.Err() != nil && batch.Len() == 0 {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to receive messages: %w", err)
	}
	w.log.InfoWithFields(w.fields, "Received %d messages from the source. Took %s", batch.Len(), time.Since(start))

	// A received batch is always driven to completion, even during shutdown
	opCtx, cancel := w.operationContext(ctx)
	defer cancel()

	return false, w.relay(opCtx, batch)
}

func (w *worker) relay(ctx context.Context, batch message.Batch) error {
	start := time.Now()
	tokens, fwdErr := w.strategy.Forward(ctx, batch)
	if fwdErr != nil && len(tokens) == 0 {
		return fmt.Errorf("failed to forward messages: %w", fwdErr)
	}
	w.log.InfoWithFields(w.fields, "Forwarded %d messages to the destination. Took %s", len(tokens), time.Since(start))

	start = time.Now()
	if err := w.ack.Complete(ctx, tokens); err != nil {
		return fmt.Errorf("failed to complete messages: %w", err)
	}
	w.log.InfoWithFields(w.fields, "Completed %d messages at the source. Took %s", len(tokens), time.Since(start))

	if fwdErr != nil {
		return fmt.Errorf("forwarded %d of %d messages: %w", len(tokens), batch.Len(), fwdErr)
	}
	return nil
}

func (w *worker) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if w.operationTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, w.operationTimeout)
}
