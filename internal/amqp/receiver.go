package amqp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/streadway/amqp"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

var (
	// ErrDeliveriesClosed is returned once the broker closed the consumer's channel.
	// The next Receive opens a new session.
	ErrDeliveriesClosed = errors.New("amqp delivery channel closed")
	// ErrStaleDelivery is returned when completing deliveries of a closed session;
	// the broker already requeued them.
	ErrStaleDelivery = errors.New("amqp delivery belongs to a closed session")
)

// Receiver consumes a queue with manual acknowledgements and reconnects
// lazily after its session was lost
type Receiver struct {
	dial        dialer
	queue       string
	tag         string
	prefetch    int
	pollTimeout time.Duration

	sess       *session
	deliveries <-chan amqp.Delivery
	generation uint64
}

// NewReceiver opens its own connection and starts consuming as "<tag>-<worker>"
func NewReceiver(cfg *config.AMQPConfig, src *config.SourceConfig, worker int) (*Receiver, error) {
	dialURL := func() (*session, error) { return dial(cfg.URL) }
	r := newReceiver(dialURL, src.Queue, fmt.Sprintf("%s-%d", cfg.ConsumerTag, worker), src.Prefetch, src.PollTimeout)
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func newReceiver(d dialer, queue, tag string, prefetch int, pollTimeout time.Duration) *Receiver {
	return &Receiver{dial: d, queue: queue, tag: tag, prefetch: prefetch, pollTimeout: pollTimeout}
}

func (r *Receiver) connect() error {
	sess, err := r.dial()
	if err != nil {
		return err
	}
	if r.prefetch > 0 {
		if err := sess.ch.Qos(r.prefetch, 0, false); err != nil {
			_ = sess.Close()
			return fmt.Errorf("failed to set prefetch: %w", err)
		}
	}
	deliveries, err := sess.ch.Consume(r.queue, r.tag, false, false, false, false, nil)
	if err != nil {
		_ = sess.Close()
		return fmt.Errorf("failed to consume from %s: %w", r.queue, err)
	}
	r.sess = sess
	r.deliveries = deliveries
	r.generation++
	return nil
}

// reset drops the current session; unacknowledged deliveries return to the queue
func (r *Receiver) reset() error {
	if r.sess == nil {
		return nil
	}
	err := r.sess.Close()
	r.sess = nil
	r.deliveries = nil
	return err
}

// Receive waits up to the poll timeout for a first delivery, then drains
// whatever is already buffered up to max
func (r *Receiver) Receive(ctx context.Context, max int) (message.Batch, error) {
	if r.sess == nil || r.sess.isClosed() {
		_ = r.reset()
		if err := r.connect(); err != nil {
			return message.Batch{}, fmt.Errorf("amqp reconnect failed: %w", err)
		}
	}

	timer := time.NewTimer(r.pollTimeout)
	defer timer.Stop()

	var first amqp.Delivery
	select {
	case d, ok := <-r.deliveries:
		if !ok {
			_ = r.reset()
			return message.Batch{}, ErrDeliveriesClosed
		}
		first = d
	case <-timer.C:
		return message.Batch{}, nil
	case <-ctx.Done():
		return message.Batch{}, nil
	}

	items := make([]message.Inbound, 0, max)
	items = append(items, r.decodeDelivery(&first))
	for len(items) < max {
		select {
		case d, ok := <-r.deliveries:
			if !ok {
				// Deliveries already taken will be redelivered by the broker
				return message.Batch{Items: items}, nil
			}
			items = append(items, r.decodeDelivery(&d))
		default:
			return message.Batch{Items: items}, nil
		}
	}
	return message.Batch{Items: items}, nil
}

// Complete acknowledges each delivery tag. Tokens of a partial batch are not
// contiguous, so a multiple ack cannot be used.
func (r *Receiver) Complete(_ context.Context, tokens []message.Token) error {
	for _, t := range tokens {
		gen, tag, err := parseHandle(t.Handle)
		if err != nil {
			return err
		}
		// Delivery tags are scoped to the channel that delivered them
		if r.sess == nil || gen != r.generation {
			return fmt.Errorf("%w: delivery %s", ErrStaleDelivery, t.Handle)
		}
		if err := r.sess.ch.Ack(tag, false); err != nil {
			_ = r.reset()
			return fmt.Errorf("ack of delivery %d failed: %w", tag, err)
		}
	}
	return nil
}

// Close closes the receiver's connection; unacknowledged deliveries return to the queue
func (r *Receiver) Close() error {
	return r.reset()
}

// decodeDelivery builds the message; the handle is "<session>.<delivery tag>"
func (r *Receiver) decodeDelivery(d *amqp.Delivery) message.Inbound {
	handle := strconv.FormatUint(r.generation, 10) + "." + strconv.FormatUint(d.DeliveryTag, 10)
	id := d.MessageId
	if id == "" {
		id = handle
	}
	msg := message.Inbound{
		Token:       message.Token{ID: id, Handle: handle},
		MessageID:   id,
		ContentType: d.ContentType,
		Body:        d.Body,
		Headers:     make(map[string]string, len(d.Headers)),
	}
	for k, v := range d.Headers {
		msg.Headers[k] = headerString(v)
	}
	return msg
}

func parseHandle(handle string) (gen, tag uint64, err error) {
	g, t, ok := strings.Cut(handle, ".")
	if ok {
		gen, err = strconv.ParseUint(g, 10, 64)
		if err == nil {
			tag, err = strconv.ParseUint(t, 10, 64)
		}
	}
	if !ok || err != nil {
		return 0, 0, fmt.Errorf("invalid delivery handle %q", handle)
	}
	return gen, tag, nil
}

func headerString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
