package amqp

import (
	"errors"
	"sync"

	"github.com/streadway/amqp"
)

type fakeChannel struct {
	mu sync.Mutex

	deliveries chan amqp.Delivery
	prefetch   int
	consumeTag string
	consumeErr error

	acked  []uint64
	ackErr error

	txMode     bool
	published  []amqp.Publishing
	pending    []amqp.Publishing
	publishErr error
	commitErr  error
	rollbacks  int
	closed     bool
	notify     chan *amqp.Error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 64)}
}

func (c *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	c.prefetch = prefetchCount
	return nil
}

func (c *fakeChannel) Consume(_, consumer string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	c.consumeTag = consumer
	if c.consumeErr != nil {
		return nil, c.consumeErr
	}
	return c.deliveries, nil
}

func (c *fakeChannel) Ack(tag uint64, _ bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ackErr != nil {
		return c.ackErr
	}
	c.acked = append(c.acked, tag)
	return nil
}

func (c *fakeChannel) Tx() error {
	c.txMode = true
	return nil
}

func (c *fakeChannel) TxCommit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commitErr != nil {
		return c.commitErr
	}
	c.published = append(c.published, c.pending...)
	c.pending = nil
	return nil
}

func (c *fakeChannel) TxRollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.rollbacks++
	return nil
}

func (c *fakeChannel) Publish(_, _ string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil && len(c.pending) > 0 {
		return c.publishErr
	}
	if !c.txMode {
		return errors.New("channel not in tx mode")
	}
	c.pending = append(c.pending, msg)
	return nil
}

func (c *fakeChannel) NotifyClose(ch chan *amqp.Error) chan *amqp.Error {
	c.notify = ch
	return ch
}

// drop simulates the broker closing the channel
func (c *fakeChannel) drop() {
	close(c.deliveries)
	if c.notify != nil {
		c.notify <- amqp.ErrClosed
		close(c.notify)
	}
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

// fakeDialer hands out the given channels one per dial
type fakeDialer struct {
	channels []*fakeChannel
	dials    int
	err      error
}

func (d *fakeDialer) dial() (*session, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.dials >= len(d.channels) {
		return nil, errors.New("no more fake channels")
	}
	ch := d.channels[d.dials]
	d.dials++
	return newSession(nil, ch), nil
}
