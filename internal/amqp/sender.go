package amqp

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Sender publishes batches inside one AMQP transaction. A failed batch drops
// the session and the next batch opens a new one.
type Sender struct {
	mu       sync.Mutex
	dial     dialer
	sess     *session
	exchange string
	key      string
}

// NewSender opens a transactional channel publishing to key on cfg.Exchange
// (the default exchange when empty, so key is the queue name)
func NewSender(cfg *config.AMQPConfig, key string) (*Sender, error) {
	s := newSender(func() (*session, error) { return dial(cfg.URL) }, cfg.Exchange, key)
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func newSender(d dialer, exchange, key string) *Sender {
	return &Sender{dial: d, exchange: exchange, key: key}
}

func (s *Sender) connect() error {
	sess, err := s.dial()
	if err != nil {
		return err
	}
	if err := sess.ch.Tx(); err != nil {
		_ = sess.Close()
		return fmt.Errorf("failed to enable transactions: %w", err)
	}
	s.sess = sess
	return nil
}

func (s *Sender) reset() error {
	if s.sess == nil {
		return nil
	}
	err := s.sess.Close()
	s.sess = nil
	return err
}

// SendBatch publishes every message and commits; on any failure the
// transaction is rolled back and nothing is delivered
func (s *Sender) SendBatch(_ context.Context, msgs []message.Outbound) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil || s.sess.isClosed() {
		_ = s.reset()
		if err := s.connect(); err != nil {
			return fmt.Errorf("amqp reconnect failed: %w", err)
		}
	}

	for i := range msgs {
		if err := s.sess.ch.Publish(s.exchange, s.key, false, false, encodePublishing(msgs[i])); err != nil {
			s.abort()
			return fmt.Errorf("amqp publish to %s failed: %w", s.key, err)
		}
	}
	if err := s.sess.ch.TxCommit(); err != nil {
		s.abort()
		return fmt.Errorf("amqp commit of %d messages failed: %w", len(msgs), err)
	}
	return nil
}

// abort rolls back and drops the session; a channel that failed a publish or
// commit is usually closed by the broker
func (s *Sender) abort() {
	_ = s.sess.ch.TxRollback()
	_ = s.reset()
}

// Close closes the sender's connection
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

func encodePublishing(m message.Outbound) amqp.Publishing {
	headers := make(amqp.Table, len(m.Headers))
	for k, v := range m.Headers {
		headers[k] = v
	}
	return amqp.Publishing{
		Headers:      headers,
		ContentType:  m.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    m.MessageID,
		Body:         m.Body,
	}
}
