// Package amqp provides the RabbitMQ receiver and sender.
package amqp

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Channel is the subset of *amqp.Channel used by the receiver and the sender
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Ack(tag uint64, multiple bool) error
	Tx() error
	TxCommit() error
	TxRollback() error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// dialer opens a fresh session; receivers and senders call it again after the
// previous session was closed by the broker or the network
type dialer func() (*session, error)

// session owns one connection and its channel
type session struct {
	conn   *amqp.Connection
	ch     Channel
	closed chan *amqp.Error
}

func dial(url string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return newSession(conn, ch), nil
}

// newSession watches ch; a channel is also closed when its connection drops
func newSession(conn *amqp.Connection, ch Channel) *session {
	return &session{conn: conn, ch: ch, closed: ch.NotifyClose(make(chan *amqp.Error, 1))}
}

// isClosed reports whether the broker or the network closed the channel
func (s *session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Close closes the channel and then the connection
func (s *session) Close() error {
	if s.ch != nil {
		if err := s.ch.Close(); err != nil && err != amqp.ErrClosed {
			return err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && err != amqp.ErrClosed {
			return err
		}
	}
	return nil
}
