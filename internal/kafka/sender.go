// Package kafka provides the Kafka topic sender.
package kafka

import (
	"context"
	"errors"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Record headers carrying the message identity
const (
	HeaderMessageID   = "message-id"
	HeaderContentType = "content-type"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sender writes batches to one topic with acks from all in-sync replicas.
// Kafka has no cross-partition atomicity: on error some records may already
// be written and will be duplicated when the batch is received again.
type Sender struct {
	w     writer
	topic string
}

// NewSender creates a synchronous writer for topic
func NewSender(cfg *config.KafkaConfig, topic string) *Sender {
	return newSender(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: false,
	}, topic)
}

func newSender(w writer, topic string) *Sender {
	return &Sender{w: w, topic: topic}
}

// SendBatch writes msgs keyed by message ID so that one ID stays on one partition
func (s *Sender) SendBatch(ctx context.Context, msgs []message.Outbound) error {
	if len(msgs) == 0 {
		return nil
	}
	records := make([]kafka.Message, len(msgs))
	for i := range msgs {
		records[i] = encodeRecord(msgs[i])
	}

	if err := s.w.WriteMessages(ctx, records...); err != nil {
		var werrs kafka.WriteErrors
		if errors.As(err, &werrs) {
			return fmt.Errorf("kafka write to %s failed for %d of %d records: %w", s.topic, werrs.Count(), len(records), err)
		}
		return fmt.Errorf("kafka write to %s failed: %w", s.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (s *Sender) Close() error {
	return s.w.Close()
}

func encodeRecord(m message.Outbound) kafka.Message {
	headers := make([]kafka.Header, 0, len(m.Headers)+2)
	for k, v := range m.Headers {
		if k == HeaderMessageID || k == HeaderContentType {
			continue
		}
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	if m.MessageID != "" {
		headers = append(headers, kafka.Header{Key: HeaderMessageID, Value: []byte(m.MessageID)})
	}
	if m.ContentType != "" {
		headers = append(headers, kafka.Header{Key: HeaderContentType, Value: []byte(m.ContentType)})
	}

	rec := kafka.Message{Value: m.Body, Headers: headers}
	if m.MessageID != "" {
		rec.Key = []byte(m.MessageID)
	}
	return rec
}
