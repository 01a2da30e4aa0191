package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Sender appends batches to a stream inside a MULTI/EXEC transaction
type Sender struct {
	rdb    *redis.Client
	stream string
	maxLen int64
}

// NewSender creates a sender for stream; maxLen > 0 caps the stream approximately
func NewSender(rdb *redis.Client, stream string, maxLen int64) *Sender {
	return &Sender{rdb: rdb, stream: stream, maxLen: maxLen}
}

// SendBatch adds every message or none of them
func (s *Sender) SendBatch(ctx context.Context, msgs []message.Outbound) error {
	if len(msgs) == 0 {
		return nil
	}
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for i := range msgs {
			args := &redis.XAddArgs{
				Stream: s.stream,
				Values: encodeEntry(msgs[i]),
			}
			if s.maxLen > 0 {
				args.MaxLen = s.maxLen
				args.Approx = true
			}
			p.XAdd(ctx, args)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("xadd of %d entries to stream %s failed: %w", len(msgs), s.stream, err)
	}
	return nil
}

// Close closes the sender's connection
func (s *Sender) Close() error {
	return s.rdb.Close()
}
