package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Receiver reads a stream through a consumer group. Entries stay pending
// until Complete acknowledges and deletes them; entries left pending by a
// crashed consumer are reclaimed once idle for ClaimIdle.
type Receiver struct {
	rdb             *redis.Client
	stream          string
	group           string
	consumer        string
	pollTimeout     time.Duration
	claimIdle       time.Duration
	consumerIdle    time.Duration
	cleanupInterval time.Duration
	lastClaim       time.Time
	lastCleanup     time.Time
	now             func() time.Time
	log             *log.Logger
}

// NewReceiver connects to Redis and joins the stream's consumer group as
// "<consumer>-<worker>"
func NewReceiver(ctx context.Context, cfg *config.RedisConfig, src *config.SourceConfig, worker int, logger *log.Logger) (*Receiver, error) {
	rdb, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := newReceiver(rdb, cfg, src, worker, logger)
	if err := ensureGroup(ctx, rdb, r.stream, r.group, logger); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return r, nil
}

func newReceiver(rdb *redis.Client, cfg *config.RedisConfig, src *config.SourceConfig, worker int, logger *log.Logger) *Receiver {
	return &Receiver{
		rdb:             rdb,
		stream:          src.Queue,
		group:           GroupName(src.Queue),
		consumer:        fmt.Sprintf("%s-%d", cfg.Consumer, worker),
		pollTimeout:     src.PollTimeout,
		claimIdle:       cfg.ClaimIdle,
		consumerIdle:    cfg.ConsumerIdleTimeout,
		cleanupInterval: cfg.CleanupInterval,
		now:             time.Now,
		log:             logger,
	}
}

// Receive returns reclaimed idle entries when there are any, otherwise new
// entries read with XREADGROUP blocking up to the poll timeout
func (r *Receiver) Receive(ctx context.Context, max int) (message.Batch, error) {
	r.maybeCleanup(ctx)

	if r.claimDue() {
		claimed, err := r.claimIdleEntries(ctx, max)
		if err != nil {
			return message.Batch{}, err
		}
		if len(claimed) > 0 {
			r.log.Debug("Reclaimed %d idle entries on stream %s", len(claimed), r.stream)
			return message.Batch{Items: decodeEntries(claimed)}, nil
		}
	}

	result, err := r.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"},
		Count:    int64(max),
		Block:    r.pollTimeout,
	}).Result()
	if err != nil {
		if isNil(err) {
			return message.Batch{}, nil
		}
		return message.Batch{}, fmt.Errorf("xreadgroup failed: %w", err)
	}

	var entries []redis.XMessage
	for _, s := range result {
		entries = append(entries, s.Messages...)
	}
	if len(entries) == 0 {
		return message.Batch{}, nil
	}
	return message.Batch{Items: decodeEntries(entries)}, nil
}

func (r *Receiver) claimDue() bool {
	if r.claimIdle <= 0 {
		return false
	}
	now := r.now()
	if now.Sub(r.lastClaim) < r.claimIdle {
		return false
	}
	r.lastClaim = now
	return true
}

func (r *Receiver) claimIdleEntries(ctx context.Context, max int) ([]redis.XMessage, error) {
	claimed, _, err := r.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   r.stream,
		Group:    r.group,
		Consumer: r.consumer,
		MinIdle:  r.claimIdle,
		Start:    "0-0",
		Count:    int64(max),
	}).Result()
	if err != nil {
		if isNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("xautoclaim failed: %w", err)
	}
	return claimed, nil
}

// Complete acknowledges and deletes the entries in one pipeline
func (r *Receiver) Complete(ctx context.Context, tokens []message.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = t.ID
	}

	cmds, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.XAck(ctx, r.stream, r.group, ids...)
		p.XDel(ctx, r.stream, ids...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete %d entries on stream %s: %w", len(ids), r.stream, err)
	}
	for _, cmd := range cmds {
		if cmd.Err() != nil {
			return fmt.Errorf("%s failed on stream %s: %w", cmd.Name(), r.stream, cmd.Err())
		}
	}
	return nil
}

// Close closes the receiver's connection
func (r *Receiver) Close() error {
	return r.rdb.Close()
}
