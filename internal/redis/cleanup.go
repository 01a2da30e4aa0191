package redis

import (
	"context"
	"fmt"
	"time"
)

func (r *Receiver) maybeCleanup(ctx context.Context) {
	if r.cleanupInterval <= 0 || r.consumerIdle <= 0 {
		return
	}
	now := r.now()
	if now.Sub(r.lastCleanup) < r.cleanupInterval {
		return
	}
	r.lastCleanup = now

	removed, err := r.CleanupDeadConsumers(ctx)
	if err != nil {
		r.log.Warn("failed to cleanup dead consumers for stream %s: %v", r.stream, err)
		return
	}
	if removed > 0 {
		r.log.Info("Cleaned up %d dead consumers on stream %s", removed, r.stream)
	}
}

// CleanupDeadConsumers removes consumers idle for longer than the consumer idle
// timeout. Consumers still owning pending entries are kept so those entries
// can be reclaimed instead of being dropped with them.
func (r *Receiver) CleanupDeadConsumers(ctx context.Context) (int, error) {
	consumers, err := r.rdb.XInfoConsumers(ctx, r.stream, r.group).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get consumers info: %w", err)
	}

	removed := 0
	for _, consumer := range consumers {
		if !deadConsumer(consumer.Name, r.consumer, consumer.Idle, consumer.Pending, r.consumerIdle) {
			continue
		}

		r.log.Info("Removing dead consumer %s from stream %s (idle for %s)", consumer.Name, r.stream, consumer.Idle)
		if err := r.rdb.XGroupDelConsumer(ctx, r.stream, r.group, consumer.Name).Err(); err != nil {
			r.log.Error("Failed to delete consumer %s from stream %s: %v", consumer.Name, r.stream, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func deadConsumer(name, self string, idle time.Duration, pending int64, idleTimeout time.Duration) bool {
	return name != self && pending == 0 && idle > idleTimeout
}
