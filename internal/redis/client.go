// Package redis provides the Redis stream receiver and sender.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
)

// Stream entry fields with a fixed meaning; every other field is a header
const (
	FieldBody        = "body"
	FieldContentType = "content_type"
	FieldMessageID   = "message_id"
)

// NewClient creates a Redis client and checks the connection
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// GroupName returns the consumer group used for a stream
func GroupName(stream string) string {
	return "group-" + stream
}

// ensureGroup creates the consumer group, joining it when it already exists
func ensureGroup(ctx context.Context, rdb *redis.Client, stream, group string, logger *log.Logger) error {
	err := rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil {
		logger.Info("Created consumer group '%s' for stream '%s'", group, stream)
		return nil
	}
	if strings.HasPrefix(err.Error(), "BUSYGROUP") {
		logger.Debug("Consumer group '%s' already exists for stream '%s', joining existing group", group, stream)
		return nil
	}
	return fmt.Errorf("failed to create consumer group for stream %s: %w", stream, err)
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
