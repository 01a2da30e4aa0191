package mqtt

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/log"
)

// Pool spreads publishes round-robin over several connections
type Pool struct {
	clients []*Client
	next    atomic.Uint64
	log     *log.Logger
}

// NewPool creates cfg.PoolSize connected clients
func NewPool(cfg *config.MQTTConfig, logger *log.Logger) (*Pool, error) {
	poolSize := cfg.PoolSize
	if poolSize < 1 {
		poolSize = 1
	}

	// Client IDs must be unique per broker, including across instances sharing one config
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	baseClientID := fmt.Sprintf("%s-%s-%d", cfg.ClientID, hostname, os.Getpid())

	clients := make([]*Client, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		clientCfg := *cfg
		clientCfg.ClientID = fmt.Sprintf("%s-%d", baseClientID, i)

		client, err := NewClient(&clientCfg, logger)
		if err != nil {
			closeAll(clients)
			return nil, fmt.Errorf("failed to create client %d: %w", i, err)
		}
		clients = append(clients, client)
	}

	return newPool(clients, logger), nil
}

func newPool(clients []*Client, logger *log.Logger) *Pool {
	return &Pool{clients: clients, log: logger}
}

// Size returns the number of connections
func (p *Pool) Size() int {
	return len(p.clients)
}

// Publish publishes on the next connection
func (p *Pool) Publish(ctx context.Context, topic string, payload []byte) error {
	idx := p.next.Add(1) % uint64(len(p.clients)) // #nosec G115
	return p.clients[idx].Publish(ctx, topic, payload)
}

// Close closes all connections in the pool
func (p *Pool) Close() error {
	return closeAll(p.clients)
}

func closeAll(clients []*Client) error {
	var lastErr error
	for i, client := range clients {
		if err := client.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close client %d: %w", i, err)
		}
	}
	return lastErr
}
