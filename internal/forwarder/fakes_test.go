package forwarder

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ibs-source/queue-forwarder/internal/log"
	"github.com/ibs-source/queue-forwarder/internal/message"
)

type receiveStep struct {
	batch message.Batch
	err   error
	panic bool
	// before runs inside Receive, e.g. to cancel the worker context
	before func()
}

// fakeReceiver replays scripted steps, then blocks until the context is done
type fakeReceiver struct {
	mu          sync.Mutex
	script      []receiveStep
	receives    int
	completed   [][]message.Token
	completeErr error
	closed      bool
}

func (r *fakeReceiver) Receive(ctx context.Context, _ int) (message.Batch, error) {
	r.mu.Lock()
	r.receives++
	if len(r.script) > 0 {
		step := r.script[0]
		r.script = r.script[1:]
		r.mu.Unlock()
		if step.before != nil {
			step.before()
		}
		if step.panic {
			panic("receiver exploded")
		}
		return step.batch, step.err
	}
	r.mu.Unlock()
	<-ctx.Done()
	return message.Batch{}, ctx.Err()
}

func (r *fakeReceiver) Complete(_ context.Context, tokens []message.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, tokens)
	return r.completeErr
}

func (r *fakeReceiver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReceiver) receiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receives
}

func (r *fakeReceiver) completions() [][]message.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]message.Token(nil), r.completed...)
}

func (r *fakeReceiver) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// strategyFunc adapts a function to Strategy
type strategyFunc func(ctx context.Context, batch message.Batch) ([]message.Token, error)

func (f strategyFunc) Forward(ctx context.Context, batch message.Batch) ([]message.Token, error) {
	return f(ctx, batch)
}

var forwardAll = strategyFunc(func(_ context.Context, batch message.Batch) ([]message.Token, error) {
	return batch.Tokens(), nil
})

func newTestLogger(t *testing.T) (*log.Logger, *test.Hook) {
	t.Helper()
	logger := log.NewWithOutput(io.Discard)
	logger.GetLogrus().SetLevel(logrus.DebugLevel)
	return logger, test.NewLocal(logger.GetLogrus())
}

func hasLogLine(hook *test.Hook, level logrus.Level, substr string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func makeBatch(ids ...string) message.Batch {
	items := make([]message.Inbound, len(ids))
	for i, id := range ids {
		items[i] = message.Inbound{
			Token:     message.Token{ID: id},
			MessageID: id,
			Body:      []byte(`{"id":"` + id + `"}`),
			Headers:   map[string]string{},
		}
	}
	return message.Batch{Items: items}
}

func testOptions() Options {
	return Options{
		Concurrency:      1,
		BatchSize:        10,
		ErrorBackoff:     time.Millisecond,
		MaxErrorBackoff:  5 * time.Millisecond,
		BackoffAfter:     1,
		OperationTimeout: time.Second,
	}
}
