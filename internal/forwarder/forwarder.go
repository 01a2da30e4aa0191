package forwarder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ibs-source/queue-forwarder/internal/log"
)

// ErrInvalidOptions is returned by New when the forwarder cannot be built
var ErrInvalidOptions = errors.New("invalid forwarder options")

// Options configures a Forwarder
type Options struct {
	Concurrency      int
	BatchSize        int
	ErrorBackoff     time.Duration
	MaxErrorBackoff  time.Duration
	BackoffAfter     int
	OperationTimeout time.Duration // 0 disables the bound
}

func (o Options) validate() error {
	switch {
	case o.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidOptions, o.Concurrency)
	case o.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidOptions, o.BatchSize)
	case o.ErrorBackoff < 0, o.MaxErrorBackoff < 0:
		return fmt.Errorf("%w: error backoff cannot be negative", ErrInvalidOptions)
	case o.BackoffAfter < 0:
		return fmt.Errorf("%w: backoff-after cannot be negative", ErrInvalidOptions)
	case o.OperationTimeout < 0:
		return fmt.Errorf("%w: operation timeout cannot be negative", ErrInvalidOptions)
	}
	return nil
}

// Forwarder runs Concurrency independent workers sharing one strategy
type Forwarder struct {
	opts     Options
	factory  ReceiverFactory
	strategy Strategy
	log      *log.Logger

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// New validates the options and dependencies; nothing is started
func New(opts Options, factory ReceiverFactory, strategy Strategy, logger *log.Logger) (*Forwarder, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: receiver factory is required", ErrInvalidOptions)
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy is required", ErrInvalidOptions)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger is required", ErrInvalidOptions)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Forwarder{opts: opts, factory: factory, strategy: strategy, log: logger}, nil
}

// Start creates one receiver per worker and launches the workers.
// If any receiver cannot be created, the ones already created are closed.
func (f *Forwarder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return errors.New("forwarder already started")
	}

	receivers := make([]Receiver, 0, f.opts.Concurrency)
	for i := 0; i < f.opts.Concurrency; i++ {
		r, err := f.factory(ctx, i)
		if err == nil && r == nil {
			err = errors.New("receiver factory returned nil")
		}
		if err != nil {
			f.closeReceivers(receivers)
			return fmt.Errorf("failed to create receiver %d: %w", i, err)
		}
		receivers = append(receivers, r)
	}

	f.started = true
	f.log.Info("Starting %d forwarder workers (batch size %d)", len(receivers), f.opts.BatchSize)
	for i, r := range receivers {
		w := newWorker(i, r, f.strategy, f.opts, f.log)
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			w.run(ctx)
		}()
	}
	return nil
}

// Wait blocks until every worker has exited
func (f *Forwarder) Wait() {
	f.wg.Wait()
}

// Run starts the workers and blocks until ctx is canceled and all workers stopped
func (f *Forwarder) Run(ctx context.Context) error {
	if err := f.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	f.log.Info("Shutting down forwarder")
	f.Wait()
	return nil
}

func (f *Forwarder) closeReceivers(receivers []Receiver) {
	for i, r := range receivers {
		if err := r.Close(); err != nil {
			f.log.Error("Failed to close receiver %d: %v", i, err)
		}
	}
}
