// Package app wires configuration into receivers, a relay strategy and the forwarder.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/ibs-source/queue-forwarder/internal/amqp"
	"github.com/ibs-source/queue-forwarder/internal/config"
	"github.com/ibs-source/queue-forwarder/internal/forward"
	"github.com/ibs-source/queue-forwarder/internal/forwarder"
	"github.com/ibs-source/queue-forwarder/internal/kafka"
	"github.com/ibs-source/queue-forwarder/internal/log"
	"github.com/ibs-source/queue-forwarder/internal/mqtt"
	"github.com/ibs-source/queue-forwarder/internal/redis"
	"github.com/ibs-source/queue-forwarder/internal/sqs"
)

// genericPayload is the semantic payload type for messages whose type is not registered
var genericPayload = reflect.TypeOf(map[string]any{})

// App owns the forwarder and the destination client shared by its workers
type App struct {
	forwarder   *forwarder.Forwarder
	destination io.Closer
	log         *log.Logger
}

// New builds the destination client, the strategy and the forwarder.
// types maps values of the type header to payload types for semantic mode;
// unknown types are relayed as generic JSON objects.
func New(ctx context.Context, cfg *config.Config, types map[string]reflect.Type, logger *log.Logger) (*App, error) {
	factory, err := receiverFactory(cfg, logger)
	if err != nil {
		return nil, err
	}

	strategy, destination, err := buildStrategy(ctx, cfg, types, logger)
	if err != nil {
		return nil, err
	}

	fwd, err := forwarder.New(forwarderOptions(cfg), factory, strategy, logger)
	if err != nil {
		_ = destination.Close()
		return nil, err
	}

	return &App{forwarder: fwd, destination: destination, log: logger}, nil
}

// Run runs the workers until ctx is cancelled and they have all exited
func (a *App) Run(ctx context.Context) error {
	return a.forwarder.Run(ctx)
}

// Close releases the destination client; call it after Run returned
func (a *App) Close() error {
	if a.destination == nil {
		return nil
	}
	return a.destination.Close()
}

func forwarderOptions(cfg *config.Config) forwarder.Options {
	return forwarder.Options{
		Concurrency:      cfg.Forwarder.Concurrency,
		BatchSize:        cfg.Source.BatchSize,
		ErrorBackoff:     cfg.Forwarder.ErrorBackoff,
		MaxErrorBackoff:  cfg.Forwarder.MaxErrorBackoff,
		BackoffAfter:     cfg.Forwarder.BackoffAfter,
		OperationTimeout: cfg.Forwarder.OperationTimeout,
	}
}

// receiverFactory returns a factory opening one broker session per worker
func receiverFactory(cfg *config.Config, logger *log.Logger) (forwarder.ReceiverFactory, error) {
	src := &cfg.Source
	switch src.Kind {
	case config.KindRedis:
		return func(ctx context.Context, worker int) (forwarder.Receiver, error) {
			r, err := redis.NewReceiver(ctx, &cfg.Redis, src, worker, logger)
			if err != nil {
				return nil, err
			}
			return r, nil
		}, nil
	case config.KindSQS:
		return func(ctx context.Context, _ int) (forwarder.Receiver, error) {
			client, err := sqs.NewClient(ctx, &cfg.SQS)
			if err != nil {
				return nil, err
			}
			return sqs.NewReceiver(client, src.Queue, src.PollTimeout, cfg.SQS.VisibilityTimeout), nil
		}, nil
	case config.KindAMQP:
		return func(_ context.Context, worker int) (forwarder.Receiver, error) {
			r, err := amqp.NewReceiver(&cfg.AMQP, src, worker)
			if err != nil {
				return nil, err
			}
			return r, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

type senderCloser interface {
	forward.Sender
	io.Closer
}

func buildStrategy(ctx context.Context, cfg *config.Config, types map[string]reflect.Type, logger *log.Logger) (forwarder.Strategy, io.Closer, error) {
	switch cfg.Destination.Mode {
	case config.ModeRaw:
		sender, err := buildSender(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		raw, err := forward.NewRaw(sender, nil)
		if err != nil {
			_ = sender.Close()
			return nil, nil, err
		}
		logger.Info("Raw relay to %s %s", cfg.Destination.Kind, cfg.Destination.Queue)
		return raw, sender, nil

	case config.ModeSemantic:
		if cfg.Destination.Kind != config.KindMQTT {
			return nil, nil, fmt.Errorf("unsupported semantic destination kind %q", cfg.Destination.Kind)
		}
		pool, err := mqtt.NewPool(&cfg.MQTT, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create MQTT pool: %w", err)
		}
		endpoint := mqtt.NewEndpoint(pool)
		semantic, err := semanticStrategy(cfg, endpoint, types)
		if err != nil {
			_ = endpoint.Close()
			return nil, nil, err
		}
		logger.Info("Semantic relay to %s over %d MQTT connections", cfg.Destination.Queue, pool.Size())
		return semantic, endpoint, nil

	default:
		return nil, nil, fmt.Errorf("unsupported destination mode %q", cfg.Destination.Mode)
	}
}

func semanticStrategy(cfg *config.Config, endpoint forward.Endpoint, types map[string]reflect.Type) (*forward.Semantic, error) {
	mapper := forward.NewHeaderTypeMapper(cfg.Destination.TypeHeader, types, genericPayload)
	return forward.NewSemantic(endpoint, mapper, forward.JSONSerializer{}, forward.SemanticOptions{
		Destination:    cfg.Destination.Queue,
		IgnoredHeaders: cfg.Destination.IgnoredHeaders,
		MaxInFlight:    cfg.Forwarder.MaxInFlight,
	})
}

func buildSender(ctx context.Context, cfg *config.Config) (senderCloser, error) {
	dest := &cfg.Destination
	switch dest.Kind {
	case config.KindRedis:
		rdb, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis.NewSender(rdb, dest.Queue, cfg.Redis.MaxLen), nil
	case config.KindSQS:
		client, err := sqs.NewClient(ctx, &cfg.SQS)
		if err != nil {
			return nil, err
		}
		return nopCloser{sqs.NewSender(client, dest.Queue)}, nil
	case config.KindAMQP:
		sender, err := amqp.NewSender(&cfg.AMQP, dest.Queue)
		if err != nil {
			return nil, err
		}
		return sender, nil
	case config.KindKafka:
		return kafka.NewSender(&cfg.Kafka, dest.Queue), nil
	case config.KindMQTT:
		return nil, errors.New("mqtt is only supported as a semantic destination")
	default:
		return nil, fmt.Errorf("unsupported destination kind %q", dest.Kind)
	}
}

// nopCloser adapts senders holding no connection
type nopCloser struct {
	forward.Sender
}

func (nopCloser) Close() error { return nil }
