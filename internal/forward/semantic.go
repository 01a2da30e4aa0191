package forward

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// SemanticOptions configures a Semantic relay
type SemanticOptions struct {
	Destination    string
	IgnoredHeaders []string // dropped in addition to the transport encoding headers
	MaxInFlight    int      // concurrent dispatches per batch, 0 means unlimited
}

// Semantic relays each message as a typed payload to an application endpoint.
// Dispatches in a batch run concurrently and are all awaited; a failing
// dispatch never cancels the others.
type Semantic struct {
	endpoint    Endpoint
	mapper      TypeMapper
	serializer  Serializer
	destination string
	ignored     map[string]struct{}
	maxInFlight int
}

// NewSemantic creates a semantic relay
func NewSemantic(endpoint Endpoint, mapper TypeMapper, serializer Serializer, opts SemanticOptions) (*Semantic, error) {
	switch {
	case endpoint == nil:
		return nil, errors.New("semantic relay requires an endpoint")
	case mapper == nil:
		return nil, errors.New("semantic relay requires a type mapper")
	case serializer == nil:
		return nil, errors.New("semantic relay requires a serializer")
	case opts.Destination == "":
		return nil, errors.New("semantic relay requires a destination")
	case opts.MaxInFlight < 0:
		return nil, errors.New("semantic relay max in-flight cannot be negative")
	}

	ignored := map[string]struct{}{
		TransportEncodingHeader:           {},
		NamespacedTransportEncodingHeader: {},
	}
	for _, h := range opts.IgnoredHeaders {
		ignored[h] = struct{}{}
	}

	return &Semantic{
		endpoint:    endpoint,
		mapper:      mapper,
		serializer:  serializer,
		destination: opts.Destination,
		ignored:     ignored,
		maxInFlight: opts.MaxInFlight,
	}, nil
}

// Forward dispatches every message and returns the tokens of those that were
// confirmed, together with the joined errors of those that were not.
func (s *Semantic) Forward(ctx context.Context, batch message.Batch) ([]message.Token, error) {
	if batch.Len() == 0 {
		return nil, nil
	}

	var (
		mu     sync.Mutex
		tokens = make([]message.Token, 0, batch.Len())
		errs   []error
	)

	// The group context is not used so one failure does not cancel its siblings
	var g errgroup.Group
	if s.maxInFlight > 0 {
		g.SetLimit(s.maxInFlight)
	}

	for i := range batch.Items {
		msg := batch.Items[i]
		g.Go(func() error {
			err := s.dispatchSafe(ctx, msg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("message %s: %w", msg.MessageID, err))
				return nil
			}
			tokens = append(tokens, msg.Token)
			return nil
		})
	}
	_ = g.Wait()

	return tokens, errors.Join(errs...)
}

// dispatchSafe turns a panic inside one dispatch into that message's error
func (s *Semantic) dispatchSafe(ctx context.Context, msg message.Inbound) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch panic: %v", r)
		}
	}()
	return s.dispatch(ctx, msg)
}

func (s *Semantic) dispatch(ctx context.Context, msg message.Inbound) error {
	t, err := s.mapper.TypeOf(msg)
	if err != nil {
		return fmt.Errorf("failed to map type: %w", err)
	}

	payload, err := s.serializer.Deserialize(msg.Body, t)
	if err != nil {
		return fmt.Errorf("failed to deserialize as %s: %w", t, err)
	}

	opts := SendOptions{
		Destination: s.destination,
		MessageID:   msg.MessageID,
		Headers:     make(map[string]string, len(msg.Headers)),
	}
	for k, v := range msg.Headers {
		if _, skip := s.ignored[k]; skip {
			continue
		}
		opts.Headers[k] = v
	}

	if err := s.endpoint.Send(ctx, payload, opts); err != nil {
		return fmt.Errorf("failed to send: %w", err)
	}
	return nil
}
