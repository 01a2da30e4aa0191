package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibs-source/queue-forwarder/internal/forward"
	"github.com/ibs-source/queue-forwarder/pkg/jsonfast"
)

// Endpoint dispatches typed payloads as JSON envelopes:
//
//	{"id":"...","destination":"...","sent_at":"...","headers":{...},"payload":{...}}
//
// The destination doubles as the MQTT topic.
type Endpoint struct {
	pub      Publisher
	builders sync.Pool
	now      func() time.Time
	newID    func() string
}

// NewEndpoint creates an endpoint publishing through pub
func NewEndpoint(pub Publisher) *Endpoint {
	return &Endpoint{
		pub: pub,
		builders: sync.Pool{New: func() any {
			return jsonfast.New(1024)
		}},
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Send implements forward.Endpoint
func (e *Endpoint) Send(ctx context.Context, payload any, opts forward.SendOptions) error {
	if opts.Destination == "" {
		return fmt.Errorf("mqtt endpoint: empty destination")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	id := opts.MessageID
	if id == "" {
		id = e.newID()
	}

	b := e.builders.Get().(*jsonfast.Builder)
	defer e.builders.Put(b)
	b.Reset()
	b.AddStringField("id", id)
	b.AddStringField("destination", opts.Destination)
	b.AddTimeField("sent_at", e.now())
	b.AddStringMapField("headers", opts.Headers)
	b.AddRawJSONField("payload", body)
	b.EndObject()

	// The builder buffer is reused, publish must not keep it
	envelope := make([]byte, len(b.Bytes()))
	copy(envelope, b.Bytes())

	return e.pub.Publish(ctx, opts.Destination, envelope)
}

// Close closes the underlying publisher
func (e *Endpoint) Close() error {
	return e.pub.Close()
}

var _ forward.Endpoint = (*Endpoint)(nil)
