// Package forward implements the relay strategies applied to each received batch.
package forward

import (
	"context"
	"errors"
	"reflect"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Transport encoding headers are never copied to semantic sends: the endpoint
// serializes the payload itself and may not use the source's encoding.
// Producers write either the short or the namespaced form.
const (
	TransportEncodingHeader           = "Transport.Encoding"
	NamespacedTransportEncodingHeader = "NServiceBus.Transport.Encoding"
)

// ErrNoType is returned by a TypeMapper that cannot resolve a message type
var ErrNoType = errors.New("no message type for message")

// Sender delivers raw outbound messages to a destination queue as one unit.
// A nil return means every message in the slice was accepted by the broker.
type Sender interface {
	SendBatch(ctx context.Context, msgs []message.Outbound) error
}

// SendOptions carries the addressing and metadata of one semantic send
type SendOptions struct {
	Destination string
	MessageID   string
	Headers     map[string]string
}

// Endpoint dispatches a typed payload to a destination
type Endpoint interface {
	Send(ctx context.Context, payload any, opts SendOptions) error
}

// TypeMapper resolves the application type of an inbound message
type TypeMapper interface {
	TypeOf(msg message.Inbound) (reflect.Type, error)
}

// Serializer turns a message body into a value of the given type
type Serializer interface {
	Deserialize(body []byte, t reflect.Type) (any, error)
}
