package forward

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// JSONSerializer decodes JSON bodies into a freshly allocated value of the target type
type JSONSerializer struct{}

// Deserialize returns a pointer to a new value of type t filled from body
func (JSONSerializer) Deserialize(body []byte, t reflect.Type) (any, error) {
	if t == nil {
		return nil, ErrNoType
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(body, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

// HeaderTypeMapper resolves the type from a header value looked up in a registry
type HeaderTypeMapper struct {
	header   string
	registry map[string]reflect.Type
	fallback reflect.Type
}

// NewHeaderTypeMapper creates a mapper; fallback may be nil, in which case
// unknown or missing type names fail with ErrNoType
func NewHeaderTypeMapper(header string, registry map[string]reflect.Type, fallback reflect.Type) *HeaderTypeMapper {
	r := make(map[string]reflect.Type, len(registry))
	for k, v := range registry {
		r[k] = v
	}
	return &HeaderTypeMapper{header: header, registry: r, fallback: fallback}
}

// TypeOf implements TypeMapper
func (m *HeaderTypeMapper) TypeOf(msg message.Inbound) (reflect.Type, error) {
	name := msg.Headers[m.header]
	if t, ok := m.registry[name]; ok && name != "" {
		return t, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	if name == "" {
		return nil, fmt.Errorf("%w: header %q missing", ErrNoType, m.header)
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrNoType, name)
}
