package forward

import "github.com/ibs-source/queue-forwarder/internal/message"

// OutboundTransform mutates an outbound copy right before it is sent
type OutboundTransform interface {
	Transform(out *message.Outbound)
}

// TransformFunc adapts a plain function to OutboundTransform
type TransformFunc func(out *message.Outbound)

// Transform calls f(out)
func (f TransformFunc) Transform(out *message.Outbound) {
	f(out)
}

// Identity leaves outbound messages untouched
var Identity OutboundTransform = TransformFunc(func(*message.Outbound) {})

// SetHeaders returns a transform that sets the given headers on every outbound message
func SetHeaders(headers map[string]string) OutboundTransform {
	return TransformFunc(func(out *message.Outbound) {
		for k, v := range headers {
			out.Headers[k] = v
		}
	})
}
