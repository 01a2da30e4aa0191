package redis

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

func decodeEntries(entries []redis.XMessage) []message.Inbound {
	items := make([]message.Inbound, len(entries))
	for i, e := range entries {
		items[i] = decodeEntry(e)
	}
	return items
}

// decodeEntry maps a stream entry to an inbound message; the entry ID is the
// completion token and the message ID when no message_id field is present
func decodeEntry(e redis.XMessage) message.Inbound {
	msg := message.Inbound{
		Token:     message.Token{ID: e.ID},
		MessageID: e.ID,
		Headers:   make(map[string]string, len(e.Values)),
	}
	for k, v := range e.Values {
		s := stringValue(v)
		switch k {
		case FieldBody:
			msg.Body = []byte(s)
		case FieldContentType:
			msg.ContentType = s
		case FieldMessageID:
			if s != "" {
				msg.MessageID = s
			}
		default:
			msg.Headers[k] = s
		}
	}
	return msg
}

// encodeEntry builds XADD values; headers never override the reserved fields
func encodeEntry(m message.Outbound) map[string]interface{} {
	values := make(map[string]interface{}, len(m.Headers)+3)
	for k, v := range m.Headers {
		values[k] = v
	}
	values[FieldBody] = m.Body
	if m.ContentType != "" {
		values[FieldContentType] = m.ContentType
	}
	if m.MessageID != "" {
		values[FieldMessageID] = m.MessageID
	}
	return values
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
