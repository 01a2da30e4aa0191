package sqs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// maxAttributes is the SQS limit of message attributes per message
const maxAttributes = 10

// Sender sends batches with SendMessageBatch
type Sender struct {
	client   API
	queueURL string
	fifo     bool
}

// NewSender creates a sender for queueURL; ".fifo" queues get group and deduplication IDs
func NewSender(client API, queueURL string) *Sender {
	return &Sender{client: client, queueURL: queueURL, fifo: isFIFO(queueURL)}
}

// SendBatch sends msgs in chunks of 10. An error means at least one message
// may not have been accepted; the whole batch is then considered unsent.
func (s *Sender) SendBatch(ctx context.Context, msgs []message.Outbound) error {
	return chunks(len(msgs), func(start, end int) error {
		entries := make([]sqstypes.SendMessageBatchRequestEntry, 0, end-start)
		for i := start; i < end; i++ {
			entry, err := s.entry(strconv.Itoa(i-start), msgs[i])
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		out, err := s.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(s.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("sqs send to %s failed: %w", s.queueURL, err)
		}
		if len(out.Failed) > 0 {
			f := out.Failed[0]
			return fmt.Errorf("sqs send failed for %d messages, first id=%s code=%s message=%s",
				len(out.Failed), aws.ToString(f.Id), aws.ToString(f.Code), aws.ToString(f.Message))
		}
		return nil
	})
}

func (s *Sender) entry(id string, m message.Outbound) (sqstypes.SendMessageBatchRequestEntry, error) {
	attrs, err := encodeAttributes(m)
	if err != nil {
		return sqstypes.SendMessageBatchRequestEntry{}, err
	}
	entry := sqstypes.SendMessageBatchRequestEntry{
		Id:                aws.String(id),
		MessageBody:       aws.String(string(m.Body)),
		MessageAttributes: attrs,
	}
	if s.fifo {
		group := m.Headers[HeaderMessageGroup]
		if group == "" {
			group = "default"
		}
		dedup := m.MessageID
		if dedup == "" {
			dedup = uuid.NewString()
		}
		entry.MessageGroupId = aws.String(group)
		entry.MessageDeduplicationId = aws.String(dedup)
	}
	return entry, nil
}

func encodeAttributes(m message.Outbound) (map[string]sqstypes.MessageAttributeValue, error) {
	attrs := make(map[string]sqstypes.MessageAttributeValue, len(m.Headers)+2)
	for k, v := range m.Headers {
		// SQS rejects empty string attributes
		if v == "" || k == AttributeMessageID || k == AttributeContentType || k == HeaderMessageGroup {
			continue
		}
		attrs[k] = stringAttribute(v)
	}
	if m.MessageID != "" {
		attrs[AttributeMessageID] = stringAttribute(m.MessageID)
	}
	if m.ContentType != "" {
		attrs[AttributeContentType] = stringAttribute(m.ContentType)
	}
	if len(attrs) > maxAttributes {
		return nil, fmt.Errorf("message %s has %d attributes, sqs accepts at most %d", m.MessageID, len(attrs), maxAttributes)
	}
	return attrs, nil
}

func stringAttribute(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
}
