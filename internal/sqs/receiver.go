package sqs

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

// Receiver long-polls a queue and deletes completed messages
type Receiver struct {
	client            API
	queueURL          string
	waitSeconds       int32
	visibilityTimeout int32
}

// NewReceiver creates a receiver for queueURL; pollTimeout is rounded down to
// whole seconds and capped at 20
func NewReceiver(client API, queueURL string, pollTimeout time.Duration, visibilityTimeout int32) *Receiver {
	wait := int32(pollTimeout / time.Second) // #nosec G115 - capped below
	if wait > 20 {
		wait = 20
	}
	if wait < 0 {
		wait = 0
	}
	return &Receiver{
		client:            client,
		queueURL:          queueURL,
		waitSeconds:       wait,
		visibilityTimeout: visibilityTimeout,
	}
}

// Receive returns up to min(max, 10) messages
func (r *Receiver) Receive(ctx context.Context, max int) (message.Batch, error) {
	if max > maxBatch {
		max = maxBatch
	}
	out, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(r.queueURL),
		MaxNumberOfMessages:   int32(max), // #nosec G115 - at most 10
		WaitTimeSeconds:       r.waitSeconds,
		VisibilityTimeout:     r.visibilityTimeout,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return message.Batch{}, fmt.Errorf("sqs receive from %s failed: %w", r.queueURL, err)
	}
	if len(out.Messages) == 0 {
		return message.Batch{}, nil
	}

	items := make([]message.Inbound, len(out.Messages))
	for i := range out.Messages {
		items[i] = decodeMessage(&out.Messages[i])
	}
	return message.Batch{Items: items}, nil
}

// Complete deletes the messages in chunks of 10; any failed entry fails the call
func (r *Receiver) Complete(ctx context.Context, tokens []message.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	return chunks(len(tokens), func(start, end int) error {
		entries := make([]sqstypes.DeleteMessageBatchRequestEntry, 0, end-start)
		for i := start; i < end; i++ {
			entries = append(entries, sqstypes.DeleteMessageBatchRequestEntry{
				Id:            aws.String(tokens[i].ID),
				ReceiptHandle: aws.String(tokens[i].Handle),
			})
		}
		out, err := r.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
			QueueUrl: aws.String(r.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("sqs delete failed: %w", err)
		}
		if len(out.Failed) > 0 {
			f := out.Failed[0]
			return fmt.Errorf("sqs delete failed for %d messages, first id=%s code=%s message=%s",
				len(out.Failed), aws.ToString(f.Id), aws.ToString(f.Code), aws.ToString(f.Message))
		}
		return nil
	})
}

// Close is a no-op; the HTTP client holds no session
func (r *Receiver) Close() error {
	return nil
}

func decodeMessage(m *sqstypes.Message) message.Inbound {
	id := aws.ToString(m.MessageId)
	msg := message.Inbound{
		Token:     message.Token{ID: id, Handle: aws.ToString(m.ReceiptHandle)},
		MessageID: id,
		Body:      []byte(aws.ToString(m.Body)),
		Headers:   make(map[string]string, len(m.MessageAttributes)),
	}
	for name, attr := range m.MessageAttributes {
		if attr.StringValue == nil {
			continue
		}
		v := *attr.StringValue
		switch name {
		case AttributeMessageID:
			if v != "" {
				msg.MessageID = v
			}
		case AttributeContentType:
			msg.ContentType = v
		default:
			msg.Headers[name] = v
		}
	}
	return msg
}
