package sqs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibs-source/queue-forwarder/internal/message"
)

const queueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/orders"

func TestNewReceiver_WaitSeconds(t *testing.T) {
	tests := []struct {
		poll time.Duration
		want int32
	}{
		{0, 0},
		{1500 * time.Millisecond, 1},
		{5 * time.Second, 5},
		{time.Minute, 20},
	}
	for _, tt := range tests {
		t.Run(tt.poll.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, NewReceiver(&fakeAPI{}, queueURL, tt.poll, 30).waitSeconds)
		})
	}
}

func TestReceiver_Receive(t *testing.T) {
	api := &fakeAPI{receiveOut: &sqs.ReceiveMessageOutput{Messages: []sqstypes.Message{{
		MessageId:     aws.String("sqs-1"),
		ReceiptHandle: aws.String("rh-1"),
		Body:          aws.String(`{"a":1}`),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			AttributeMessageID:   stringAttribute("m-1"),
			AttributeContentType: stringAttribute("application/json"),
			"tenant":             stringAttribute("acme"),
			"blob":               {DataType: aws.String("Binary"), BinaryValue: []byte{1}},
		},
	}}}}
	r := NewReceiver(api, queueURL, 5*time.Second, 45)

	batch, err := r.Receive(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 1, batch.Len())

	msg := batch.Items[0]
	assert.Equal(t, message.Token{ID: "sqs-1", Handle: "rh-1"}, msg.Token)
	assert.Equal(t, "m-1", msg.MessageID)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, []byte(`{"a":1}`), msg.Body)
	assert.Equal(t, map[string]string{"tenant": "acme"}, msg.Headers)

	in := api.receiveIn[0]
	assert.Equal(t, int32(10), in.MaxNumberOfMessages, "capped at the SQS limit")
	assert.Equal(t, int32(5), in.WaitTimeSeconds)
	assert.Equal(t, int32(45), in.VisibilityTimeout)
	assert.Equal(t, queueURL, aws.ToString(in.QueueUrl))
}

func TestReceiver_ReceiveEmptyAndError(t *testing.T) {
	r := NewReceiver(&fakeAPI{}, queueURL, time.Second, 30)
	batch, err := r.Receive(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, batch.Len())

	r = NewReceiver(&fakeAPI{receiveErr: errors.New("throttled")}, queueURL, time.Second, 30)
	_, err = r.Receive(context.Background(), 5)
	assert.ErrorContains(t, err, "throttled")
}

func tokens(n int) []message.Token {
	out := make([]message.Token, n)
	for i := range out {
		out[i] = message.Token{ID: fmt.Sprintf("id-%d", i), Handle: fmt.Sprintf("rh-%d", i)}
	}
	return out
}

func TestReceiver_CompleteChunks(t *testing.T) {
	api := &fakeAPI{}
	r := NewReceiver(api, queueURL, time.Second, 30)

	require.NoError(t, r.Complete(context.Background(), tokens(23)))

	require.Len(t, api.deleteIn, 3)
	assert.Len(t, api.deleteIn[0].Entries, 10)
	assert.Len(t, api.deleteIn[1].Entries, 10)
	assert.Len(t, api.deleteIn[2].Entries, 3)
	assert.Equal(t, "id-20", aws.ToString(api.deleteIn[2].Entries[0].Id))
	assert.Equal(t, "rh-20", aws.ToString(api.deleteIn[2].Entries[0].ReceiptHandle))
}

func TestReceiver_CompleteEmptyIsNoop(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, NewReceiver(api, queueURL, time.Second, 30).Complete(context.Background(), nil))
	assert.Empty(t, api.deleteIn)
}

func TestReceiver_CompleteFailures(t *testing.T) {
	api := &fakeAPI{deleteFailed: []sqstypes.BatchResultErrorEntry{failedEntry("id-1")}}
	err := NewReceiver(api, queueURL, time.Second, 30).Complete(context.Background(), tokens(2))
	assert.ErrorContains(t, err, "id=id-1")

	api = &fakeAPI{deleteErr: errors.New("network")}
	err = NewReceiver(api, queueURL, time.Second, 30).Complete(context.Background(), tokens(12))
	assert.ErrorContains(t, err, "network")
	assert.Len(t, api.deleteIn, 1, "stops at the first failing chunk")
}
