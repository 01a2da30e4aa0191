package sqs

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeAPI struct {
	mu sync.Mutex

	receiveOut *sqs.ReceiveMessageOutput
	receiveErr error
	receiveIn  []*sqs.ReceiveMessageInput

	deleteIn     []*sqs.DeleteMessageBatchInput
	deleteFailed []sqstypes.BatchResultErrorEntry
	deleteErr    error

	sendIn     []*sqs.SendMessageBatchInput
	sendFailed []sqstypes.BatchResultErrorEntry
	sendErr    error
}

func (f *fakeAPI) ReceiveMessage(_ context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiveIn = append(f.receiveIn, in)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if f.receiveOut == nil {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return f.receiveOut, nil
}

func (f *fakeAPI) DeleteMessageBatch(_ context.Context, in *sqs.DeleteMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteIn = append(f.deleteIn, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &sqs.DeleteMessageBatchOutput{Failed: f.deleteFailed}, nil
}

func (f *fakeAPI) SendMessageBatch(_ context.Context, in *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendIn = append(f.sendIn, in)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sqs.SendMessageBatchOutput{Failed: f.sendFailed}, nil
}

func failedEntry(id string) sqstypes.BatchResultErrorEntry {
	return sqstypes.BatchResultErrorEntry{Id: aws.String(id), Code: aws.String("InternalError"), Message: aws.String("boom")}
}
