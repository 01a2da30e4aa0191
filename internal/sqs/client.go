// Package sqs provides the Amazon SQS receiver and sender.
package sqs

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ibs-source/queue-forwarder/internal/config"
)

// maxBatch is the SQS limit for receive, send and delete batches
const maxBatch = 10

// Message attributes with a fixed meaning; every other string attribute is a header
const (
	AttributeMessageID   = "message-id"
	AttributeContentType = "content-type"
	// HeaderMessageGroup selects the FIFO message group of an outbound message
	HeaderMessageGroup = "message-group-id"
)

// API is the subset of the SQS client used by the receiver and the sender
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// NewClient builds an SQS client from the default AWS credential chain
func NewClient(ctx context.Context, cfg *config.SQSConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func isFIFO(queueURL string) bool {
	return strings.HasSuffix(queueURL, ".fifo")
}

// chunks calls fn for every consecutive slice of at most maxBatch elements
func chunks(n int, fn func(start, end int) error) error {
	for i := 0; i < n; i += maxBatch {
		end := i + maxBatch
		if end > n {
			end = n
		}
		if err := fn(i, end); err != nil {
			return err
		}
	}
	return nil
}
