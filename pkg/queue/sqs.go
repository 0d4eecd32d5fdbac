/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// SQSAPI is the narrow slice of the SQS client the provider needs;
// tests substitute a fake.
type SQSAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(context.Context, *sqs.DeleteMessageInput, ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Provider is the SQS-backed queue adapter.
type Provider struct {
	client            SQSAPI
	queueURL          string
	visibilityTimeout int
}

// NewProvider builds a Provider from configuration. A non-empty endpoint
// override points the client at a local emulator with static test
// credentials; otherwise the default AWS credential chain applies.
func NewProvider(ctx context.Context) (*Provider, error) {
	queueURL := config.GetWorkflowQueueURL()
	if queueURL == "" {
		return nil, flowerrors.NewBadRequest("workflow queue url is not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.GetQueueRegion()),
	}
	endpoint := config.GetQueueEndpoint()
	if endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.GetQueueAccessKey(), config.GetQueueSecretKey(), "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config, %w", err)
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	klog.Infof("init queue adapter, queue: %s", queueURL)
	return NewProviderWithClient(client, queueURL, config.GetQueueVisibilityTimeoutSecond()), nil
}

// NewProviderWithClient builds a Provider around an existing client.
func NewProviderWithClient(client SQSAPI, queueURL string, visibilityTimeout int) *Provider {
	return &Provider{
		client:            client,
		queueURL:          queueURL,
		visibilityTimeout: visibilityTimeout,
	}
}

// Name returns the queue name, the last segment of the queue URL.
func (p *Provider) Name() string {
	ss := strings.Split(p.queueURL, "/")
	return ss[len(ss)-1]
}

// Send marshals msg and places it on the queue, returning the message id.
func (p *Provider) Send(ctx context.Context, msg *Message) (string, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshaling the passed body as json, %w", err)
	}
	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(raw)),
		QueueUrl:    aws.String(p.queueURL),
	}
	result, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return "", flowerrors.NewTransient("sending message to queue").WithError(err)
	}
	return aws.ToString(result.MessageId), nil
}

// Receive long-polls up to waitSeconds and returns at most maxMessages.
// Returned messages stay invisible to other consumers for the configured
// visibility timeout.
func (p *Provider) Receive(ctx context.Context, maxMessages, waitSeconds int) ([]*ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		MaxNumberOfMessages: int32(maxMessages),
		VisibilityTimeout:   int32(p.visibilityTimeout),
		WaitTimeSeconds:     int32(waitSeconds),
		QueueUrl:            aws.String(p.queueURL),
	}
	result, err := p.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, flowerrors.NewTransient("receiving messages from queue").WithError(err)
	}
	messages := make([]*ReceivedMessage, 0, len(result.Messages))
	for _, m := range result.Messages {
		messages = append(messages, &ReceivedMessage{
			MessageId:     aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
		})
	}
	return messages, nil
}

// Delete acks a message. Deleting an already-deleted receipt is a no-op
// on the server side, so the call is idempotent.
func (p *Provider) Delete(ctx context.Context, receiptHandle string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	}
	if _, err := p.client.DeleteMessage(ctx, input); err != nil {
		return flowerrors.NewTransient("deleting message from queue").WithError(err)
	}
	return nil
}

// ParseMessage decodes a received body into a Message.
func ParseMessage(body string) (*Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return nil, flowerrors.NewPoisonMessage("malformed queue message body").WithError(err)
	}
	if msg.ExecutionId == "" || msg.WorkflowId == "" || msg.UserId == "" {
		return nil, flowerrors.NewPoisonMessage("queue message body missing required fields")
	}
	return &msg, nil
}
