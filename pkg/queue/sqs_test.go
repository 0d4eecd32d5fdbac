/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"gotest.tools/assert"

	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

type fakeSQSAPI struct {
	sentBodies      []string
	receiveInput    *sqs.ReceiveMessageInput
	deletedReceipts []string
	messages        []sqstypes.Message
}

func (f *fakeSQSAPI) SendMessage(_ context.Context, input *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sentBodies = append(f.sentBodies, aws.ToString(input.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSQSAPI) ReceiveMessage(_ context.Context, input *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receiveInput = input
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQSAPI) DeleteMessage(_ context.Context, input *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deletedReceipts = append(f.deletedReceipts, aws.ToString(input.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/000000000000/flow-builder-workflows"

func TestProviderName(t *testing.T) {
	p := NewProviderWithClient(&fakeSQSAPI{}, testQueueURL, 30)
	assert.Equal(t, p.Name(), "flow-builder-workflows")
}

func TestSendMarshalsWireContract(t *testing.T) {
	api := &fakeSQSAPI{}
	p := NewProviderWithClient(api, testQueueURL, 30)

	queuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id, err := p.Send(context.Background(), &Message{
		ExecutionId: "exec-1",
		WorkflowId:  "wf-1",
		UserId:      "user-1",
		Trigger:     "scheduled",
		Status:      "pending",
		QueuedAt:    queuedAt,
	})
	assert.NilError(t, err)
	assert.Equal(t, id, "msg-1")
	assert.Equal(t, len(api.sentBodies), 1)

	var decoded map[string]interface{}
	assert.NilError(t, json.Unmarshal([]byte(api.sentBodies[0]), &decoded))
	assert.Equal(t, decoded["execution_id"], "exec-1")
	assert.Equal(t, decoded["workflow_id"], "wf-1")
	assert.Equal(t, decoded["user_id"], "user-1")
	assert.Equal(t, decoded["trigger"], "scheduled")
	assert.Equal(t, decoded["status"], "pending")
	assert.Equal(t, decoded["queued_at"], "2026-01-02T03:04:05Z")
}

func TestReceivePropagatesVisibilityTimeout(t *testing.T) {
	api := &fakeSQSAPI{
		messages: []sqstypes.Message{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String(`{"execution_id":"e"}`)},
		},
	}
	p := NewProviderWithClient(api, testQueueURL, 45)

	msgs, err := p.Receive(context.Background(), 5, 20)
	assert.NilError(t, err)
	assert.Equal(t, len(msgs), 1)
	assert.Equal(t, msgs[0].ReceiptHandle, "r1")
	assert.Equal(t, api.receiveInput.VisibilityTimeout, int32(45))
	assert.Equal(t, api.receiveInput.WaitTimeSeconds, int32(20))
	assert.Equal(t, api.receiveInput.MaxNumberOfMessages, int32(5))
}

func TestDelete(t *testing.T) {
	api := &fakeSQSAPI{}
	p := NewProviderWithClient(api, testQueueURL, 30)

	assert.NilError(t, p.Delete(context.Background(), "r1"))
	assert.DeepEqual(t, api.deletedReceipts, []string{"r1"})
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage(`{"execution_id":"e1","workflow_id":"w1","user_id":"u1","trigger":"manual","status":"pending","queued_at":"2026-01-02T03:04:05Z"}`)
	assert.NilError(t, err)
	assert.Equal(t, msg.ExecutionId, "e1")
	assert.Equal(t, msg.Trigger, "manual")
}

func TestParseMessagePoison(t *testing.T) {
	_, err := ParseMessage(`{not json`)
	assert.Assert(t, flowerrors.IsPoisonMessage(err))

	_, err = ParseMessage(`{"workflow_id":"w1"}`)
	assert.Assert(t, flowerrors.IsPoisonMessage(err))
}
