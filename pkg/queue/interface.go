/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package queue

import (
	"context"
	"time"
)

// Message is the dispatch payload placed on the workflow queue.
// Field names are part of the wire contract.
type Message struct {
	ExecutionId string    `json:"execution_id"`
	WorkflowId  string    `json:"workflow_id"`
	UserId      string    `json:"user_id"`
	Trigger     string    `json:"trigger"`
	Status      string    `json:"status"`
	QueuedAt    time.Time `json:"queued_at"`
}

// ReceivedMessage pairs a decoded Message with its queue bookkeeping.
// Body keeps the raw payload so poison messages can be logged verbatim.
type ReceivedMessage struct {
	MessageId     string
	ReceiptHandle string
	Body          string
}

// Interface is the point-to-point work queue abstraction.
// Delivery is at least once; consumers ack with Delete and must tolerate
// redelivery after the visibility timeout.
type Interface interface {
	Name() string
	Send(ctx context.Context, msg *Message) (string, error)
	Receive(ctx context.Context, maxMessages, waitSeconds int) ([]*ReceivedMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}
