/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"strings"
	"testing"

	"gotest.tools/assert"

	"github.com/Memo-Aldu/flow-builder/pkg/utils/httpclient"
)

func TestDeliverToWebhook(t *testing.T) {
	http := &fakeHTTP{result: &httpclient.Result{StatusCode: 200, Body: []byte(`{"ok":true}`)}}
	executor := &webhookExecutor{deps: Deps{HTTP: http}}

	node := testNode("hook-1", TypeDeliverToWebhook, map[string]interface{}{
		HandleWebhookURL: "https://hooks.example.com/x",
		HandlePayload:    `{"a":1}`,
		HandleAuthType:   "bearer",
		HandleAuthValue:  "token-1",
	})
	outputs, err := executor.Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.Equal(t, outputs[OutputDeliveryStatus], "Delivered with status 200")
	assert.Equal(t, outputs[OutputResponseBody], `{"ok":true}`)

	call := http.calls[0]
	assert.Equal(t, call.url, "https://hooks.example.com/x")
	assert.Equal(t, call.body, `{"a":1}`)
	assert.DeepEqual(t, call.headers, []string{
		"Content-Type", "application/json",
		"Authorization", "Bearer token-1",
	})
}

func TestDeliverToWebhookFailureDoesNotFailPhase(t *testing.T) {
	http := &fakeHTTP{result: &httpclient.Result{StatusCode: 503}}
	executor := &webhookExecutor{deps: Deps{HTTP: http}}

	node := testNode("hook-1", TypeDeliverToWebhook, map[string]interface{}{
		HandleWebhookURL: "https://hooks.example.com/x",
		HandlePayload:    `{}`,
	})
	outputs, err := executor.Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.Equal(t, outputs[OutputDeliveryStatus], "Failed to deliver: status 503")
	assert.Equal(t, outputs[OutputResponseBody], "")
}

func TestDeliverToWebhookTruncatesBody(t *testing.T) {
	http := &fakeHTTP{result: &httpclient.Result{
		StatusCode: 200,
		Body:       []byte(strings.Repeat("x", maxWebhookBody+100)),
	}}
	executor := &webhookExecutor{deps: Deps{HTTP: http}}

	node := testNode("hook-1", TypeDeliverToWebhook, map[string]interface{}{
		HandleWebhookURL: "https://hooks.example.com/x",
		HandlePayload:    `{}`,
	})
	outputs, err := executor.Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.Equal(t, len(outputs[OutputResponseBody].(string)), maxWebhookBody)
}

func TestSendSMS(t *testing.T) {
	http := &fakeHTTP{result: &httpclient.Result{
		StatusCode: 201,
		Body:       []byte(`{"sid":"SM123","status":"queued"}`),
	}}
	resolver := &fakeResolver{secrets: map[string]string{"cred-twilio": "token-abcd"}}
	executor := &sendSMSExecutor{deps: Deps{HTTP: http, Credentials: resolver}}

	node := testNode("sms-1", TypeSendSMS, map[string]interface{}{
		HandleAccountSID:     "AC42",
		HandleAuthToken:      "cred-twilio",
		HandleFromNumber:     "+15550001111",
		HandleToNumber:       "+15552223333",
		HandleMessageContent: "price dropped",
	})
	outputs, err := executor.Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.Equal(t, outputs[OutputSMSStatus], "queued")
	assert.Equal(t, outputs[OutputMessageSID], "SM123")

	call := http.calls[0]
	assert.Equal(t, call.url, "https://api.twilio.com/2010-04-01/Accounts/AC42/Messages.json")
	body := call.body.(string)
	assert.Assert(t, strings.Contains(body, "Body=price+dropped"))
	assert.Assert(t, strings.Contains(body, "To=%2B15552223333"))
}

func TestSendSMSRejected(t *testing.T) {
	http := &fakeHTTP{result: &httpclient.Result{
		StatusCode: 400,
		Body:       []byte(`{"message":"invalid number"}`),
	}}
	executor := &sendSMSExecutor{deps: Deps{
		HTTP:        http,
		Credentials: &fakeResolver{secrets: map[string]string{"cred-twilio": "token-abcd"}},
	}}

	node := testNode("sms-1", TypeSendSMS, map[string]interface{}{
		HandleAccountSID:     "AC42",
		HandleAuthToken:      "cred-twilio",
		HandleFromNumber:     "+15550001111",
		HandleToNumber:       "nope",
		HandleMessageContent: "hi",
	})
	_, err := executor.Run(context.Background(), node, testEnv(node))
	assert.ErrorContains(t, err, "invalid number")
}
