/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gopkg.in/gomail.v2"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// maxWebhookBody caps the response body persisted in webhook outputs.
const maxWebhookBody = 5000

// webhookExecutor POSTs a payload to a user-supplied URL. Delivery failure
// is reported through the outputs rather than failing the phase, so a flaky
// webhook target does not sink the whole execution.
type webhookExecutor struct {
	deps Deps
}

func (e *webhookExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	webhookURL, err := stringInput(node, HandleWebhookURL)
	if err != nil {
		return nil, err
	}
	payload, err := stringInput(node, HandlePayload)
	if err != nil {
		return nil, err
	}
	contentType := optionalString(node, HandleContentType, "application/json")
	authType := strings.ToLower(optionalString(node, HandleAuthType, "none"))
	authValue := optionalString(node, HandleAuthValue, "")

	headers := []string{"Content-Type", contentType}
	switch {
	case authType == "basic" && authValue != "":
		encoded := base64.StdEncoding.EncodeToString([]byte(authValue))
		headers = append(headers, "Authorization", "Basic "+encoded)
	case authType == "bearer" && authValue != "":
		headers = append(headers, "Authorization", "Bearer "+authValue)
	}

	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Delivering payload to %s.", webhookURL))
	result, err := e.deps.HTTP.Post(webhookURL, payload, headers...)

	var status, body string
	switch {
	case err != nil:
		status = fmt.Sprintf("Failed to deliver: %v", err)
		scratch.AddLog(v1.LogError, status)
	case !result.IsSuccess():
		status = fmt.Sprintf("Failed to deliver: status %d", result.StatusCode)
		scratch.AddLog(v1.LogError, status)
	default:
		status = fmt.Sprintf("Delivered with status %d", result.StatusCode)
		body = string(result.Body)
		scratch.AddLog(v1.LogInfo, status)
	}
	if len(body) > maxWebhookBody {
		body = body[:maxWebhookBody]
	}
	return map[string]interface{}{
		OutputDeliveryStatus: status,
		OutputResponseBody:   body,
	}, nil
}

// emailExecutor sends an email over SMTP. The password is a credential
// reference resolved at run time and never logged.
type emailExecutor struct {
	deps Deps
}

func (e *emailExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	host, err := stringInput(node, HandleSMTPHost)
	if err != nil {
		return nil, err
	}
	port, err := floatInput(node, HandleSMTPPort)
	if err != nil {
		return nil, err
	}
	username, err := stringInput(node, HandleUsername)
	if err != nil {
		return nil, err
	}
	password, err := resolveCredential(ctx, e.deps, node, env, HandlePassword)
	if err != nil {
		scratch.AddLog(v1.LogError, "Failed to resolve SMTP password credential.")
		return nil, err
	}
	from, err := stringInput(node, HandleFrom)
	if err != nil {
		return nil, err
	}
	to, err := stringInput(node, HandleTo)
	if err != nil {
		return nil, err
	}
	subject, err := stringInput(node, HandleSubject)
	if err != nil {
		return nil, err
	}
	body, err := stringInput(node, HandleBody)
	if err != nil {
		return nil, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", splitAddresses(to)...)
	if cc := optionalString(node, HandleCC, ""); cc != "" {
		message.SetHeader("Cc", splitAddresses(cc)...)
	}
	if bcc := optionalString(node, HandleBCC, ""); bcc != "" {
		message.SetHeader("Bcc", splitAddresses(bcc)...)
	}
	message.SetHeader("Subject", subject)
	message.SetHeader("Message-ID", messageID)
	message.SetBody("text/plain", body)

	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Sending email to %s.", to))
	dialer := gomail.NewDialer(host, int(port), username, password)
	if err := dialer.DialAndSend(message); err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Failed to send email: %v", err))
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to send email").WithError(err)
	}
	scratch.AddLog(v1.LogInfo, "Email sent successfully.")
	return map[string]interface{}{
		OutputStatus:    "sent",
		OutputMessageID: messageID,
	}, nil
}

func splitAddresses(list string) []string {
	parts := strings.Split(list, ",")
	addresses := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	return addresses
}

// twilioMessagesURL is the REST endpoint SMS deliveries post to.
const twilioMessagesURL = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// sendSMSExecutor sends an SMS through the Twilio REST API. The auth token
// is a credential reference resolved at run time.
type sendSMSExecutor struct {
	deps Deps
}

func (e *sendSMSExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	accountSID, err := stringInput(node, HandleAccountSID)
	if err != nil {
		return nil, err
	}
	authToken, err := resolveCredential(ctx, e.deps, node, env, HandleAuthToken)
	if err != nil {
		scratch.AddLog(v1.LogError, "Failed to resolve Twilio auth token credential.")
		return nil, err
	}
	fromNumber, err := stringInput(node, HandleFromNumber)
	if err != nil {
		return nil, err
	}
	toNumber, err := stringInput(node, HandleToNumber)
	if err != nil {
		return nil, err
	}
	content, err := stringInput(node, HandleMessageContent)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Sending SMS to %s.", toNumber))

	form := url.Values{}
	form.Set("From", fromNumber)
	form.Set("To", toNumber)
	form.Set("Body", content)
	basicAuth := base64.StdEncoding.EncodeToString([]byte(accountSID + ":" + authToken))

	result, err := e.deps.HTTP.Post(
		fmt.Sprintf(twilioMessagesURL, accountSID),
		form.Encode(),
		"Content-Type", "application/x-www-form-urlencoded",
		"Authorization", "Basic "+basicAuth,
	)
	if err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Failed to send SMS: %v", err))
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to send SMS").WithError(err)
	}
	if !result.IsSuccess() {
		reason := gjson.GetBytes(result.Body, "message").String()
		scratch.AddLog(v1.LogError, fmt.Sprintf("Twilio rejected the message: %s", reason))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("Twilio returned status %d: %s", result.StatusCode, reason))
	}

	sid := gjson.GetBytes(result.Body, "sid").String()
	status := gjson.GetBytes(result.Body, "status").String()
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("SMS sent successfully. SID: %s", sid))
	return map[string]interface{}{
		OutputSMSStatus:  status,
		OutputMessageSID: sid,
	}, nil
}
