/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// The closed set of node types.
const (
	TypeLaunchStandardBrowser   = "launch_standard_browser"
	TypeLaunchStealthBrowser    = "launch_stealth_browser"
	TypeLaunchBrightDataBrowser = "launch_bright_data_browser"
	TypeFillInput               = "fill_input"
	TypeClickElement            = "click_element"
	TypeWaitForElement          = "wait_for_element"
	TypeDelay                   = "delay"
	TypeGetHTML                 = "get_html"
	TypeGetTextFromHTML         = "get_text_from_html"
	TypeCondenseHTML            = "condense_html"
	TypeExtractDataOpenAI       = "extract_data_openai"
	TypeReadPropertyFromJSON    = "read_property_from_json"
	TypeWritePropertyToJSON     = "write_property_to_json"
	TypeJSONTransform           = "json_transform"
	TypeMergeData               = "merge_data"
	TypeBranch                  = "branch"
	TypeDeliverToWebhook        = "deliver_to_webhook"
	TypeEmailDelivery           = "email_delivery"
	TypeSendSMS                 = "send_sms"
)

// WebPageHandle is the dependency-only handle produced by browser launch
// nodes. Edges targeting it order execution but carry no input value; the
// page itself travels through the environment.
const WebPageHandle = "Web Page"

// Registration binds a node type to its credit cost, start eligibility,
// required input handles and executor. Required lists exclude WebPageHandle;
// page presence is checked against the environment instead.
type Registration struct {
	Cost     int
	CanStart bool
	Required []string
	Executor Executor
}

// Registry is the static node type table built over one Deps value.
type Registry struct {
	entries map[string]Registration
}

// NewRegistry builds the full node registry.
func NewRegistry(d Deps) *Registry {
	return &Registry{entries: map[string]Registration{
		TypeLaunchStandardBrowser: {
			Cost:     5,
			CanStart: true,
			Required: []string{HandleWebsiteURL},
			Executor: &launchBrowserExecutor{deps: d, kind: browser.KindStandard},
		},
		TypeLaunchStealthBrowser: {
			Cost:     6,
			CanStart: true,
			Required: []string{HandleWebsiteURL},
			Executor: &launchBrowserExecutor{deps: d, kind: browser.KindStealth},
		},
		TypeLaunchBrightDataBrowser: {
			Cost:     10,
			CanStart: true,
			Required: []string{HandleWebsiteURL, HandleUsername, HandlePassword},
			Executor: &launchBrowserExecutor{deps: d, kind: browser.KindBrightData},
		},
		TypeFillInput: {
			Cost:     1,
			Required: []string{HandleSelector, HandleValue},
			Executor: &fillInputExecutor{},
		},
		TypeClickElement: {
			Cost:     1,
			Required: []string{HandleSelector},
			Executor: &clickElementExecutor{},
		},
		TypeWaitForElement: {
			Cost:     1,
			Required: []string{HandleSelector},
			Executor: &waitForElementExecutor{},
		},
		TypeDelay: {
			Cost:     1,
			Required: []string{HandleDuration},
			Executor: &delayExecutor{},
		},
		TypeGetHTML: {
			Cost:     2,
			Executor: &getHTMLExecutor{},
		},
		TypeGetTextFromHTML: {
			Cost:     2,
			Required: []string{HandleHTML, HandleSelector},
			Executor: &getTextFromHTMLExecutor{},
		},
		TypeCondenseHTML: {
			Cost:     2,
			Required: []string{HandleHTML},
			Executor: &condenseHTMLExecutor{},
		},
		TypeExtractDataOpenAI: {
			Cost:     4,
			Required: []string{HandleCredentials, HandlePrompt, HandleContent},
			Executor: &extractDataExecutor{deps: d},
		},
		TypeReadPropertyFromJSON: {
			Cost:     1,
			Required: []string{HandleJSON, HandlePropertyName},
			Executor: &readPropertyExecutor{},
		},
		TypeWritePropertyToJSON: {
			Cost:     1,
			Required: []string{HandleJSON, HandlePropertyName, HandlePropertyValue},
			Executor: &writePropertyExecutor{},
		},
		TypeJSONTransform: {
			Cost:     2,
			Required: []string{HandleInputJSON, HandleTransformRules},
			Executor: &jsonTransformExecutor{},
		},
		TypeMergeData: {
			Cost:     1,
			Executor: &mergeDataExecutor{},
		},
		TypeBranch: {
			Cost:     1,
			Required: []string{HandleLeftValue, HandleOperator, HandleRightValue},
			Executor: &branchExecutor{},
		},
		TypeDeliverToWebhook: {
			Cost:     2,
			Required: []string{HandleWebhookURL, HandlePayload},
			Executor: &webhookExecutor{deps: d},
		},
		TypeEmailDelivery: {
			Cost:     3,
			Required: []string{HandleSMTPHost, HandleSMTPPort, HandleUsername, HandlePassword, HandleFrom, HandleTo, HandleSubject, HandleBody},
			Executor: &emailExecutor{deps: d},
		},
		TypeSendSMS: {
			Cost:     2,
			Required: []string{HandleAccountSID, HandleAuthToken, HandleFromNumber, HandleToNumber, HandleMessageContent},
			Executor: &sendSMSExecutor{deps: d},
		},
	}}
}

// Lookup returns the registration for nodeType.
func (r *Registry) Lookup(nodeType string) (Registration, error) {
	registration, ok := r.entries[nodeType]
	if !ok {
		return Registration{}, flowerrors.NewNodeTypeUnknown(nodeType)
	}
	return registration, nil
}

// Cost returns the credit cost of nodeType.
func (r *Registry) Cost(nodeType string) (int, error) {
	registration, err := r.Lookup(nodeType)
	if err != nil {
		return 0, err
	}
	return registration.Cost, nil
}

// ValidateInputs fails fast when a required input handle has no value after
// edge resolution.
func (r *Registry) ValidateInputs(node v1.Node) error {
	registration, err := r.Lookup(node.Data.Type)
	if err != nil {
		return err
	}
	for _, handle := range registration.Required {
		if raw, ok := node.Data.Inputs[handle]; !ok || raw == nil {
			return flowerrors.NewUnresolvedInput(node.Id, handle)
		}
	}
	return nil
}
