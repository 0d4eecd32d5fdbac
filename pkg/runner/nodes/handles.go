/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

// Input handle names. These are the literal keys the editor writes into
// node inputs and edge target handles, so they are part of the stored
// definition format.
const (
	HandleWebsiteURL     = "Website URL"
	HandleSelector       = "Selector"
	HandleValue          = "Value"
	HandleVisibility     = "Visibility"
	HandleDuration       = "Duration"
	HandleHTML           = "Html"
	HandleMaxLength      = "Max Length"
	HandleCredentials    = "Credentials"
	HandlePrompt         = "Prompt"
	HandleContent        = "Content"
	HandleJSON           = "JSON"
	HandlePropertyName   = "Property Name"
	HandlePropertyValue  = "Property Value"
	HandleInputJSON      = "Input JSON"
	HandleTransformRules = "Transform Rules"
	HandleMergeStrategy  = "Merge Strategy"
	HandleLeftValue      = "Left Value"
	HandleOperator       = "Operator"
	HandleRightValue     = "Right Value"
	HandleWebhookURL     = "Webhook URL"
	HandlePayload        = "Payload"
	HandleContentType    = "Content Type"
	HandleAuthType       = "Authorization Type"
	HandleAuthValue      = "Authorization Value"
	HandleSMTPHost       = "SMTP Host"
	HandleSMTPPort       = "SMTP Port"
	HandleUsername       = "Username"
	HandlePassword       = "Password"
	HandleFrom           = "From"
	HandleTo             = "To"
	HandleCC             = "CC"
	HandleBCC            = "BCC"
	HandleSubject        = "Subject"
	HandleBody           = "Body"
	HandleAccountSID     = "Twilio Account SID"
	HandleAuthToken      = "Twilio Auth Token"
	HandleFromNumber     = "From Number"
	HandleToNumber       = "To Number"
	HandleMessageContent = "Message Content"
)

// Output handle names, addressable by edge source handles.
const (
	OutputHTMLContent     = "Html Content"
	OutputText            = "Text"
	OutputReducedHTML     = "Reduced Html"
	OutputExtractedData   = "Extracted Data"
	OutputPropertyValue   = "Property Value"
	OutputUpdatedJSON     = "Updated JSON"
	OutputTransformedJSON = "Transformed JSON"
	OutputMergedData      = "Merged Data"
	OutputTruePath        = "True Path"
	OutputFalsePath       = "False Path"
	OutputResult          = "Result"
	OutputData            = "Data"
	OutputDeliveryStatus  = "Delivery Status"
	OutputResponseBody    = "Response Body"
	OutputStatus          = "Status"
	OutputMessageID       = "Message-ID"
	OutputSMSStatus       = "SMS Status"
	OutputMessageSID      = "Message SID"
)
