/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

// Client is the LLM surface consumed by the extraction executor.
// A fake implementation backs the executor tests.
type Client interface {
	Chat(ctx context.Context, systemPrompt string, userMessages ...string) (string, error)
}

type openAIClient struct {
	client *openai.Client
	model  string
}

// Factory builds a Client from an API key resolved at run time.
// The key arrives from a credential reference per node, so clients are
// constructed per call rather than at process start.
type Factory func(apiKey string) (Client, error)

// NewOpenAIClient creates a Client backed by the OpenAI chat completions API.
// The model and an optional base URL override come from configuration.
func NewOpenAIClient(apiKey string) (Client, error) {
	if apiKey == "" {
		return nil, flowerrors.NewBadRequest("API key cannot be empty")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := config.GetLLMBaseURL(); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &openAIClient{
		client: &client,
		model:  config.GetLLMModel(),
	}, nil
}

// Chat sends one completion request and returns the raw text of the first
// choice. JSON mode keeps extraction responses machine-parsable.
func (c *openAIClient) Chat(ctx context.Context, systemPrompt string, userMessages ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(userMessages)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(systemPrompt),
				},
			},
		})
	}
	for _, m := range userMessages {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(m),
				},
			},
		})
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
		Temperature: openai.Float(1.0),
	})
	if err != nil {
		return "", flowerrors.NewExecutorError("extract_data_openai", "LLM request failed").WithError(err)
	}
	if len(completion.Choices) == 0 {
		return "", flowerrors.NewExecutorError("extract_data_openai", "no response from LLM")
	}
	return StripFences(completion.Choices[0].Message.Content), nil
}

// StripFences removes markdown code fences that models sometimes wrap
// around JSON payloads.
func StripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
