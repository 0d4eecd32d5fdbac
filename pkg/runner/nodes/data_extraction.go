/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const extractionSystemPrompt = "You are a web scraping assistant. Extract the data " +
	"requested by the user from the provided content and answer with a single JSON " +
	"object containing only the extracted fields. Do not include explanations or " +
	"markdown fences."

// getTextFromHTMLExecutor extracts the text content of the elements matching
// a CSS selector.
type getTextFromHTMLExecutor struct{}

func (e *getTextFromHTMLExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	html, err := stringInput(node, HandleHTML)
	if err != nil {
		return nil, err
	}
	selector, err := stringInput(node, HandleSelector)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Extracting text from '%s'.", selector))

	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to parse HTML").WithError(err)
	}
	selection := document.Find(selector)
	if selection.Length() == 0 {
		scratch.AddLog(v1.LogError, fmt.Sprintf("No element matched '%s'.", selector))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("no element matched selector %q", selector))
	}
	text := strings.TrimSpace(selection.Text())
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Extracted %d characters of text.", len(text)))
	return map[string]interface{}{OutputText: text}, nil
}

// condenseHTMLExecutor strips scripts, styles and attributes from a document
// so LLM prompts stay small. An optional selector narrows the document to a
// subtree first, and an optional max length truncates the result.
type condenseHTMLExecutor struct{}

func (e *condenseHTMLExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	html, err := stringInput(node, HandleHTML)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, "Condensing HTML.")

	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to parse HTML").WithError(err)
	}

	selection := document.Selection
	if selector := optionalString(node, HandleSelector, ""); selector != "" {
		selection = document.Find(selector)
		if selection.Length() == 0 {
			return nil, flowerrors.NewExecutorError(node.Data.Type,
				fmt.Sprintf("no element matched selector %q", selector))
		}
	}
	selection.Find("script, style, noscript, iframe, svg, link, meta").Remove()
	selection.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range s.Nodes[0].Attr {
			switch attr.Key {
			case "id", "class", "href", "src":
			default:
				s.RemoveAttr(attr.Key)
			}
		}
	})

	condensed, err := goquery.OuterHtml(selection)
	if err != nil {
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to render condensed HTML").WithError(err)
	}
	condensed = strings.Join(strings.Fields(condensed), " ")

	if maxLength := optionalString(node, HandleMaxLength, ""); maxLength != "" {
		limit, err := floatInput(node, HandleMaxLength)
		if err != nil {
			return nil, err
		}
		if n := int(limit); n > 0 && len(condensed) > n {
			condensed = condensed[:n]
		}
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Condensed HTML to %d characters.", len(condensed)))
	return map[string]interface{}{OutputReducedHTML: condensed}, nil
}

// extractDataExecutor sends content and a prompt to the LLM and returns the
// extracted data as a JSON string. The API key is a credential reference
// resolved at run time and never logged.
type extractDataExecutor struct {
	deps Deps
}

func (e *extractDataExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	prompt, err := stringInput(node, HandlePrompt)
	if err != nil {
		return nil, err
	}
	content, err := stringInput(node, HandleContent)
	if err != nil {
		return nil, err
	}
	apiKey, err := resolveCredential(ctx, e.deps, node, env, HandleCredentials)
	if err != nil {
		scratch.AddLog(v1.LogError, "Failed to resolve API key credential.")
		return nil, err
	}

	llmClient, err := e.deps.NewLLM(apiKey)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, "Sending content to the LLM for extraction.")

	response, err := llmClient.Chat(ctx, extractionSystemPrompt, content, prompt)
	if err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("LLM extraction failed: %v", err))
		return nil, err
	}
	if !gjson.Valid(response) {
		scratch.AddLog(v1.LogError, "LLM returned a non-JSON response.")
		return nil, flowerrors.NewExecutorError(node.Data.Type, "LLM response is not valid JSON")
	}
	scratch.AddLog(v1.LogInfo, "Extraction completed.")
	return map[string]interface{}{OutputExtractedData: response}, nil
}
