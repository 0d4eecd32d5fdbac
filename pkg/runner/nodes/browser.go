/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const waitForElementTimeout = 50 * time.Second

// launchBrowserExecutor launches a browser of its kind and navigates to the
// requested URL. The driver becomes the environment's current page; later
// launches in the same execution reuse it.
type launchBrowserExecutor struct {
	deps Deps
	kind browser.Kind
}

func (e *launchBrowserExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	scratch := env.Phase(node.Id)

	pageURL, err := stringInput(node, HandleWebsiteURL)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Launching browser to %s...", pageURL))

	if env.Browser == nil {
		opts := browser.LaunchOptions{}
		if e.kind == browser.KindBrightData {
			opts.Username, err = stringInput(node, HandleUsername)
			if err != nil {
				return nil, err
			}
			opts.Password, err = resolveCredential(ctx, e.deps, node, env, HandlePassword)
			if err != nil {
				return nil, err
			}
		}
		driver, err := e.deps.Browser.Launch(ctx, e.kind, opts)
		if err != nil {
			scratch.AddLog(v1.LogError, fmt.Sprintf("Failed to launch browser: %v", err))
			return nil, err
		}
		env.Browser = driver
		scratch.AddLog(v1.LogDebug, "Launched browser.")
	}

	if err := env.Browser.Navigate(ctx, pageURL); err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Failed to navigate to %s.", pageURL))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("failed to navigate to %s", pageURL)).WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Browser navigated to %s", pageURL))
	return map[string]interface{}{WebPageHandle: true}, nil
}

// fillInputExecutor fills an input field on the current page.
type fillInputExecutor struct{}

func (e *fillInputExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	if err := requirePage(node, env); err != nil {
		return nil, err
	}
	scratch := env.Phase(node.Id)

	selector, err := stringInput(node, HandleSelector)
	if err != nil {
		return nil, err
	}
	value, err := stringInput(node, HandleValue)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Filling input '%s'.", selector))

	if err := env.Browser.Fill(ctx, selector, value); err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Could not fill input '%s'.", selector))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("could not locate or interact with the input %q", selector)).WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Filled '%s' successfully.", selector))
	return map[string]interface{}{"filled_input": true}, nil
}

// clickElementExecutor clicks an element on the current page.
type clickElementExecutor struct{}

func (e *clickElementExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	if err := requirePage(node, env); err != nil {
		return nil, err
	}
	scratch := env.Phase(node.Id)

	selector, err := stringInput(node, HandleSelector)
	if err != nil {
		return nil, err
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Clicking element '%s'.", selector))

	if err := env.Browser.Click(ctx, selector); err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Could not click element '%s'.", selector))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("could not locate or click the element %q", selector)).WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Clicked '%s' successfully.", selector))
	return map[string]interface{}{"clicked_element": true}, nil
}

// waitForElementExecutor waits for an element to reach the requested
// visibility on the current page.
type waitForElementExecutor struct{}

func (e *waitForElementExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	if err := requirePage(node, env); err != nil {
		return nil, err
	}
	scratch := env.Phase(node.Id)

	selector, err := stringInput(node, HandleSelector)
	if err != nil {
		return nil, err
	}
	visibility := optionalString(node, HandleVisibility, browser.VisibilityVisible)
	if visibility != browser.VisibilityVisible && visibility != browser.VisibilityHidden {
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			"Visibility must be either 'visible' or 'hidden'")
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Waiting for element %s to be %s.", selector, visibility))

	if err := env.Browser.WaitForSelector(ctx, selector, visibility, waitForElementTimeout); err != nil {
		scratch.AddLog(v1.LogError, fmt.Sprintf("Element '%s' did not become %s.", selector, visibility))
		return nil, flowerrors.NewExecutorError(node.Data.Type,
			fmt.Sprintf("element %q did not appear before the timeout expired", selector)).WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Element '%s' appeared.", selector))
	return map[string]interface{}{"element_appeared": true}, nil
}

// getHTMLExecutor captures the full HTML of the current page.
type getHTMLExecutor struct{}

func (e *getHTMLExecutor) Run(ctx context.Context, node v1.Node, env *Environment) (map[string]interface{}, error) {
	if err := requirePage(node, env); err != nil {
		return nil, err
	}
	scratch := env.Phase(node.Id)
	scratch.AddLog(v1.LogInfo, "Capturing page HTML.")

	html, err := env.Browser.Content(ctx)
	if err != nil {
		scratch.AddLog(v1.LogError, "Failed to capture page HTML.")
		return nil, flowerrors.NewExecutorError(node.Data.Type, "failed to capture page HTML").WithError(err)
	}
	scratch.AddLog(v1.LogInfo, fmt.Sprintf("Captured %d bytes of HTML.", len(html)))
	return map[string]interface{}{OutputHTMLContent: html}, nil
}
