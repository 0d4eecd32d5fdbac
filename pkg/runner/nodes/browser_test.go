/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"testing"

	"gotest.tools/assert"

	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

func TestLaunchBrowserNavigates(t *testing.T) {
	driver := newFakeDriver("<html></html>")
	factory := &fakeBrowserFactory{driver: driver}
	executor := &launchBrowserExecutor{deps: Deps{Browser: factory}, kind: browser.KindStandard}

	node := testNode("launch-1", TypeLaunchStandardBrowser, map[string]interface{}{
		HandleWebsiteURL: "https://example.com",
	})
	env := testEnv(node)

	outputs, err := executor.Run(context.Background(), node, env)
	assert.NilError(t, err)
	assert.Equal(t, outputs[WebPageHandle], true)
	assert.DeepEqual(t, driver.visited, []string{"https://example.com"})
	assert.Assert(t, env.Browser != nil)
}

func TestLaunchBrowserReusesExistingDriver(t *testing.T) {
	driver := newFakeDriver("")
	factory := &fakeBrowserFactory{driver: driver}
	executor := &launchBrowserExecutor{deps: Deps{Browser: factory}, kind: browser.KindStandard}

	node := testNode("launch-1", TypeLaunchStandardBrowser, map[string]interface{}{
		HandleWebsiteURL: "https://example.com",
	})
	env := testEnv(node)
	env.Browser = driver

	_, err := executor.Run(context.Background(), node, env)
	assert.NilError(t, err)
	assert.Equal(t, len(factory.launched), 0)
	assert.DeepEqual(t, driver.visited, []string{"https://example.com"})
}

func TestLaunchBrightDataResolvesCredential(t *testing.T) {
	driver := newFakeDriver("")
	factory := &fakeBrowserFactory{driver: driver}
	resolver := &fakeResolver{secrets: map[string]string{"cred-1": "s3cretzone"}}
	executor := &launchBrowserExecutor{
		deps: Deps{Browser: factory, Credentials: resolver},
		kind: browser.KindBrightData,
	}

	node := testNode("launch-1", TypeLaunchBrightDataBrowser, map[string]interface{}{
		HandleWebsiteURL: "https://example.com",
		HandleUsername:   "zone-user",
		HandlePassword:   "cred-1",
	})
	_, err := executor.Run(context.Background(), node, testEnv(node))
	assert.NilError(t, err)
	assert.DeepEqual(t, resolver.calls, []string{"cred-1"})
	assert.Equal(t, factory.opts[0].Username, "zone-user")
	assert.Equal(t, factory.opts[0].Password, "s3cretzone")
}

func TestFillInputRequiresPage(t *testing.T) {
	node := testNode("fill-1", TypeFillInput, map[string]interface{}{
		HandleSelector: "#q",
		HandleValue:    "widgets",
	})
	_, err := (&fillInputExecutor{}).Run(context.Background(), node, testEnv(node))
	assert.ErrorContains(t, err, "no browser page found in environment")
}

func TestFillAndClick(t *testing.T) {
	driver := newFakeDriver("")
	fill := testNode("fill-1", TypeFillInput, map[string]interface{}{
		HandleSelector: "#q",
		HandleValue:    "widgets",
	})
	click := testNode("click-1", TypeClickElement, map[string]interface{}{
		HandleSelector: "#go",
	})
	env := testEnv(fill, click)
	env.Browser = driver

	outputs, err := (&fillInputExecutor{}).Run(context.Background(), fill, env)
	assert.NilError(t, err)
	assert.Equal(t, outputs["filled_input"], true)
	assert.Equal(t, driver.filled["#q"], "widgets")

	outputs, err = (&clickElementExecutor{}).Run(context.Background(), click, env)
	assert.NilError(t, err)
	assert.Equal(t, outputs["clicked_element"], true)
	assert.DeepEqual(t, driver.clicked, []string{"#go"})
}

func TestWaitForElementRejectsBadVisibility(t *testing.T) {
	node := testNode("wait-1", TypeWaitForElement, map[string]interface{}{
		HandleSelector:   "#spinner",
		HandleVisibility: "translucent",
	})
	env := testEnv(node)
	env.Browser = newFakeDriver("")

	_, err := (&waitForElementExecutor{}).Run(context.Background(), node, env)
	assert.ErrorContains(t, err, "Visibility must be either")
}

func TestGetHTML(t *testing.T) {
	node := testNode("html-1", TypeGetHTML, nil)
	env := testEnv(node)
	env.Browser = newFakeDriver("<html><body>hi</body></html>")

	outputs, err := (&getHTMLExecutor{}).Run(context.Background(), node, env)
	assert.NilError(t, err)
	assert.Equal(t, outputs[OutputHTMLContent], "<html><body>hi</body></html>")
}

func TestLaunchBrowserNavigateFailure(t *testing.T) {
	driver := newFakeDriver("")
	driver.failWith = flowerrors.NewInternalError("boom")
	factory := &fakeBrowserFactory{driver: driver}
	executor := &launchBrowserExecutor{deps: Deps{Browser: factory}, kind: browser.KindStealth}

	node := testNode("launch-1", TypeLaunchStealthBrowser, map[string]interface{}{
		HandleWebsiteURL: "https://example.com",
	})
	_, err := executor.Run(context.Background(), node, testEnv(node))
	assert.Equal(t, flowerrors.ReasonForError(err), flowerrors.ExecutorFailure)
}
