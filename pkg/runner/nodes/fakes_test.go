/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package nodes

import (
	"context"
	"net/http"
	"time"

	v1 "github.com/Memo-Aldu/flow-builder/pkg/apis/v1"
	"github.com/Memo-Aldu/flow-builder/pkg/browser"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
	"github.com/Memo-Aldu/flow-builder/pkg/llm"
	"github.com/Memo-Aldu/flow-builder/pkg/utils/httpclient"
)

type fakeDriver struct {
	visited  []string
	filled   map[string]string
	clicked  []string
	html     string
	closed   bool
	failWith error
}

func newFakeDriver(html string) *fakeDriver {
	return &fakeDriver{filled: map[string]string{}, html: html}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.visited = append(d.visited, url)
	return nil
}

func (d *fakeDriver) Fill(_ context.Context, selector, value string) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.filled[selector] = value
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.clicked = append(d.clicked, selector)
	return nil
}

func (d *fakeDriver) WaitForSelector(_ context.Context, _, _ string, _ time.Duration) error {
	return d.failWith
}

func (d *fakeDriver) Content(_ context.Context) (string, error) {
	return d.html, d.failWith
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

type fakeBrowserFactory struct {
	driver   *fakeDriver
	launched []browser.Kind
	opts     []browser.LaunchOptions
}

func (f *fakeBrowserFactory) Launch(_ context.Context, kind browser.Kind, opts browser.LaunchOptions) (browser.Driver, error) {
	f.launched = append(f.launched, kind)
	f.opts = append(f.opts, opts)
	return f.driver, nil
}

type fakeResolver struct {
	secrets map[string]string
	calls   []string
}

func (r *fakeResolver) Resolve(_ context.Context, credentialId, _ string) (string, error) {
	r.calls = append(r.calls, credentialId)
	v, ok := r.secrets[credentialId]
	if !ok {
		return "", flowerrors.NewNotFound("Credential", credentialId)
	}
	return v, nil
}

type httpCall struct {
	url     string
	body    interface{}
	headers []string
}

type fakeHTTP struct {
	calls  []httpCall
	result *httpclient.Result
	err    error
}

func (f *fakeHTTP) Get(url string, headers ...string) (*httpclient.Result, error) {
	return f.record(url, nil, headers)
}

func (f *fakeHTTP) Post(url string, body interface{}, headers ...string) (*httpclient.Result, error) {
	return f.record(url, body, headers)
}

func (f *fakeHTTP) Put(url string, body interface{}, headers ...string) (*httpclient.Result, error) {
	return f.record(url, body, headers)
}

func (f *fakeHTTP) Delete(url string, headers ...string) (*httpclient.Result, error) {
	return f.record(url, nil, headers)
}

func (f *fakeHTTP) Do(req *http.Request) (*httpclient.Result, error) {
	return f.record(req.URL.String(), nil, nil)
}

func (f *fakeHTTP) record(url string, body interface{}, headers []string) (*httpclient.Result, error) {
	f.calls = append(f.calls, httpCall{url: url, body: body, headers: headers})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &httpclient.Result{StatusCode: 200, Body: []byte(`{}`)}, nil
}

type fakeLLM struct {
	response string
	prompts  []string
}

func (f *fakeLLM) Chat(_ context.Context, systemPrompt string, userMessages ...string) (string, error) {
	f.prompts = append(append(f.prompts, systemPrompt), userMessages...)
	return f.response, nil
}

func fakeLLMFactory(c llm.Client) llm.Factory {
	return func(apiKey string) (llm.Client, error) {
		if apiKey == "" {
			return nil, flowerrors.NewBadRequest("API key cannot be empty")
		}
		return c, nil
	}
}

// testNode builds a node of one type with literal inputs.
func testNode(id, nodeType string, inputs map[string]interface{}) v1.Node {
	if inputs == nil {
		inputs = map[string]interface{}{}
	}
	return v1.Node{Id: id, Data: v1.NodeData{Type: nodeType, Inputs: inputs}}
}

// testEnv builds an environment with one bound phase per node.
func testEnv(nodes ...v1.Node) *Environment {
	env := NewEnvironment("execution-1", "user-1")
	for _, node := range nodes {
		env.BindPhase(node.Id+"-phase", node)
	}
	return env
}
