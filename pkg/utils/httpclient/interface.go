/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package httpclient

import "net/http"

// Interface is the HTTP client surface used by delivery nodes and webhook
// dispatch. A fake implementation backs the executor tests.
type Interface interface {
	Get(url string, headers ...string) (*Result, error)
	Post(url string, body interface{}, headers ...string) (*Result, error)
	Put(url string, body interface{}, headers ...string) (*Result, error)
	Delete(url string, headers ...string) (*Result, error)
	Do(req *http.Request) (*Result, error)
}
