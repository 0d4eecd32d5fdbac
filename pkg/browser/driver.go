/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package browser

import (
	"context"
	"time"
)

// Kind selects the browser flavor a launch node asked for.
type Kind string

const (
	KindStandard   Kind = "standard"
	KindStealth    Kind = "stealth"
	KindBrightData Kind = "bright_data"
)

// Visibility states accepted by WaitForSelector.
const (
	VisibilityVisible = "visible"
	VisibilityHidden  = "hidden"
)

// LaunchOptions carries per-launch parameters. Credentials apply only to
// remote proxy browsers and are held transiently, never logged.
type LaunchOptions struct {
	Username string
	Password string
}

// Driver is one live browser with a single current page. All operations
// act on that page; drivers are owned by one execution and never shared.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	WaitForSelector(ctx context.Context, selector, visibility string, timeout time.Duration) error
	Content(ctx context.Context) (string, error)
	Close() error
}

// Factory launches drivers. The chromedp factory is the production
// implementation; tests substitute a scripted fake.
type Factory interface {
	Launch(ctx context.Context, kind Kind, opts LaunchOptions) (Driver, error)
}
