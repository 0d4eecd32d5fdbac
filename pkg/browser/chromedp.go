/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"k8s.io/klog/v2"

	"github.com/Memo-Aldu/flow-builder/pkg/config"
	flowerrors "github.com/Memo-Aldu/flow-builder/pkg/errors"
)

const stealthUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type chromedpFactory struct{}

// NewFactory returns the chromedp-backed browser factory.
func NewFactory() Factory {
	return &chromedpFactory{}
}

type chromedpDriver struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// Launch starts a browser of the requested kind and returns its driver.
// Standard and stealth browsers run locally; bright_data attaches to a
// remote proxy browser over a websocket carrying the supplied credentials.
func (f *chromedpFactory) Launch(ctx context.Context, kind Kind, opts LaunchOptions) (Driver, error) {
	var cancels []context.CancelFunc
	var browserCtx context.Context

	switch kind {
	case KindStandard, KindStealth:
		allocOpts := append([]chromedp.ExecAllocatorOption{},
			chromedp.DefaultExecAllocatorOptions[:]...)
		if !config.IsBrowserHeadless() {
			allocOpts = append(allocOpts, chromedp.Flag("headless", false))
		}
		if kind == KindStealth {
			allocOpts = append(allocOpts,
				chromedp.Flag("disable-blink-features", "AutomationControlled"),
				chromedp.UserAgent(stealthUserAgent),
			)
		}
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
		cancels = append(cancels, cancelAlloc)
		browserCtx = allocCtx
	case KindBrightData:
		wsURL, err := brightDataURL(opts)
		if err != nil {
			return nil, err
		}
		allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, wsURL)
		cancels = append(cancels, cancelAlloc)
		browserCtx = allocCtx
	default:
		return nil, flowerrors.NewBadRequest(fmt.Sprintf("unknown browser kind %q", kind))
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	cancels = append(cancels, cancelTab)

	// Starts the browser process eagerly so launch failures surface here
	// rather than on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		for i := len(cancels) - 1; i >= 0; i-- {
			cancels[i]()
		}
		return nil, flowerrors.NewExecutorError(string(kind), "failed to launch browser").WithError(err)
	}
	klog.V(4).Infof("launched %s browser", kind)
	return &chromedpDriver{ctx: tabCtx, cancels: cancels}, nil
}

// brightDataURL injects the session credentials into the configured
// websocket endpoint. The resulting URL is never logged.
func brightDataURL(opts LaunchOptions) (string, error) {
	raw := config.GetBrightDataURL()
	if raw == "" {
		return "", flowerrors.NewBadRequest("bright data browser url is not configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", flowerrors.NewBadRequest("bright data browser url is malformed")
	}
	if opts.Username != "" {
		u.User = url.UserPassword(opts.Username, opts.Password)
	}
	return u.String(), nil
}

func (d *chromedpDriver) Navigate(ctx context.Context, pageURL string) error {
	if !strings.Contains(pageURL, "://") {
		pageURL = "https://" + pageURL
	}
	return d.run(ctx, chromedp.Navigate(pageURL))
}

func (d *chromedpDriver) Fill(ctx context.Context, selector, value string) error {
	return d.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (d *chromedpDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

func (d *chromedpDriver) WaitForSelector(ctx context.Context, selector, visibility string, timeout time.Duration) error {
	var action chromedp.Action
	switch visibility {
	case VisibilityHidden:
		action = chromedp.WaitNotVisible(selector, chromedp.ByQuery)
	default:
		action = chromedp.WaitVisible(selector, chromedp.ByQuery)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.run(ctx, action)
}

func (d *chromedpDriver) Content(ctx context.Context) (string, error) {
	var html string
	err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close tears down the tab and the allocator in reverse launch order.
func (d *chromedpDriver) Close() error {
	for i := len(d.cancels) - 1; i >= 0; i-- {
		d.cancels[i]()
	}
	return nil
}

// run executes actions on the driver's tab, honoring the caller's deadline.
func (d *chromedpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(d.ctx, actions...)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
