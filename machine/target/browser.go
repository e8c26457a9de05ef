package target

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/statewalk/statewalk/machine"
)

// Browser drives a headless Chrome session via the DevTools protocol.
//
// Each Browser owns its own allocator and tab, so parallel scenarios get
// fully isolated browser state (separate cookies, storage and history).
// The chromedp context lives inside the handle; methods run against it
// directly rather than taking a caller context, because DevTools commands
// must execute on the tab's own context.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewBrowser launches a headless Chrome instance and opens one tab.
// Extra allocator options (chromedp.Flag, chromedp.ExecPath, ...) are
// appended to chromedp's defaults, which already include headless mode.
func NewBrowser(ctx context.Context, opts ...chromedp.ExecAllocatorOption) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], opts...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so factory errors surface
	// before the scenario's first action.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Browser{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// BrowserFactory returns a machine.TargetFactory launching one private
// Chrome instance per scenario.
//
//	report, err := m.Run(ctx, machine.WithTargets(target.BrowserFactory()))
func BrowserFactory(opts ...chromedp.ExecAllocatorOption) machine.TargetFactory {
	return func(ctx context.Context) (machine.Target, error) {
		return NewBrowser(ctx, opts...)
	}
}

// Navigate loads the URL and waits for the page to stabilize.
func (b *Browser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// Click clicks the first visible element matching the CSS selector.
func (b *Browser) Click(selector string) error {
	return chromedp.Run(b.ctx, chromedp.Click(selector, chromedp.NodeVisible))
}

// SendKeys types value into the first element matching the CSS selector.
func (b *Browser) SendKeys(selector, value string) error {
	return chromedp.Run(b.ctx, chromedp.SendKeys(selector, value, chromedp.NodeVisible))
}

// WaitVisible blocks until an element matching the CSS selector is visible.
func (b *Browser) WaitVisible(selector string) error {
	return chromedp.Run(b.ctx, chromedp.WaitVisible(selector))
}

// Text returns the text content of the first element matching the CSS
// selector.
func (b *Browser) Text(selector string) (string, error) {
	var text string
	if err := chromedp.Run(b.ctx, chromedp.Text(selector, &text, chromedp.NodeVisible)); err != nil {
		return "", err
	}
	return text, nil
}

// Title returns the current page title.
func (b *Browser) Title() (string, error) {
	var title string
	if err := chromedp.Run(b.ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Location returns the current page URL.
func (b *Browser) Location() (string, error) {
	var loc string
	if err := chromedp.Run(b.ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// SetHeaders attaches extra HTTP headers to every request the tab issues,
// for auth tokens or host routing during tests.
func (b *Browser) SetHeaders(headers map[string]any) error {
	return chromedp.Run(b.ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(headers)),
	)
}

// Close shuts the tab and the browser process down.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}
