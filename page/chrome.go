package page

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

const scrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight)`

// ChromePage is a tab of a running Chrome instance, reached over the DevTools
// protocol. The tab is rendered by the browser; nothing here navigates or
// fetches.
type ChromePage struct {
	tab    context.Context
	cancel context.CancelFunc
}

// AttachChrome connects to the DevTools websocket endpoint of a running
// browser and attaches to the first page tab whose address satisfies match.
// A nil match accepts the first page tab.
func AttachChrome(ctx context.Context, devtoolsURL string, match func(address string) bool) (*ChromePage, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, devtoolsURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	targets, err := chromedp.Targets(browserCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to list browser tabs: %w", err)
	}

	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if match != nil && !match(t.URL) {
			continue
		}

		tabCtx, cancelTab := chromedp.NewContext(browserCtx, chromedp.WithTargetID(t.TargetID))
		if err := chromedp.Run(tabCtx); err != nil {
			cancelTab()
			cancel()
			return nil, fmt.Errorf("failed to attach to tab %s: %w", t.URL, err)
		}

		return &ChromePage{
			tab: tabCtx,
			cancel: func() {
				cancelTab()
				cancel()
			},
		}, nil
	}

	cancel()
	return nil, fmt.Errorf("no matching browser tab found")
}

// Close detaches from the browser.
func (p *ChromePage) Close() {
	p.cancel()
}

func (p *ChromePage) Address(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read tab address: %w", err)
	}
	return location, nil
}

func (p *ChromePage) Document(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to read tab DOM: %w", err)
	}
	return parse([]byte(html))
}

func (p *ChromePage) ScrollToBottom(ctx context.Context) error {
	if err := p.run(ctx, chromedp.Evaluate(scrollToBottomScript, nil)); err != nil {
		return fmt.Errorf("failed to scroll tab: %w", err)
	}
	return nil
}

// run executes actions in the tab, aborting when either ctx or the tab
// context ends.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}
