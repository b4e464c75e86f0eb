// Package browser owns the headless Chrome session used for crawling.
// Listing sites assemble their markup with client-side script, so a plain
// HTTP fetch returns an empty shell; pages are rendered in a real engine
// and the settled DOM is snapshotted as HTML for extraction.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	ChromePath string
	UserAgent  string
}

// RenderOptions tunes one page render. Scroll count is fixed per source:
// infinite-scroll pages expose no reliable "loaded enough" signal, so a
// hand-tuned number of increments stands in for one.
type RenderOptions struct {
	Timeout      time.Duration
	Scrolls      int
	ScrollPause  time.Duration
	SettlePause  time.Duration
	WaitSelector string
}

// Browser wraps a shared Chrome allocator. Each Render call runs in its own
// tab which is always closed before returning, on every path.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

func New(cfg *Config) *Browser {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(ua),
		chromedp.WindowSize(1920, 1080),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Browser{allocCtx: allocCtx, cancel: cancel}
}

// Close releases the allocator and any Chrome process it spawned.
func (b *Browser) Close() {
	b.cancel()
}

// Render navigates to url, waits for the page to settle, performs the
// configured scroll increments to trigger lazy loading, and returns the
// rendered document HTML.
func (b *Browser) Render(ctx context.Context, url string, opts RenderOptions) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	if opts.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, opts.Timeout)
		defer cancelTimeout()
	}

	// Propagate caller cancellation into the tab.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	wait := opts.WaitSelector
	if wait == "" {
		wait = "body"
	}

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady(wait, chromedp.ByQuery),
		chromedp.Sleep(opts.SettlePause),
	}
	for i := 0; i < opts.Scrolls; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
			chromedp.Sleep(opts.ScrollPause),
		)
	}

	var html string
	actions = append(actions,
		chromedp.Sleep(opts.SettlePause),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}
