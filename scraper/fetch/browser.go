package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"hackermove/models"
	"hackermove/utils"
)

// BrowserFetcher renders pages in headless Chrome and returns the resulting
// document HTML. Each Get opens its own tab in a shared browser.
type BrowserFetcher struct {
	logger      *utils.Logger
	timeout     time.Duration
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	ChromeBin string
	UserAgent string
	Timeout   time.Duration
}

// NewBrowserFetcher starts a headless browser. Close must be called to stop it.
func NewBrowserFetcher(opts BrowserOptions, logger *utils.Logger) (*BrowserFetcher, error) {
	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so a missing binary fails here rather than on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &BrowserFetcher{
		logger:      logger,
		timeout:     timeout,
		browserCtx:  browserCtx,
		cancelAlloc: cancelAlloc,
		cancelTab:   cancelTab,
	}, nil
}

// Get navigates a new tab to url and returns the rendered HTML.
func (b *BrowserFetcher) Get(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	b.logger.Debug("[browser] Rendered %s (%d bytes)", url, len(html))
	return html, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() error {
	b.cancelTab()
	b.cancelAlloc()
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
