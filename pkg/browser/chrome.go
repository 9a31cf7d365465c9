package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the headless Chrome instance
type ChromeOptions struct {
	Headless bool
	Width    int
	Height   int
	ExecPath string
}

// DefaultChromeOptions returns a headless 1280x720 configuration
func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		Headless: true,
		Width:    1280,
		Height:   720,
	}
}

// ChromeSession owns a headless Chrome process and its single tab
type ChromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromeSession launches Chrome and opens a blank tab. The session lives until
// Close is called or parent is cancelled.
func NewChromeSession(parent context.Context, opts ChromeOptions) (*ChromeSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// First Run starts the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	slog.Debug("Browser launched", "headless", opts.Headless, "width", opts.Width, "height", opts.Height)

	return &ChromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Navigate loads url in the tab and waits for the load event
func (s *ChromeSession) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Count returns the number of elements matching selector without waiting for any
func (s *ChromeSession) Count(selector string) (int, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(s.ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return 0, fmt.Errorf("query '%s' failed: %w", selector, err)
	}
	return len(nodes), nil
}

// Text returns the rendered text (innerText) of the first match
func (s *ChromeSession) Text(selector string) (string, error) {
	if err := s.requireMatch(selector); err != nil {
		return "", err
	}
	var text string
	if err := chromedp.Run(s.ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading text of '%s' failed: %w", selector, err)
	}
	return text, nil
}

// Attribute returns the named attribute of the first match
func (s *ChromeSession) Attribute(selector, name string) (string, bool, error) {
	if err := s.requireMatch(selector); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	if err := chromedp.Run(s.ctx, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", false, fmt.Errorf("reading attribute '%s' of '%s' failed: %w", name, selector, err)
	}
	return value, ok, nil
}

// Visible reports whether the first match has a non-empty box and is not hidden.
// A missing element is simply not visible.
func (s *ChromeSession) Visible(selector string) (bool, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return false, err
	}
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) return false;
		const style = window.getComputedStyle(el);
		if (style.visibility === "hidden" || style.display === "none") return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	})()`, quoted)

	var visible bool
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, fmt.Errorf("visibility of '%s' failed: %w", selector, err)
	}
	return visible, nil
}

// ScrollIntoView scrolls the first match into the viewport
func (s *ChromeSession) ScrollIntoView(selector string) error {
	if err := s.requireMatch(selector); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.ScrollIntoView(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("scrolling to '%s' failed: %w", selector, err)
	}
	return nil
}

// Click performs a mouse click on the first visible match
func (s *ChromeSession) Click(selector string) error {
	if err := s.requireMatch(selector); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("clicking '%s' failed: %w", selector, err)
	}
	return nil
}

// Screenshot captures the viewport, or the whole page when fullPage is set, as PNG
func (s *ChromeSession) Screenshot(fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if fullPage {
		// quality 100 keeps the PNG encoding
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := chromedp.Run(s.ctx, action); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// Close shuts down the tab and the browser process
func (s *ChromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	if err != nil && err != context.Canceled {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	slog.Debug("Browser closed")
	return nil
}

func (s *ChromeSession) requireMatch(selector string) error {
	n, err := s.Count(selector)
	if err != nil {
		return err
	}
	if n == 0 {
		return noMatch(selector)
	}
	return nil
}
