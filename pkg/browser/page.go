// Package browser abstracts the page a verification plan runs against.
// ChromeSession drives a real headless Chrome through chromedp; StaticPage parses the
// document with goquery for runs where no browser is available.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

var (
	// ErrNotSupported is returned by engines that cannot perform an operation (e.g. a
	// static page asked for a screenshot).
	ErrNotSupported = errors.New("operation not supported by this page engine")

	// ErrNoMatch is returned when a selector matches no element.
	ErrNoMatch = errors.New("no element matches selector")
)

// Page is a single loaded document. Selectors are CSS selectors; operations that read
// one element act on the first match in document order.
type Page interface {
	Navigate(url string) error
	Count(selector string) (int, error)
	Text(selector string) (string, error)
	Attribute(selector, name string) (value string, ok bool, err error)
	Visible(selector string) (bool, error)
	ScrollIntoView(selector string) error
	Click(selector string) error
	Screenshot(fullPage bool) ([]byte, error)
	Close() error
}

// FileURL resolves path against the working directory and returns it as a file:// URL
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve '%s': %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

func noMatch(selector string) error {
	return fmt.Errorf("%w: %s", ErrNoMatch, selector)
}
