package browser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"
)

// StaticPage evaluates selectors against the parsed HTML source without running
// scripts or styles. Text is the element's text content with surrounding whitespace
// trimmed; visibility only honours the hidden attribute and inline styles.
type StaticPage struct {
	fs  afero.Fs
	doc *goquery.Document
}

// NewStaticPage returns a page that reads documents from fs
func NewStaticPage(fs afero.Fs) *StaticPage {
	return &StaticPage{fs: fs}
}

// Navigate parses the document at a file:// URL or plain path
func (p *StaticPage) Navigate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url '%s': %w", rawURL, err)
	}

	path := rawURL
	switch u.Scheme {
	case "file":
		path = u.Path
	case "":
	default:
		return fmt.Errorf("%w: static page cannot load %s URLs", ErrNotSupported, u.Scheme)
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	p.doc = doc
	return nil
}

func (p *StaticPage) find(selector string) (*goquery.Selection, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	return p.doc.Find(selector), nil
}

func (p *StaticPage) first(selector string) (*goquery.Selection, error) {
	sel, err := p.find(selector)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, noMatch(selector)
	}
	return sel.First(), nil
}

func (p *StaticPage) Count(selector string) (int, error) {
	sel, err := p.find(selector)
	if err != nil {
		return 0, err
	}
	return sel.Length(), nil
}

func (p *StaticPage) Text(selector string) (string, error) {
	sel, err := p.first(selector)
	if err != nil {
		return "", err
	}
	// whitespace collapses the way innerText renders it
	return strings.Join(strings.Fields(sel.Text()), " "), nil
}

func (p *StaticPage) Attribute(selector, name string) (string, bool, error) {
	sel, err := p.first(selector)
	if err != nil {
		return "", false, err
	}
	value, ok := sel.Attr(name)
	return value, ok, nil
}

func (p *StaticPage) Visible(selector string) (bool, error) {
	sel, err := p.find(selector)
	if err != nil {
		return false, err
	}
	if sel.Length() == 0 {
		return false, nil
	}

	el := sel.First()
	if el.Closest("head").Length() > 0 {
		return false, nil
	}
	for s := el; s.Length() > 0; s = s.Parent() {
		if isHidden(s) {
			return false, nil
		}
	}
	return true, nil
}

func isHidden(s *goquery.Selection) bool {
	if _, ok := s.Attr("hidden"); ok {
		return true
	}
	style, ok := s.Attr("style")
	if !ok {
		return false
	}
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

// ScrollIntoView only verifies the element exists; there is no viewport
func (p *StaticPage) ScrollIntoView(selector string) error {
	_, err := p.first(selector)
	return err
}

func (p *StaticPage) Click(selector string) error {
	return fmt.Errorf("%w: click on '%s'", ErrNotSupported, selector)
}

func (p *StaticPage) Screenshot(bool) ([]byte, error) {
	return nil, fmt.Errorf("%w: screenshot", ErrNotSupported)
}

func (p *StaticPage) Close() error {
	p.doc = nil
	return nil
}
