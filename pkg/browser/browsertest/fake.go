// Package browsertest provides a scriptable in-memory browser.Page for tests.
package browsertest

import (
	"fmt"
	"sync"

	"pageverify/pkg/browser"
)

// Element describes what the fake page reports for one selector
type Element struct {
	Count   int
	Text    string
	Attrs   map[string]string
	Visible bool
	// OnClick runs after a successful click, e.g. to flip page state.
	OnClick func(p *FakePage)
}

// PNG is the payload returned by Screenshot unless overridden
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// FakePage is a browser.Page backed by a selector map
type FakePage struct {
	mu sync.Mutex

	Elements      map[string]*Element
	NavigateErr   error
	ScreenshotErr error
	Image         []byte

	Navigated   []string
	Clicks      []string
	Scrolls     []string
	Screenshots int
	Closed      bool
}

var _ browser.Page = (*FakePage)(nil)

// New returns a fake page with the given elements
func New(elements map[string]*Element) *FakePage {
	if elements == nil {
		elements = make(map[string]*Element)
	}
	return &FakePage{Elements: elements, Image: PNG}
}

// Set replaces the element reported for selector
func (p *FakePage) Set(selector string, el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Elements[selector] = el
}

func (p *FakePage) lookup(selector string) (*Element, error) {
	el, ok := p.Elements[selector]
	if !ok || el.Count == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoMatch, selector)
	}
	return el, nil
}

func (p *FakePage) Navigate(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.Navigated = append(p.Navigated, url)
	return nil
}

func (p *FakePage) Count(selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.Elements[selector]; ok {
		return el.Count, nil
	}
	return 0, nil
}

func (p *FakePage) Text(selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(selector)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (p *FakePage) Attribute(selector, name string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, err := p.lookup(selector)
	if err != nil {
		return "", false, err
	}
	v, ok := el.Attrs[name]
	return v, ok, nil
}

func (p *FakePage) Visible(selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.Elements[selector]
	return ok && el.Count > 0 && el.Visible, nil
}

func (p *FakePage) ScrollIntoView(selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.lookup(selector); err != nil {
		return err
	}
	p.Scrolls = append(p.Scrolls, selector)
	return nil
}

func (p *FakePage) Click(selector string) error {
	p.mu.Lock()
	el, err := p.lookup(selector)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.Clicks = append(p.Clicks, selector)
	onClick := el.OnClick
	p.mu.Unlock()

	if onClick != nil {
		onClick(p)
	}
	return nil
}

func (p *FakePage) Screenshot(bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.Screenshots++
	return p.Image, nil
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Portfolio returns a fake page shaped like the portfolio document: LinkedIn link,
// both meta tags, the experience section, and a visible desktop theme toggle.
func Portfolio() *FakePage {
	return New(map[string]*Element{
		"#contact .contact-info-container a[href*='linkedin.com']": {
			Count: 1, Text: "LinkedIn Profile", Visible: true,
			Attrs: map[string]string{"href": "https://www.linkedin.com/in/someone"},
		},
		`meta[name="description"]`: {Count: 1, Attrs: map[string]string{"content": "Portfolio of a developer"}},
		`meta[name="keywords"]`:    {Count: 1, Attrs: map[string]string{"content": "go, web, portfolio"}},
		"#experience":              {Count: 1, Visible: true},
		"#theme-btn-desktop":       {Count: 1, Visible: true},
		"#theme-btn-mobile":        {Count: 1, Visible: false},
	})
}
