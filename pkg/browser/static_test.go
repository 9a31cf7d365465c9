package browser

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portfolioHTML = `<!DOCTYPE html>
<html>
<head>
  <meta name="description" content="Portfolio of a developer">
  <meta name="keywords" content="go, web">
</head>
<body>
  <nav>
    <button id="theme-btn-desktop" class="theme-btn">moon</button>
    <div style="display: none"><button id="theme-btn-mobile" class="theme-btn">moon</button></div>
  </nav>
  <section id="profile"><a href="https://www.linkedin.com/in/someone"><img src="linkedin.png"></a></section>
  <section id="experience" hidden><h2>Experience</h2></section>
  <section id="contact">
    <div class="contact-info-container">
      <a href="https://www.linkedin.com/in/someone">
        LinkedIn Profile
      </a>
    </div>
  </section>
</body>
</html>`

func loadStatic(t *testing.T, html string) *StaticPage {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/index.html", []byte(html), 0644))
	p := NewStaticPage(fs)
	require.NoError(t, p.Navigate("file:///site/index.html"))
	return p
}

func TestStaticPageQueries(t *testing.T) {
	p := loadStatic(t, portfolioHTML)

	n, err := p.Count("a[href*='linkedin.com']")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text, err := p.Text("#contact .contact-info-container a[href*='linkedin.com']")
	require.NoError(t, err)
	assert.Equal(t, "LinkedIn Profile", text)

	v, ok, err := p.Attribute(`meta[name="keywords"]`, "content")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "go, web", v)

	_, ok, err = p.Attribute(`meta[name="keywords"]`, "lang")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Text("#missing")
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestStaticPageTextCollapsesWhitespace(t *testing.T) {
	p := loadStatic(t, `<html><body><div id="contact">
  <a href="https://www.linkedin.com/in/someone">LinkedIn
            Profile</a>
  <p id="tabs">	Open	to
  work </p>
</div></body></html>`)

	text, err := p.Text("#contact a[href*='linkedin.com']")
	require.NoError(t, err)
	assert.Equal(t, "LinkedIn Profile", text)

	text, err = p.Text("#tabs")
	require.NoError(t, err)
	assert.Equal(t, "Open to work", text)
}

func TestStaticPageVisibility(t *testing.T) {
	p := loadStatic(t, portfolioHTML)

	tests := []struct {
		selector string
		want     bool
	}{
		{"#theme-btn-desktop", true},
		{"#theme-btn-mobile", false},
		{"#experience h2", false},
		{`meta[name="description"]`, false},
		{"#nope", false},
	}
	for _, tt := range tests {
		got, err := p.Visible(tt.selector)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.selector)
	}
}

func TestStaticPageUnsupportedOperations(t *testing.T) {
	p := loadStatic(t, portfolioHTML)

	assert.ErrorIs(t, p.Click("#theme-btn-desktop"), ErrNotSupported)
	_, err := p.Screenshot(false)
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.ErrorIs(t, p.Navigate("https://example.com"), ErrNotSupported)
}

func TestStaticPageNavigateMissingFile(t *testing.T) {
	p := NewStaticPage(afero.NewMemMapFs())
	err := p.Navigate("file:///site/index.html")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "navigation to"))

	_, err = p.Count("a")
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	u, err := FileURL("index.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, "/index.html"))
}
