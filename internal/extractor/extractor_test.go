package extractor

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":            {Data: []byte("<html></html>")},
		"about.html":            {Data: []byte("<html></html>")},
		"404.html":              {Data: []byte("<html></html>")},
		"docs/index.html":       {Data: []byte("<html></html>")},
		"docs/guide/intro.html": {Data: []byte("<html></html>")},
		"drafts/wip.html":       {Data: []byte("<html></html>")},
		"assets/app.css":        {Data: []byte("body{}")},
	}

	got, err := Discover(fsys, "", []string{"drafts/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"about.html", "docs/guide/intro.html", "docs/index.html", "index.html"}, got)

	got, err = Discover(fsys, "docs/**/*.html", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide/intro.html", "docs/index.html"}, got)

	_, err = Discover(fsys, "[", nil)
	assert.Error(t, err)
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"index.html", "/"},
		{"about.html", "/about.html"},
		{"docs/index.html", "/docs/"},
		{"docs/guide/intro.html", "/docs/guide/intro.html"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, PagePath(tt.rel))
		})
	}
}

func TestExtract(t *testing.T) {
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`<html><head>
<link rel="alternate" hreflang="de" href="http://one.com/de/guide/">
<link rel="alternate" type="application/rss+xml" href="/feed.xml">
<meta property="article:modified_time" content="2024-05-06T07:08:09Z">
</head><body>
<img src="diagram.png" alt=" Flow diagram ">
<img src="/static/logo.png" title="Logo">
<img src="diagram.png">
<img src="data:image/png;base64,AAAA">
</body></html>`)

	page, ok, err := Extract(body, "/docs/guide/", mod)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "/docs/guide/", page.Path)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), page.LastMod.UTC())

	require.Len(t, page.Alternates, 1, "only hreflang alternates are kept")
	assert.Equal(t, "de", page.Alternates[0].Lang)
	assert.Equal(t, "http://one.com/de/guide/", page.Alternates[0].Href)

	require.Len(t, page.Images, 2)
	assert.Equal(t, "/docs/guide/diagram.png", page.Images[0].Loc)
	assert.Equal(t, "Flow diagram", page.Images[0].Caption)
	assert.Equal(t, "/static/logo.png", page.Images[1].Loc)
	assert.Equal(t, "Logo", page.Images[1].Title)
}

func TestExtractCanonical(t *testing.T) {
	body := []byte(`<html><head><link rel="canonical" href="http://one.com/guide"></head><body></body></html>`)
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	page, ok, err := Extract(body, "/guide.html", mod)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "http://one.com/guide", page.Path)
	assert.Equal(t, mod, page.LastMod, "the file time is used without a modified meta tag")
}

func TestExtractNoindex(t *testing.T) {
	body := []byte(`<html><head><meta name="robots" content="NOINDEX, follow"></head></html>`)
	_, ok, err := Extract(body, "/private.html", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}
