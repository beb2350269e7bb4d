package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

const siteYAML = `
default_host: http://one.com
sitemaps_path: sitemaps/
include_index: false
search_engines:
  example: http://search.test/ping?sitemap=%s
pages:
  - path: /about
    changefreq: weekly
    priority: 0.8
    lastmod: 2024-01-02T03:04:05Z
  - path: /gallery
    images:
      - loc: /img/a.png
        caption: A
groups:
  - filename: news
    pages:
      - path: /news/1
        news:
          publication_name: One
          publication_language: en
          title: First
          publication_date: 2024-01-02T00:00:00Z
    groups:
      - sitemaps_path: archive/
        pages:
          - path: /news/old
`

func validConfig() Config {
	return Config{
		Filename:    "sitemap",
		MaxLinks:    50000,
		MaxBytes:    10 << 20,
		Concurrency: 1,
	}
}

func TestLoadSite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(siteYAML), 0644))

	site, err := LoadSite(path)
	require.NoError(t, err)

	assert.Equal(t, "http://one.com", site.DefaultHost)
	require.NotNil(t, site.IncludeIndex)
	assert.False(t, *site.IncludeIndex)
	assert.Nil(t, site.IncludeRoot)

	require.Len(t, site.Pages, 2)
	assert.Equal(t, sitemap.Weekly, site.Pages[0].ChangeFreq)
	require.NotNil(t, site.Pages[0].Priority)
	assert.InDelta(t, 0.8, *site.Pages[0].Priority, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), site.Pages[0].LastMod.UTC())
	require.Len(t, site.Pages[1].Images, 1)

	require.Len(t, site.Groups, 1)
	g := site.Groups[0]
	assert.Equal(t, "news", g.Filename)
	require.NotNil(t, g.Pages[0].News)
	assert.Equal(t, "One", g.Pages[0].News.PublicationName)
	require.Len(t, g.Groups, 1)
	assert.Equal(t, "archive/", g.Groups[0].SitemapsPath)
}

func TestParseSiteUnknownField(t *testing.T) {
	_, err := ParseSite([]byte("default_host: http://one.com\nhots: typo\n"))
	assert.Error(t, err)
}

func TestParseSiteEmpty(t *testing.T) {
	site, err := ParseSite(nil)
	require.NoError(t, err)
	assert.Empty(t, site.Pages)
}

func TestLoadSiteMissing(t *testing.T) {
	_, err := LoadSite(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	site, err := ParseSite([]byte(siteYAML))
	require.NoError(t, err)

	cfg := validConfig()
	cfg.DefaultHost = "http://flag.com"
	cfg.IncludeRoot = true
	cfg.IncludeIndex = true

	changed := map[string]bool{"host": true}
	cfg.Apply(site, func(flag string) bool { return changed[flag] })

	assert.Equal(t, "http://flag.com", cfg.DefaultHost, "explicit flags win")
	assert.Equal(t, "sitemaps/", cfg.SitemapsPath)
	assert.True(t, cfg.IncludeRoot, "unset in the file")
	assert.False(t, cfg.IncludeIndex)
	assert.Equal(t, "sitemap", cfg.Filename)
	assert.Equal(t, map[string]string{"example": "http://search.test/ping?sitemap=%s"}, cfg.SearchEngines())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty filename", mutate: func(c *Config) { c.Filename = " " }, wantErr: true},
		{name: "filename with separator", mutate: func(c *Config) { c.Filename = "a/b" }, wantErr: true},
		{name: "zero max links", mutate: func(c *Config) { c.MaxLinks = 0 }, wantErr: true},
		{name: "negative max bytes", mutate: func(c *Config) { c.MaxBytes = -1 }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Concurrency = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.PingTimeout = -time.Second }, wantErr: true},
		{
			name: "engine without placeholder",
			mutate: func(c *Config) {
				c.Site = &Site{SearchEngines: map[string]string{"bad": "http://search.test/ping"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
