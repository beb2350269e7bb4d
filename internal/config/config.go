package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

// Config holds all CLI options for a sitemapgen run.
type Config struct {
	SiteFile     string // optional YAML site definition
	DefaultHost  string
	SitemapsHost string
	PublicPath   string
	SitemapsPath string
	Filename     string
	IncludeRoot  bool
	IncludeIndex bool

	Scan        bool     // discover pages from HTML files under PublicPath
	ScanPattern string   // doublestar pattern, relative to PublicPath
	Exclude     []string // doublestar patterns skipped by the scan
	Concurrency int      // scan workers

	MaxLinks int
	MaxBytes int

	DryRun      bool
	Ping        bool
	PingTimeout time.Duration
	UserAgent   string
	Verbose     bool

	// Site is the parsed SiteFile, if any.
	Site *Site
}

// Site is a site definition file.
type Site struct {
	DefaultHost   string            `yaml:"default_host"`
	SitemapsHost  string            `yaml:"sitemaps_host"`
	PublicPath    string            `yaml:"public_path"`
	SitemapsPath  string            `yaml:"sitemaps_path"`
	Filename      string            `yaml:"filename"`
	IncludeRoot   *bool             `yaml:"include_root"`
	IncludeIndex  *bool             `yaml:"include_index"`
	Verbose       bool              `yaml:"verbose"`
	MaxLinks      int               `yaml:"max_links"`
	MaxBytes      int               `yaml:"max_bytes"`
	SearchEngines map[string]string `yaml:"search_engines"`
	Pages         []sitemap.Page    `yaml:"pages"`
	Groups        []Group           `yaml:"groups"`
}

// Group is a group of pages written to their own sitemap files. Empty
// settings inherit from the enclosing group or site.
type Group struct {
	DefaultHost  string         `yaml:"default_host"`
	SitemapsHost string         `yaml:"sitemaps_host"`
	SitemapsPath string         `yaml:"sitemaps_path"`
	Filename     string         `yaml:"filename"`
	PublicPath   string         `yaml:"public_path"` // not supported; warned about
	IncludeRoot  bool           `yaml:"include_root"`
	IncludeIndex bool           `yaml:"include_index"`
	Verbose      *bool          `yaml:"verbose"`
	Pages        []sitemap.Page `yaml:"pages"`
	Groups       []Group        `yaml:"groups"`
}

// LoadSite reads a site definition. Unknown keys are rejected.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site file: %w", err)
	}
	site, err := ParseSite(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return site, nil
}

// ParseSite decodes a site definition from YAML.
func ParseSite(data []byte) (*Site, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var site Site
	if err := dec.Decode(&site); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &site, nil
}

// Apply fills every setting the site file defines and the command line did
// not set explicitly. changed reports whether a flag was given.
func (c *Config) Apply(site *Site, changed func(flag string) bool) {
	c.Site = site
	set := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	set("host", &c.DefaultHost, site.DefaultHost)
	set("sitemaps-host", &c.SitemapsHost, site.SitemapsHost)
	set("public-path", &c.PublicPath, site.PublicPath)
	set("sitemaps-path", &c.SitemapsPath, site.SitemapsPath)
	set("filename", &c.Filename, site.Filename)

	if site.IncludeRoot != nil && !changed("include-root") {
		c.IncludeRoot = *site.IncludeRoot
	}
	if site.IncludeIndex != nil && !changed("include-index") {
		c.IncludeIndex = *site.IncludeIndex
	}
	if site.Verbose && !changed("verbose") {
		c.Verbose = true
	}
	if site.MaxLinks != 0 && !changed("max-links") {
		c.MaxLinks = site.MaxLinks
	}
	if site.MaxBytes != 0 && !changed("max-bytes") {
		c.MaxBytes = site.MaxBytes
	}
}

// SearchEngines returns the configured ping templates, or nil for the defaults.
func (c *Config) SearchEngines() map[string]string {
	if c.Site == nil || len(c.Site.SearchEngines) == 0 {
		return nil
	}
	return c.Site.SearchEngines
}

// Validate checks the options that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Filename) == "" {
		return errors.New("filename must not be empty")
	}
	if strings.ContainsAny(c.Filename, `/\`) {
		return fmt.Errorf("filename %q must not contain a path separator", c.Filename)
	}
	if c.MaxLinks <= 0 || c.MaxBytes <= 0 {
		return errors.New("max links and max bytes must be positive")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.PingTimeout < 0 {
		return errors.New("ping timeout must be non-negative")
	}
	for name, tmpl := range c.SearchEngines() {
		if !strings.Contains(tmpl, "%s") {
			return fmt.Errorf("search engine %q: ping URL %q has no %%s placeholder", name, tmpl)
		}
	}
	return nil
}
