// Package location turns host and path settings into sitemap file paths and
// public URLs.
package location

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ErrHostRequired is returned when a URL is requested before a host is set.
var ErrHostRequired = errors.New("default host required to resolve sitemap URL")

// Resolved is the result of resolving a set of location settings.
type Resolved struct {
	Directory string // filesystem directory the file is written to
	Path      string // filesystem path of the file
	URL       string // public URL of the file
}

// Resolve computes where a file lives on disk and where it is served from.
// The host is only checked here, so it may be set any time before the first call.
func Resolve(host, publicPath, sitemapsPath, filename string) (Resolved, error) {
	dir := Directory(publicPath, sitemapsPath)
	res := Resolved{
		Directory: dir,
		Path:      filepath.Join(dir, filename),
	}
	u, err := URL(host, sitemapsPath, filename)
	if err != nil {
		return res, err
	}
	res.URL = u
	return res, nil
}

// Directory joins the public path with the sitemaps path. An empty sitemaps
// path leaves the public path as the directory.
func Directory(publicPath, sitemapsPath string) string {
	return filepath.Join(publicPath, filepath.FromSlash(sitemapsPath))
}

// URL joins the host, the sitemaps path and the filename.
func URL(host, sitemapsPath, filename string) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", ErrHostRequired
	}
	base, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parsing host %q: %w", host, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("host %q must be an absolute URL: %w", host, ErrHostRequired)
	}

	rel := path.Join(strings.TrimPrefix(sitemapsPath, "/"), filename)
	if filename == "" && sitemapsPath != "" && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if strings.HasPrefix(sitemapsPath, "/") {
		base.Path = "/"
	}
	return base.JoinPath(rel).String(), nil
}

// Location holds the settings a sitemap file resolves against. Every
// accessor recomputes from the current fields, so changing a field is
// visible on the next call.
type Location struct {
	Host         string
	PublicPath   string
	SitemapsPath string
	Filename     string
}

// Clone returns an independent copy.
func (l *Location) Clone() *Location {
	c := *l
	return &c
}

// Directory returns the directory the file is written to.
func (l *Location) Directory() string {
	return Directory(l.PublicPath, l.SitemapsPath)
}

// Path returns the filesystem path of the file.
func (l *Location) Path() string {
	return filepath.Join(l.Directory(), l.Filename)
}

// PathInPublic returns the file path relative to the public path, slash separated.
func (l *Location) PathInPublic() string {
	return path.Join(strings.TrimPrefix(l.SitemapsPath, "/"), l.Filename)
}

// URL returns the public URL of the file.
func (l *Location) URL() (string, error) {
	return URL(l.Host, l.SitemapsPath, l.Filename)
}

// Resolve resolves all fields at once.
func (l *Location) Resolve() (Resolved, error) {
	return Resolve(l.Host, l.PublicPath, l.SitemapsPath, l.Filename)
}
