package extractor

import (
	"bytes"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

// DefaultPattern matches every HTML page under the public directory.
const DefaultPattern = "**/*.html"

// defaultExcludes are never listed: error pages and verification stubs.
var defaultExcludes = []string{
	"404.html",
	"500.html",
	"**/404.html",
	"google*.html",
}

// modifiedSelectors are meta tags tried, in order, for the page's last
// modification time. The file's mtime is used when none parses.
var modifiedSelectors = []string{
	`meta[property="article:modified_time"]`,
	`meta[property="og:updated_time"]`,
	`meta[name="last-modified"]`,
}

// Discover returns the slash-separated paths in fsys matching pattern and
// none of the exclude patterns, sorted.
func Discover(fsys fs.FS, pattern string, excludes []string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid scan pattern %q", pattern)
	}
	all := append(append([]string{}, defaultExcludes...), excludes...)
	for _, ex := range all {
		if !doublestar.ValidatePattern(ex) {
			return nil, fmt.Errorf("invalid exclude pattern %q", ex)
		}
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range matches {
		if excluded(m, all) {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// PagePath maps a file path relative to the public directory to the URL path
// it is served at. index.html is served as its directory.
func PagePath(rel string) string {
	p := "/" + strings.TrimPrefix(path.Clean("/"+rel), "/")
	if path.Base(p) == "index.html" {
		dir := path.Dir(p)
		if dir == "/" {
			return "/"
		}
		return dir + "/"
	}
	return p
}

// Extract parses an HTML page served at pagePath and returns its sitemap
// entry. ok is false for pages that ask not to be indexed.
func Extract(htmlBody []byte, pagePath string, modTime time.Time) (page sitemap.Page, ok bool, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return sitemap.Page{}, false, err
	}

	if noindex(doc) {
		return sitemap.Page{}, false, nil
	}

	page = sitemap.Page{Path: pagePath, LastMod: modTime}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		page.Path = strings.TrimSpace(href)
	}

	if t, ok := lastModified(doc); ok {
		page.LastMod = t
	}

	doc.Find(`link[rel="alternate"][hreflang]`).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		page.Alternates = append(page.Alternates, sitemap.Alternate{
			Href:  href,
			Lang:  s.AttrOr("hreflang", ""),
			Media: s.AttrOr("media", ""),
		})
	})

	base, _ := url.Parse(pagePath)
	seen := make(map[string]bool)
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(page.Images) >= sitemap.MaxImagesPerURL {
			return false
		}
		loc := imageLoc(base, s.AttrOr("src", ""))
		if loc == "" || seen[loc] {
			return true
		}
		seen[loc] = true
		page.Images = append(page.Images, sitemap.Image{
			Loc:     loc,
			Caption: strings.TrimSpace(s.AttrOr("alt", "")),
			Title:   strings.TrimSpace(s.AttrOr("title", "")),
		})
		return true
	})

	return page, true, nil
}

func noindex(doc *goquery.Document) bool {
	found := false
	doc.Find(`meta[name="robots"], meta[name="googlebot"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.AttrOr("content", "")), "noindex") {
			found = true
			return false
		}
		return true
	})
	return found
}

func lastModified(doc *goquery.Document) (time.Time, bool) {
	for _, sel := range modifiedSelectors {
		v := strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
		if v == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// imageLoc resolves src against the page path. Inline data URIs are skipped.
func imageLoc(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if ref.IsAbs() || base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
