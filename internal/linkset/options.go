package linkset

import (
	"log/slog"
	"os"

	"github.com/Devon-White/sitemapgen/internal/builder"
)

// DefaultFilename is the base name of sitemap files when none is configured.
const DefaultFilename = "sitemap"

// RootFunc returns the application root that the default public path is
// relative to.
type RootFunc func() (string, error)

// Options configures a top-level LinkSet.
type Options struct {
	// DefaultHost resolves relative page paths, e.g. "http://example.com".
	// It is only required once a URL is actually resolved.
	DefaultHost string
	// SitemapsHost is the host sitemap files are served from; defaults to DefaultHost.
	SitemapsHost string
	// PublicPath is the directory files are written under; defaults to <root>/public/.
	PublicPath string
	// SitemapsPath is a sub-path of PublicPath, relative or absolute within the host.
	SitemapsPath string
	// Filename is the base name: <filename>1.xml.gz and <filename>_index.xml.gz.
	Filename string

	IncludeRoot  bool // add "/" before the first page
	IncludeIndex bool // add the index URL before the first page
	Verbose      bool // log a summary for every finalized file

	// Root supplies the application root; defaults to the working directory.
	Root RootFunc
	// SitemapIndex is a caller-supplied index. It is shared, never finalized
	// and never reconfigured by the link set.
	SitemapIndex *builder.IndexFile
	// Sink receives finalized files; defaults to gzip files on disk.
	Sink builder.Sink
	// Notifier pings search engines; nil disables PingSearchEngines.
	Notifier Notifier
	// SearchEngines maps an engine name to a ping URL template containing %s.
	// Nil means DefaultSearchEngines.
	SearchEngines map[string]string
	// Limits bounds each sitemap file; zero fields take builder.DefaultLimits.
	Limits builder.Limits
	// IndexLimits bounds the index, independently of Limits. Zero fields
	// take builder.DefaultLimits.
	IndexLimits builder.Limits
	Logger *slog.Logger
}

// DefaultOptions returns the top-level defaults: filename "sitemap" with both
// the root URL and the index URL included.
func DefaultOptions() Options {
	return Options{
		Filename:     DefaultFilename,
		IncludeRoot:  true,
		IncludeIndex: true,
	}
}

// GroupOptions configures a group. Empty strings inherit the parent's value.
// IncludeRoot and IncludeIndex default to false for groups.
type GroupOptions struct {
	DefaultHost  string
	SitemapsHost string
	SitemapsPath string
	Filename     string
	IncludeRoot  bool
	IncludeIndex bool
	Verbose      *bool // nil inherits
	// PublicPath is not supported on groups. A value other than the parent's
	// is logged and ignored.
	PublicPath string
}

func workingDir() (string, error) {
	return os.Getwd()
}
