package builder

import (
	"fmt"
	"time"

	"github.com/Devon-White/sitemapgen/internal/location"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

// IndexFile is a <sitemapindex> document referencing finalized sitemap files.
type IndexFile struct {
	file
}

// NewIndexFile returns an empty, open index. The location's filename is used as is.
func NewIndexFile(loc *location.Location, sink Sink, limits Limits) *IndexFile {
	return &IndexFile{file: newFile(loc, sink, limits, sitemap.IndexOpen, sitemap.IndexClose)}
}

// Add references s in the index, finalizing s first if needed.
func (x *IndexFile) Add(s *SitemapFile) error {
	if x.finalized {
		return ErrFinalized
	}
	if err := s.Finalize(); err != nil {
		return err
	}
	u, err := s.URL()
	if err != nil {
		return err
	}
	return x.AddURL(u, s.LastMod())
}

// AddURL references a sitemap by its public URL.
func (x *IndexFile) AddURL(loc string, lastMod time.Time) error {
	entry := sitemap.Sitemap{Loc: loc}
	if !lastMod.IsZero() {
		entry.LastMod = sitemap.FormatTime(lastMod)
	}
	b, err := sitemap.Marshal(entry)
	if err != nil {
		return err
	}
	if err := x.add(b); err != nil {
		return fmt.Errorf("adding %s to index: %w", loc, err)
	}
	return nil
}

// Finalize writes the index to its sink. Calling it again is a no-op.
func (x *IndexFile) Finalize() error { return x.finalize() }

// Location returns the index location.
func (x *IndexFile) Location() *location.Location { return x.location }

// URL returns the public URL of the index.
func (x *IndexFile) URL() (string, error) { return x.location.URL() }

// Finalized reports whether the index was written.
func (x *IndexFile) Finalized() bool { return x.finalized }

// Empty reports whether the index references no sitemaps.
func (x *IndexFile) Empty() bool { return x.links == 0 }

// LinkCount returns the number of referenced sitemaps.
func (x *IndexFile) LinkCount() int { return x.links }

// LastMod returns the time the index was finalized.
func (x *IndexFile) LastMod() time.Time { return x.finalizedAt }

// Summary describes the index.
func (x *IndexFile) Summary() Summary { return x.summary("sitemaps") }
