package builder

import (
	"fmt"
	"time"

	"github.com/Devon-White/sitemapgen/internal/location"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

// Namer hands out sequential sitemap file numbers for one base filename.
// Files sharing a Namer never collide.
type Namer struct {
	base string
	last int
}

// NewNamer returns a Namer whose first file is <base>1.xml.gz.
func NewNamer(base string) *Namer {
	return &Namer{base: base}
}

// Base returns the base filename.
func (n *Namer) Base() string { return n.base }

// Peek returns the number the next reserved file will get.
func (n *Namer) Peek() int { return n.last + 1 }

// Reserve claims the next number.
func (n *Namer) Reserve() int {
	n.last++
	return n.last
}

// Name returns the filename for number i.
func (n *Namer) Name(i int) string {
	return fmt.Sprintf("%s%d.xml.gz", n.base, i)
}

// IndexName returns the filename of the index for this base.
func (n *Namer) IndexName() string {
	return n.base + "_index.xml.gz"
}

// SitemapFile is one <urlset> document. Its number is reserved when it first
// receives a link or is finalized; until then its filename is provisional.
type SitemapFile struct {
	file
	namer  *Namer
	number int
}

// NewSitemapFile returns an empty, open sitemap file.
func NewSitemapFile(loc *location.Location, namer *Namer, sink Sink, limits Limits) *SitemapFile {
	s := &SitemapFile{
		file:  newFile(loc, sink, limits, sitemap.URLSetOpen, sitemap.URLSetClose),
		namer: namer,
	}
	s.syncFilename()
	return s
}

func (s *SitemapFile) syncFilename() {
	s.location.Filename = s.namer.Name(s.Number())
}

func (s *SitemapFile) reserve() {
	if s.number == 0 {
		s.number = s.namer.Reserve()
		s.syncFilename()
	}
}

// Number returns the file's sequence number, provisional until reserved.
func (s *SitemapFile) Number() int {
	if s.number == 0 {
		return s.namer.Peek()
	}
	return s.number
}

// Namer returns the namer the file draws its number from.
func (s *SitemapFile) Namer() *Namer { return s.namer }

// Rename moves the file to another namer. A file that already holds a
// number takes the next number of the new namer.
func (s *SitemapFile) Rename(n *Namer) {
	if s.finalized || n == s.namer {
		return
	}
	reserved := s.number != 0
	s.namer = n
	s.number = 0
	if reserved {
		s.reserve()
	}
	s.syncFilename()
}

// Location returns the file's location with its current filename.
func (s *SitemapFile) Location() *location.Location {
	if s.number == 0 && !s.finalized {
		s.syncFilename()
	}
	return s.location
}

// URL returns the public URL of the file.
func (s *SitemapFile) URL() (string, error) {
	return s.Location().URL()
}

// Add appends an entry. It returns ErrFull when the entry would push the
// file past its limits.
func (s *SitemapFile) Add(u sitemap.URL) error {
	if s.finalized {
		return ErrFinalized
	}
	b, err := sitemap.Marshal(u)
	if err != nil {
		return err
	}
	if err := s.fits(b); err != nil {
		return err
	}
	s.reserve()
	return s.add(b)
}

// Finalize writes the file to its sink. Calling it again is a no-op.
func (s *SitemapFile) Finalize() error {
	if s.finalized {
		return nil
	}
	s.reserve()
	return s.finalize()
}

// Next returns an empty file with the same location settings that takes the
// next number.
func (s *SitemapFile) Next() *SitemapFile {
	return NewSitemapFile(s.location.Clone(), s.namer, s.sink, s.limits)
}

// Finalized reports whether the file was written.
func (s *SitemapFile) Finalized() bool { return s.finalized }

// Empty reports whether the file has no links.
func (s *SitemapFile) Empty() bool { return s.links == 0 }

// LinkCount returns the number of links in the file.
func (s *SitemapFile) LinkCount() int { return s.links }

// LastMod returns the time the file was finalized.
func (s *SitemapFile) LastMod() time.Time { return s.finalizedAt }

// Summary describes the file. Size and elapsed time are final once the file
// is finalized.
func (s *SitemapFile) Summary() Summary {
	s.Location()
	return s.summary("links")
}
