package builder

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Devon-White/sitemapgen/internal/location"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
	"github.com/Devon-White/sitemapgen/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocation() *location.Location {
	return &location.Location{Host: "http://test.com", PublicPath: "/public", SitemapsPath: "sitemaps/"}
}

func entry(t *testing.T, path string) sitemap.URL {
	t.Helper()
	u, err := sitemap.Build("http://test.com", sitemap.Page{Path: path})
	require.NoError(t, err)
	return u
}

func TestSitemapFileLocation(t *testing.T) {
	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), writer.NewMemorySink(), Limits{})

	u, err := s.URL()
	require.NoError(t, err)
	assert.Equal(t, "http://test.com/sitemaps/sitemap1.xml.gz", u)
	assert.Equal(t, filepath.Join("/public", "sitemaps", "sitemap1.xml.gz"), s.Location().Path())
	assert.True(t, s.Empty())
	assert.False(t, s.Finalized())
}

func TestSitemapFileCapacity(t *testing.T) {
	sink := writer.NewMemorySink()
	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), sink, Limits{MaxLinks: 3})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(entry(t, fmt.Sprintf("/p%d", i))))
	}
	assert.Equal(t, 3, s.LinkCount())

	err := s.Add(entry(t, "/p3"))
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 3, s.LinkCount())
	assert.False(t, s.Finalized(), "a full file is finalized by its owner")
}

func TestSitemapFileByteLimit(t *testing.T) {
	overhead := len(sitemap.URLSetOpen) + len(sitemap.URLSetClose)
	one, err := sitemap.Marshal(entry(t, "/a"))
	require.NoError(t, err)

	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), writer.NewMemorySink(), Limits{MaxBytes: overhead + len(one)})
	require.NoError(t, s.Add(entry(t, "/a")))
	assert.ErrorIs(t, s.Add(entry(t, "/b")), ErrFull)

	tiny := NewSitemapFile(newLocation(), NewNamer("sitemap"), writer.NewMemorySink(), Limits{MaxBytes: overhead + 1})
	assert.ErrorIs(t, tiny.Add(entry(t, "/a")), ErrEntryTooLarge)
}

func TestSitemapFileFinalize(t *testing.T) {
	sink := writer.NewMemorySink()
	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), sink, Limits{})
	require.NoError(t, s.Add(entry(t, "/")))
	require.NoError(t, s.Add(entry(t, "/about")))

	require.NoError(t, s.Finalize())
	first := s.Summary()
	require.NoError(t, s.Finalize())

	path := filepath.Join("/public", "sitemaps", "sitemap1.xml.gz")
	assert.Equal(t, 1, sink.Opens(path), "finalize writes once")
	assert.Equal(t, first, s.Summary())

	b, ok := sink.File(path)
	require.True(t, ok)
	doc := string(b)
	assert.True(t, strings.HasPrefix(doc, sitemap.URLSetOpen))
	assert.True(t, strings.HasSuffix(doc, sitemap.URLSetClose))
	assert.Equal(t, 2, strings.Count(doc, "<url>"))
	assert.Less(t, strings.Index(doc, "<loc>http://test.com/</loc>"), strings.Index(doc, "<loc>http://test.com/about</loc>"))

	assert.Equal(t, 2, first.Links)
	assert.Equal(t, int64(len(b)), first.Size)
	assert.Equal(t, "http://test.com/sitemaps/sitemap1.xml.gz", first.URL)
	assert.False(t, s.LastMod().IsZero())

	assert.ErrorIs(t, s.Add(entry(t, "/late")), ErrFinalized)
}

type failingSink struct {
	closes int
}

type failingWriter struct{ sink *failingSink }

func (w failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }
func (w failingWriter) Close() error {
	w.sink.closes++
	return nil
}

func (f *failingSink) Open(path string) (io.WriteCloser, error) {
	return failingWriter{sink: f}, nil
}

func TestSitemapFileFinalizeWriteError(t *testing.T) {
	sink := &failingSink{}
	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), sink, Limits{})
	require.NoError(t, s.Add(entry(t, "/")))

	err := s.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, sink.closes, "the writer is closed even when writing fails")
	assert.False(t, s.Finalized())
}

func TestNamerSequence(t *testing.T) {
	n := NewNamer("sitemap")
	a := NewSitemapFile(newLocation(), n, writer.NewMemorySink(), Limits{})
	b := NewSitemapFile(newLocation(), n, writer.NewMemorySink(), Limits{})

	// both are provisional until one takes a link
	assert.Equal(t, 1, a.Number())
	assert.Equal(t, 1, b.Number())

	require.NoError(t, b.Add(entry(t, "/b")))
	assert.Equal(t, 1, b.Number())
	assert.Equal(t, 2, a.Number())
	assert.Equal(t, "sitemap2.xml.gz", a.Location().Filename)

	next := b.Next()
	assert.Equal(t, 2, next.Number())
	require.NoError(t, a.Finalize())
	assert.Equal(t, 3, next.Number())
	assert.Equal(t, "sitemap_index.xml.gz", n.IndexName())
}

func TestSitemapFileRename(t *testing.T) {
	s := NewSitemapFile(newLocation(), NewNamer("sitemap"), writer.NewMemorySink(), Limits{})
	s.Rename(NewNamer("news"))
	assert.Equal(t, "news1.xml.gz", s.Location().Filename)

	require.NoError(t, s.Add(entry(t, "/")))
	other := NewNamer("other")
	other.Reserve()
	s.Rename(other)
	assert.Equal(t, "other2.xml.gz", s.Location().Filename)
}

func TestIndexFile(t *testing.T) {
	sink := writer.NewMemorySink()
	indexLoc := newLocation()
	indexLoc.Filename = "sitemap_index.xml.gz"
	idx := NewIndexFile(indexLoc, sink, Limits{})

	namer := NewNamer("sitemap")
	s1 := NewSitemapFile(newLocation(), namer, sink, Limits{})
	require.NoError(t, s1.Add(entry(t, "/")))
	s2 := s1.Next()
	require.NoError(t, s2.Add(entry(t, "/two")))

	require.NoError(t, idx.Add(s1))
	require.NoError(t, idx.Add(s2))
	assert.True(t, s1.Finalized(), "adding to the index finalizes the sitemap")
	assert.True(t, s2.Finalized())
	assert.Equal(t, 2, idx.LinkCount())

	require.NoError(t, idx.Finalize())
	require.NoError(t, idx.Finalize())
	assert.Equal(t, 1, sink.Opens(indexLoc.Path()))

	b, ok := sink.File(indexLoc.Path())
	require.True(t, ok)
	doc := string(b)
	assert.True(t, strings.HasPrefix(doc, sitemap.IndexOpen))
	i1 := strings.Index(doc, "<loc>http://test.com/sitemaps/sitemap1.xml.gz</loc>")
	i2 := strings.Index(doc, "<loc>http://test.com/sitemaps/sitemap2.xml.gz</loc>")
	assert.True(t, i1 >= 0 && i2 > i1, "sitemaps are listed in creation order")
	assert.NotContains(t, doc, "sitemap_index.xml.gz")

	sum := idx.Summary()
	assert.Equal(t, "sitemaps", sum.Noun)
	assert.Equal(t, 2, sum.Links)

	assert.ErrorIs(t, idx.AddURL("http://test.com/x.xml.gz", s1.LastMod()), ErrFinalized)
}

func TestIndexFileCapacity(t *testing.T) {
	idx := NewIndexFile(&location.Location{Host: "http://test.com", Filename: "i.xml.gz"}, writer.NewMemorySink(), Limits{MaxLinks: 1})
	require.NoError(t, idx.AddURL("http://test.com/1.xml.gz", time.Now()))
	assert.ErrorIs(t, idx.AddURL("http://test.com/2.xml.gz", time.Now()), ErrFull)
}

func TestSummaryString(t *testing.T) {
	s := Summary{Filename: "sitemap1.xml.gz", Links: 3, Noun: "links", Size: 2048}
	line := s.String()
	assert.True(t, strings.HasPrefix(line, "+ sitemap1.xml.gz"))
	assert.Contains(t, line, "3 links")
	assert.Contains(t, line, "kB")
}
