// Package builder holds the sitemap and sitemap index files: capacity-bounded
// sequences of serialized entries that are written out exactly once, when
// they are finalized.
package builder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Devon-White/sitemapgen/internal/location"
)

var (
	// ErrFull is returned by Add when the entry does not fit. Link sets
	// handle it by finalizing the file and continuing in the next one.
	ErrFull = errors.New("sitemap file is full")
	// ErrEntryTooLarge is returned when an entry does not fit even an empty file.
	ErrEntryTooLarge = errors.New("entry exceeds the maximum sitemap file size")
	// ErrFinalized is returned when adding to a file that was already written.
	ErrFinalized = errors.New("sitemap file already finalized")
)

// Sink opens the destination a finalized file is written to.
type Sink interface {
	Open(path string) (io.WriteCloser, error)
}

// Limits bounds the contents of a single file.
type Limits struct {
	MaxLinks int
	MaxBytes int
}

// DefaultLimits are the sitemap protocol limits.
var DefaultLimits = Limits{
	MaxLinks: 50000,
	MaxBytes: 10 * 1024 * 1024,
}

func (l Limits) orDefault() Limits {
	if l.MaxLinks <= 0 {
		l.MaxLinks = DefaultLimits.MaxLinks
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultLimits.MaxBytes
	}
	return l
}

// file is the state shared by sitemap and index files.
type file struct {
	location *location.Location
	sink     Sink
	limits   Limits
	open     string
	close    string

	body      bytes.Buffer
	links     int
	finalized bool
	written   int64

	created     time.Time
	finalizedAt time.Time
}

func newFile(loc *location.Location, sink Sink, limits Limits, open, close string) file {
	return file{
		location: loc,
		sink:     sink,
		limits:   limits.orDefault(),
		open:     open,
		close:    close,
		created:  time.Now(),
	}
}

func (f *file) size() int {
	return len(f.open) + f.body.Len() + len(f.close)
}

func (f *file) fits(fragment []byte) error {
	if f.links+1 > f.limits.MaxLinks || f.size()+len(fragment) > f.limits.MaxBytes {
		if f.links == 0 {
			return ErrEntryTooLarge
		}
		return ErrFull
	}
	return nil
}

func (f *file) add(fragment []byte) error {
	if f.finalized {
		return ErrFinalized
	}
	if err := f.fits(fragment); err != nil {
		return err
	}
	f.body.Write(fragment)
	f.links++
	return nil
}

// write streams the document to the sink. The writer is closed on every path.
func (f *file) write() (err error) {
	if f.sink == nil {
		return fmt.Errorf("no sink configured for %s", f.location.Path())
	}
	path := f.location.Path()
	w, err := f.sink.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	var n int64
	for _, part := range [][]byte{[]byte(f.open), f.body.Bytes(), []byte(f.close)} {
		m, err := w.Write(part)
		n += int64(m)
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	f.written = n
	return nil
}

func (f *file) finalize() error {
	if f.finalized {
		return nil
	}
	if err := f.write(); err != nil {
		return err
	}
	f.finalized = true
	f.finalizedAt = time.Now()
	return nil
}

func (f *file) summary(noun string) Summary {
	s := Summary{
		Filename: f.location.Filename,
		Path:     f.location.Path(),
		Links:    f.links,
		Noun:     noun,
		Size:     int64(f.size()),
	}
	s.URL, _ = f.location.URL()
	if f.finalized {
		s.Size = f.written
		s.Elapsed = f.finalizedAt.Sub(f.created)
	} else {
		s.Elapsed = time.Since(f.created)
	}
	return s
}
