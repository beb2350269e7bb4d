package builder

import (
	"fmt"
	"time"

	units "github.com/docker/go-units"
)

// Summary is a read-only report on one file.
type Summary struct {
	Filename string
	Path     string
	URL      string
	Links    int
	Noun     string // "links" or "sitemaps"
	Size     int64  // uncompressed bytes
	Elapsed  time.Duration
}

// String renders the summary line printed after a file is finalized.
func (s Summary) String() string {
	return fmt.Sprintf("+ %-21s %10s / %s", s.Filename, fmt.Sprintf("%d %s", s.Links, s.Noun), units.HumanSize(float64(s.Size)))
}
