// Package linkset drives sitemap generation: it feeds pages into numbered
// sitemap files, rolls over to a new file when one fills up, records every
// finalized file in a shared index and finally writes the index.
package linkset

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Devon-White/sitemapgen/internal/builder"
	"github.com/Devon-White/sitemapgen/internal/location"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
	"github.com/Devon-White/sitemapgen/internal/writer"
)

// family is the state shared by a top-level link set and all of its groups.
type family struct {
	namers    map[string]*builder.Namer
	finalized []*builder.SitemapFile
	started   time.Time
}

func newFamily() *family {
	return &family{namers: make(map[string]*builder.Namer), started: time.Now()}
}

// namer returns the namer for base, so that files with the same base
// filename share one numbering sequence.
func (f *family) namer(base string) *builder.Namer {
	n, ok := f.namers[base]
	if !ok {
		n = builder.NewNamer(base)
		f.namers[base] = n
	}
	return n
}

// LinkSet accumulates pages into sitemap files. It is not safe for
// concurrent use.
type LinkSet struct {
	defaultHost  string
	sitemapsHost string
	publicPath   string
	sitemapsPath string
	filename     string
	includeRoot  bool
	includeIndex bool
	verbose      bool

	sink          builder.Sink
	notifier      Notifier
	searchEngines map[string]string
	limits        builder.Limits
	logger        *slog.Logger

	family       *family
	location     *location.Location
	sitemap      *builder.SitemapFile
	index        *builder.IndexFile
	protectIndex bool
	group        bool

	addedDefaultLinks bool
	finalized         []*builder.SitemapFile
}

// New returns a top-level link set. Nothing is resolved or written until
// pages are added or the set is finalized, so DefaultHost may be set later.
func New(opts Options) (*LinkSet, error) {
	if opts.PublicPath == "" {
		root := opts.Root
		if root == nil {
			root = workingDir
		}
		dir, err := root()
		if err != nil {
			return nil, fmt.Errorf("resolving default public path: %w", err)
		}
		opts.PublicPath = filepath.Join(dir, "public") + string(filepath.Separator)
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.Sink == nil {
		opts.Sink = writer.GzipSink{}
	}
	if opts.SearchEngines == nil {
		opts.SearchEngines = DefaultSearchEngines()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ls := &LinkSet{
		defaultHost:   opts.DefaultHost,
		sitemapsHost:  opts.SitemapsHost,
		publicPath:    opts.PublicPath,
		sitemapsPath:  opts.SitemapsPath,
		filename:      opts.Filename,
		includeRoot:   opts.IncludeRoot,
		includeIndex:  opts.IncludeIndex,
		verbose:       opts.Verbose,
		sink:          opts.Sink,
		notifier:      opts.Notifier,
		searchEngines: opts.SearchEngines,
		limits:        opts.Limits,
		logger:        opts.Logger,
		family:        newFamily(),
	}
	ls.location = ls.newLocation()
	ls.sitemap = builder.NewSitemapFile(ls.newLocation(), ls.namer(), ls.sink, ls.limits)

	if opts.SitemapIndex != nil {
		ls.index = opts.SitemapIndex
		ls.protectIndex = true
	} else {
		loc := ls.newLocation()
		loc.Filename = ls.namer().IndexName()
		ls.index = builder.NewIndexFile(loc, ls.sink, opts.IndexLimits)
	}
	return ls, nil
}

// NewWithPaths builds a top-level link set from positional arguments. Empty
// values take the defaults.
func NewWithPaths(publicPath, sitemapsPath, defaultHost, filename string) (*LinkSet, error) {
	opts := DefaultOptions()
	opts.PublicPath = publicPath
	opts.SitemapsPath = sitemapsPath
	opts.DefaultHost = defaultHost
	if filename != "" {
		opts.Filename = filename
	}
	return New(opts)
}

func (ls *LinkSet) namer() *builder.Namer {
	return ls.family.namer(ls.filename)
}

func (ls *LinkSet) newLocation() *location.Location {
	return &location.Location{
		Host:         ls.SitemapsHost(),
		PublicPath:   ls.publicPath,
		SitemapsPath: ls.sitemapsPath,
		Filename:     ls.namer().Name(ls.namer().Peek()),
	}
}

// syncLocations pushes the current settings into the open sitemap file and,
// unless it is protected, the index.
func (ls *LinkSet) syncLocations() {
	apply := func(l *location.Location) {
		l.Host = ls.SitemapsHost()
		l.PublicPath = ls.publicPath
		l.SitemapsPath = ls.sitemapsPath
	}
	apply(ls.location)
	ls.location.Filename = ls.namer().Name(ls.namer().Peek())

	if !ls.sitemap.Finalized() {
		ls.sitemap.Rename(ls.namer())
		apply(ls.sitemap.Location())
	}
	if !ls.protectIndex && !ls.index.Finalized() {
		l := ls.index.Location()
		apply(l)
		l.Filename = ls.namer().IndexName()
	}
}

// DefaultHost returns the host relative page paths resolve against.
func (ls *LinkSet) DefaultHost() string { return ls.defaultHost }

// SetDefaultHost sets the default host. It is also the sitemaps host unless
// one is set explicitly.
func (ls *LinkSet) SetDefaultHost(host string) {
	ls.defaultHost = host
	ls.syncLocations()
}

// SitemapsHost returns the host sitemap files are served from.
func (ls *LinkSet) SitemapsHost() string {
	if ls.sitemapsHost != "" {
		return ls.sitemapsHost
	}
	return ls.defaultHost
}

func (ls *LinkSet) SetSitemapsHost(host string) {
	ls.sitemapsHost = host
	ls.syncLocations()
}

func (ls *LinkSet) PublicPath() string { return ls.publicPath }

// SetPublicPath changes the output directory. Groups always write under
// their parent's public path, so on a group the call is ignored.
func (ls *LinkSet) SetPublicPath(dir string) {
	if ls.group {
		ls.logger.Warn("public path cannot be changed on a group", "public_path", dir)
		return
	}
	ls.publicPath = dir
	ls.syncLocations()
}

func (ls *LinkSet) SitemapsPath() string { return ls.sitemapsPath }

func (ls *LinkSet) SetSitemapsPath(p string) {
	ls.sitemapsPath = p
	ls.syncLocations()
}

func (ls *LinkSet) Filename() string { return ls.filename }

// SetFilename changes the base filename. The open sitemap file moves to the
// numbering sequence of the new base.
func (ls *LinkSet) SetFilename(name string) {
	if name == "" {
		name = DefaultFilename
	}
	ls.filename = name
	ls.syncLocations()
}

func (ls *LinkSet) IncludeRoot() bool { return ls.includeRoot }
func (ls *LinkSet) SetIncludeRoot(v bool) { ls.includeRoot = v }
func (ls *LinkSet) IncludeIndex() bool { return ls.includeIndex }
func (ls *LinkSet) SetIncludeIndex(v bool) { ls.includeIndex = v }
func (ls *LinkSet) Verbose() bool { return ls.verbose }
func (ls *LinkSet) SetVerbose(v bool) { ls.verbose = v }
func (ls *LinkSet) SearchEngines() map[string]string { return ls.searchEngines }

// Location returns the link set's own location. It reflects the current
// settings and may be mutated independently of the files.
func (ls *LinkSet) Location() *location.Location { return ls.location }

// Sitemap returns the currently open sitemap file.
func (ls *LinkSet) Sitemap() *builder.SitemapFile { return ls.sitemap }

// SitemapIndex returns the index shared by this link set and its groups.
func (ls *LinkSet) SitemapIndex() *builder.IndexFile { return ls.index }

// IndexProtected reports whether the index is owned by someone else and
// will not be finalized by this link set.
func (ls *LinkSet) IndexProtected() bool { return ls.protectIndex }

// Finalized returns the sitemap files this link set has finalized, in order.
func (ls *LinkSet) Finalized() []*builder.SitemapFile { return ls.finalized }

// Add resolves page against the default host and appends it. The default
// links are added first if they have not been yet.
func (ls *LinkSet) Add(page sitemap.Page) error {
	if err := ls.addDefaultLinks(); err != nil {
		return err
	}
	return ls.add(page)
}

func (ls *LinkSet) add(page sitemap.Page) error {
	u, err := sitemap.Build(ls.defaultHost, page)
	if err != nil {
		return fmt.Errorf("adding %q: %w", page.Path, err)
	}
	err = ls.sitemap.Add(u)
	if !errors.Is(err, builder.ErrFull) {
		return err
	}
	if err := ls.seal(); err != nil {
		return err
	}
	ls.sitemap = ls.sitemap.Next()
	return ls.sitemap.Add(u)
}

// addDefaultLinks adds the root URL and the index URL, if enabled. It runs at
// most once in the lifetime of the link set.
func (ls *LinkSet) addDefaultLinks() error {
	if ls.addedDefaultLinks {
		return nil
	}
	ls.addedDefaultLinks = true

	now := time.Now()
	priority := 1.0
	if ls.includeRoot {
		root := sitemap.Page{Path: "/", LastMod: now, ChangeFreq: sitemap.Always, Priority: &priority}
		if err := ls.add(root); err != nil {
			return err
		}
	}
	if ls.includeIndex {
		u, err := ls.index.URL()
		if err != nil {
			return fmt.Errorf("adding index link: %w", err)
		}
		idx := sitemap.Page{Path: u, LastMod: now, ChangeFreq: sitemap.Always, Priority: &priority}
		if err := ls.add(idx); err != nil {
			return err
		}
	}
	return nil
}

// AddLinks adds the default links and then runs fn. The outcome reports
// whether fn created a group.
func (ls *LinkSet) AddLinks(fn func(*Scope) error) (Outcome, error) {
	if err := ls.addDefaultLinks(); err != nil {
		return NoGroupCreated, err
	}
	if fn == nil {
		return NoGroupCreated, nil
	}
	s := &Scope{ls: ls}
	err := fn(s)
	return s.outcome, err
}

// Create runs fn, then finalizes the open sitemap file and, unless it is
// protected, the index.
func (ls *LinkSet) Create(fn func(*Scope) error) error {
	outcome := NoGroupCreated
	if fn != nil {
		s := &Scope{ls: ls}
		if err := fn(s); err != nil {
			return err
		}
		outcome = s.outcome
	}
	if err := ls.finalizeSitemap(outcome); err != nil {
		return err
	}
	if err := ls.finalizeIndex(); err != nil {
		return err
	}
	if ls.verbose && !ls.protectIndex {
		ls.logger.Info(ls.Stats().String())
	}
	return nil
}

// Finalize finalizes the open sitemap file and the index, if not protected.
// Calling it again does nothing.
func (ls *LinkSet) Finalize() error {
	if err := ls.finalizeSitemap(NoGroupCreated); err != nil {
		return err
	}
	return ls.finalizeIndex()
}

// finalizeSitemap seals the open file. An empty file is skipped when a group
// was created, since the group wrote the pages.
func (ls *LinkSet) finalizeSitemap(outcome Outcome) error {
	if outcome == NoGroupCreated {
		if err := ls.addDefaultLinks(); err != nil {
			return err
		}
	}
	if ls.sitemap.Finalized() || (outcome == GroupCreated && ls.sitemap.Empty()) {
		return nil
	}
	return ls.seal()
}

func (ls *LinkSet) seal() error {
	s := ls.sitemap
	if err := s.Finalize(); err != nil {
		return err
	}
	// only files the index accepted count as finalized
	if err := ls.index.Add(s); err != nil {
		return err
	}
	ls.finalized = append(ls.finalized, s)
	ls.family.finalized = append(ls.family.finalized, s)
	if ls.verbose {
		sum := s.Summary()
		ls.logger.Info(sum.String(), slog.String("url", sum.URL))
	}
	return nil
}

func (ls *LinkSet) finalizeIndex() error {
	if ls.protectIndex || ls.index.Finalized() {
		return nil
	}
	if err := ls.index.Finalize(); err != nil {
		return err
	}
	if ls.verbose {
		sum := ls.index.Summary()
		ls.logger.Info(sum.String(), slog.String("url", sum.URL))
	}
	return nil
}

// Summaries returns a summary of every file finalized by this link set and
// its groups, followed by the index if this set finalized it.
func (ls *LinkSet) Summaries() []builder.Summary {
	out := make([]builder.Summary, 0, len(ls.family.finalized)+1)
	for _, s := range ls.family.finalized {
		out = append(out, s.Summary())
	}
	if !ls.protectIndex && ls.index.Finalized() {
		out = append(out, ls.index.Summary())
	}
	return out
}

// Stats totals the files finalized by this link set and its groups.
type Stats struct {
	Links    int
	Sitemaps int
	Elapsed  time.Duration
}

// Stats returns totals across the whole family of link sets.
func (ls *LinkSet) Stats() Stats {
	st := Stats{Sitemaps: len(ls.family.finalized), Elapsed: time.Since(ls.family.started)}
	for _, s := range ls.family.finalized {
		st.Links += s.LinkCount()
	}
	return st
}

func (s Stats) String() string {
	secs := int(s.Elapsed.Round(time.Second).Seconds())
	return fmt.Sprintf("Sitemap stats: %d links / %d sitemaps / %dm%02ds", s.Links, s.Sitemaps, secs/60, secs%60)
}
