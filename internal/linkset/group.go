package linkset

import (
	"github.com/Devon-White/sitemapgen/internal/builder"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
)

// Outcome reports what a Create or AddLinks callback did.
type Outcome int

const (
	NoGroupCreated Outcome = iota
	GroupCreated
)

func (o Outcome) String() string {
	if o == GroupCreated {
		return "group created"
	}
	return "no group created"
}

// Scope is handed to Create and AddLinks callbacks. Pages added through it go
// to the link set that created it.
type Scope struct {
	ls      *LinkSet
	outcome Outcome
}

// Add adds a page to the link set.
func (s *Scope) Add(page sitemap.Page) error {
	return s.ls.Add(page)
}

// Group creates a group of the link set and records that a group was created.
func (s *Scope) Group(opts GroupOptions, fn func(*Scope) error) (*LinkSet, error) {
	s.outcome = GroupCreated
	return s.ls.Group(opts, fn)
}

// Sitemap returns the link set's open sitemap file.
func (s *Scope) Sitemap() *builder.SitemapFile { return s.ls.Sitemap() }

// LinkSet returns the link set the scope belongs to.
func (s *Scope) LinkSet() *LinkSet { return s.ls }

// Outcome reports whether a group has been created through this scope so far.
func (s *Scope) Outcome() Outcome { return s.outcome }

// Group returns a child link set that writes into its own sitemap files but
// records them in this link set's index. Unset options inherit from the
// parent; the public path always does. When fn is non-nil the group is
// created right away with fn as its body.
//
// A group never finalizes the shared index.
func (ls *LinkSet) Group(opts GroupOptions, fn func(*Scope) error) (*LinkSet, error) {
	if opts.PublicPath != "" && opts.PublicPath != ls.publicPath {
		ls.logger.Warn("ignoring public path on group, groups write under the parent's public path",
			"public_path", opts.PublicPath,
			"parent_public_path", ls.publicPath)
	}

	child := &LinkSet{
		defaultHost:   pick(opts.DefaultHost, ls.defaultHost),
		sitemapsHost:  pick(opts.SitemapsHost, ls.sitemapsHost),
		publicPath:    ls.publicPath,
		sitemapsPath:  pick(opts.SitemapsPath, ls.sitemapsPath),
		filename:      pick(opts.Filename, ls.filename),
		includeRoot:   opts.IncludeRoot,
		includeIndex:  opts.IncludeIndex,
		verbose:       ls.verbose,
		sink:          ls.sink,
		notifier:      ls.notifier,
		searchEngines: ls.searchEngines,
		limits:        ls.limits,
		logger:        ls.logger,
		family:        ls.family,
		index:         ls.index,
		protectIndex:  true,
		group:         true,
	}
	if opts.Verbose != nil {
		child.verbose = *opts.Verbose
	}
	child.location = child.newLocation()
	child.sitemap = builder.NewSitemapFile(child.newLocation(), child.namer(), child.sink, child.limits)

	if fn != nil {
		if err := child.Create(fn); err != nil {
			return child, err
		}
	}
	return child, nil
}

func pick(v, inherited string) string {
	if v != "" {
		return v
	}
	return inherited
}
