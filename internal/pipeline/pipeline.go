package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/Devon-White/sitemapgen/internal/builder"
	"github.com/Devon-White/sitemapgen/internal/config"
	"github.com/Devon-White/sitemapgen/internal/extractor"
	"github.com/Devon-White/sitemapgen/internal/linkset"
	"github.com/Devon-White/sitemapgen/internal/notify"
	"github.com/Devon-White/sitemapgen/internal/sitemap"
	"github.com/Devon-White/sitemapgen/internal/writer"
)

type scanResult struct {
	File string
	Page sitemap.Page
	OK   bool
	Err  error
}

// Run executes a full sitemapgen run: build every sitemap, print a summary
// of what was written to out, and ping search engines when asked. In verbose
// mode the summary goes to the default logger instead of out.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	var sink builder.Sink = writer.GzipSink{}
	if cfg.DryRun {
		sink = writer.NewMemorySink()
	}
	logger := slog.Default()

	ls, err := Build(ctx, cfg, sink, logger)
	if err != nil {
		return err
	}

	// verbose runs already logged each summary as it was written
	if !cfg.Verbose {
		for _, sum := range ls.Summaries() {
			fmt.Fprintln(out, sum.String())
		}
		fmt.Fprintln(out, ls.Stats().String())
	}
	if cfg.DryRun {
		logger.Info("dry run, nothing written")
		return nil
	}

	if cfg.Ping {
		var failed int
		for _, r := range ls.PingSearchEngines(ctx) {
			if r.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			logger.Warn("some search engine pings failed", slog.Int("failed", failed))
		}
	}
	return nil
}

// Build creates the link set described by cfg, adds the site file's pages
// and groups plus any scanned pages, and finalizes everything into sink.
func Build(ctx context.Context, cfg *config.Config, sink builder.Sink, logger *slog.Logger) (*linkset.LinkSet, error) {
	opts := linkset.DefaultOptions()
	opts.DefaultHost = cfg.DefaultHost
	opts.SitemapsHost = cfg.SitemapsHost
	opts.PublicPath = cfg.PublicPath
	opts.SitemapsPath = cfg.SitemapsPath
	opts.Filename = cfg.Filename
	opts.IncludeRoot = cfg.IncludeRoot
	opts.IncludeIndex = cfg.IncludeIndex
	opts.Verbose = cfg.Verbose
	opts.Sink = sink
	opts.Logger = logger
	opts.Limits = builder.Limits{MaxLinks: cfg.MaxLinks, MaxBytes: cfg.MaxBytes}
	opts.SearchEngines = cfg.SearchEngines()
	opts.Notifier = notify.New(cfg.UserAgent, cfg.PingTimeout)

	ls, err := linkset.New(opts)
	if err != nil {
		return nil, err
	}

	var pages []sitemap.Page
	var groups []config.Group
	if cfg.Site != nil {
		pages = append(pages, cfg.Site.Pages...)
		groups = cfg.Site.Groups
	}
	if cfg.Scan {
		scanned, err := scan(ctx, ls.PublicPath(), cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		pages = append(pages, scanned...)
	}
	logger.Debug("building sitemaps", slog.Int("pages", len(pages)), slog.Int("groups", len(groups)))

	err = ls.Create(func(s *linkset.Scope) error {
		if err := addPages(s, pages); err != nil {
			return err
		}
		return addGroups(s, groups)
	})
	if err != nil {
		return nil, err
	}
	return ls, nil
}

func addPages(s *linkset.Scope, pages []sitemap.Page) error {
	for _, p := range pages {
		if err := s.Add(p); err != nil {
			return err
		}
	}
	return nil
}

func addGroups(s *linkset.Scope, groups []config.Group) error {
	for _, g := range groups {
		opts := linkset.GroupOptions{
			DefaultHost:  g.DefaultHost,
			SitemapsHost: g.SitemapsHost,
			SitemapsPath: g.SitemapsPath,
			Filename:     g.Filename,
			PublicPath:   g.PublicPath,
			IncludeRoot:  g.IncludeRoot,
			IncludeIndex: g.IncludeIndex,
			Verbose:      g.Verbose,
		}
		_, err := s.Group(opts, func(gs *linkset.Scope) error {
			if err := addPages(gs, g.Pages); err != nil {
				return err
			}
			return addGroups(gs, g.Groups)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// scan extracts a page from every HTML file under dir using a pool of
// workers. Pages come back in file order; unreadable files are logged and
// skipped.
func scan(ctx context.Context, dir string, cfg *config.Config, logger *slog.Logger) ([]sitemap.Page, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("public path: %w", err)
	}
	fsys := os.DirFS(dir)

	files, err := extractor.Discover(fsys, cfg.ScanPattern, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Info("scanning pages", slog.String("dir", dir), slog.Int("files", len(files)))

	// Fan-out: send file indexes to workers
	idxCh := make(chan int, len(files))
	for i := range files {
		idxCh <- i
	}
	close(idxCh)

	results := make([]scanResult, len(files))
	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[idx] = scanFile(fsys, files[idx])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []sitemap.Page
	var errCount int
	for i, r := range results {
		switch {
		case r.Err != nil:
			errCount++
			logger.Warn("skipping page", slog.String("file", r.File), slog.String("error", r.Err.Error()))
		case !r.OK:
			logger.Debug("skipping noindex page", slog.String("file", r.File))
		default:
			if cfg.Verbose {
				logger.Debug("found page", slog.Int("n", i+1), slog.Int("of", len(files)), slog.String("path", r.Page.Path))
			}
			pages = append(pages, r.Page)
		}
	}
	if errCount > 0 && len(pages) == 0 {
		return nil, fmt.Errorf("all %d pages failed", errCount)
	}
	return pages, nil
}

func scanFile(fsys fs.FS, name string) scanResult {
	res := scanResult{File: name}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		res.Err = err
		return res
	}
	body, err := fs.ReadFile(fsys, name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Page, res.OK, res.Err = extractor.Extract(body, extractor.PagePath(name), info.ModTime())
	if res.Err != nil {
		res.Err = fmt.Errorf("extraction: %w", res.Err)
	}
	return res
}
