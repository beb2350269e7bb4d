package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Devon-White/sitemapgen/internal/builder"
	"github.com/Devon-White/sitemapgen/internal/config"
	"github.com/Devon-White/sitemapgen/internal/extractor"
	"github.com/Devon-White/sitemapgen/internal/linkset"
	"github.com/Devon-White/sitemapgen/internal/pipeline"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "sitemapgen",
	Short: "Generate XML sitemaps and a sitemap index for a website",
	Long: `sitemapgen writes gzipped XML sitemap files and a sitemap index under a
public directory, splitting links across numbered files as they fill up.

Pages come from two sources, which can be combined:
  - A site file (--config sitemap.yaml) listing pages and nested groups, each
    group written to its own sitemap files and referenced from the one index.
  - A scan (--scan) of the static HTML under the public directory, reading
    canonical URLs, hreflang alternates and images from each page.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfg.SiteFile, "config", "", "YAML site definition file")
	f.StringVar(&cfg.DefaultHost, "host", "", "default host pages resolve against, e.g. http://example.com")
	f.StringVar(&cfg.SitemapsHost, "sitemaps-host", "", "host sitemap files are served from (default: --host)")
	f.StringVar(&cfg.PublicPath, "public-path", "", "directory sitemaps are written under (default: ./public/)")
	f.StringVar(&cfg.SitemapsPath, "sitemaps-path", "", "sub-path of the public path for sitemap files")
	f.StringVar(&cfg.Filename, "filename", linkset.DefaultFilename, "base filename of sitemap files")
	f.BoolVar(&cfg.IncludeRoot, "include-root", true, "add the root URL before the first page")
	f.BoolVar(&cfg.IncludeIndex, "include-index", true, "add the index URL before the first page")
	f.BoolVar(&cfg.Scan, "scan", false, "add a page for every HTML file under the public path")
	f.StringVar(&cfg.ScanPattern, "scan-pattern", extractor.DefaultPattern, "files to scan, relative to the public path")
	f.StringSliceVar(&cfg.Exclude, "exclude", nil, "glob patterns skipped by the scan (repeatable)")
	f.IntVarP(&cfg.Concurrency, "concurrency", "c", 4, "number of parallel scan workers")
	f.IntVar(&cfg.MaxLinks, "max-links", builder.DefaultLimits.MaxLinks, "maximum links per sitemap file")
	f.IntVar(&cfg.MaxBytes, "max-bytes", builder.DefaultLimits.MaxBytes, "maximum uncompressed bytes per sitemap file")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "build everything in memory and write nothing")
	f.BoolVar(&cfg.Ping, "ping", false, "ping search engines once the index is written")
	f.DurationVar(&cfg.PingTimeout, "ping-timeout", 10*time.Second, "timeout for each search engine ping")
	f.StringVar(&cfg.UserAgent, "user-agent", "sitemapgen/1.0", "User-Agent for search engine pings")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose logging")
}

func run(cmd *cobra.Command, args []string) error {
	if cfg.SiteFile != "" {
		site, err := config.LoadSite(cfg.SiteFile)
		if err != nil {
			return err
		}
		cfg.Apply(site, cmd.Flags().Changed)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := pipeline.Run(ctx, &cfg, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("generating sitemaps: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
