package linkset

import (
	"context"
	"log/slog"
	"sort"
)

// Notifier tells a search engine where a sitemap lives. endpoint is a ping
// URL template containing %s.
type Notifier interface {
	Notify(ctx context.Context, endpoint, sitemapURL string) error
}

// DefaultSearchEngines returns the ping templates used when none are configured.
func DefaultSearchEngines() map[string]string {
	return map[string]string{
		"google": "https://www.google.com/webmasters/tools/ping?sitemap=%s",
		"bing":   "https://www.bing.com/webmaster/ping.aspx?siteMap=%s",
	}
}

// PingResult is the outcome of one ping.
type PingResult struct {
	Engine string
	URL    string
	Err    error
}

// PingSearchEngines notifies every configured search engine of the index, or
// of each finalized sitemap file when there is no finalized index. Engines
// are pinged in name order. Failures are logged and reported, never returned.
func (ls *LinkSet) PingSearchEngines(ctx context.Context) []PingResult {
	if ls.notifier == nil {
		ls.logger.Warn("no notifier configured, skipping search engine ping")
		return nil
	}

	targets := ls.pingTargets()
	if len(targets) == 0 {
		ls.logger.Warn("nothing finalized, skipping search engine ping")
		return nil
	}

	engines := make([]string, 0, len(ls.searchEngines))
	for name := range ls.searchEngines {
		engines = append(engines, name)
	}
	sort.Strings(engines)

	var results []PingResult
	for _, name := range engines {
		for _, u := range targets {
			err := ls.notifier.Notify(ctx, ls.searchEngines[name], u)
			if err != nil {
				ls.logger.Warn("search engine ping failed",
					slog.String("engine", name),
					slog.String("sitemap", u),
					slog.String("error", err.Error()))
			} else if ls.verbose {
				ls.logger.Info("pinged search engine", slog.String("engine", name), slog.String("sitemap", u))
			}
			results = append(results, PingResult{Engine: name, URL: u, Err: err})
		}
	}
	return results
}

func (ls *LinkSet) pingTargets() []string {
	if ls.index.Finalized() {
		if u, err := ls.index.URL(); err == nil {
			return []string{u}
		}
	}
	var urls []string
	for _, s := range ls.finalized {
		if u, err := s.URL(); err == nil {
			urls = append(urls, u)
		}
	}
	return urls
}
