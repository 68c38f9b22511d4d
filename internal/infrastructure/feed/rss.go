// Package feed implements the RSS, Google News, and Yahoo Finance
// collectors behind ports.FeedSource.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// RSSFetcher downloads and parses a set of named feeds. A feed that fails to
// fetch or parse simply yields zero entries; the failure is logged and the
// other feeds proceed.
type RSSFetcher struct {
	urls   map[string]string
	names  []string
	client *http.Client
	parser *gofeed.Parser
	feeds  map[string]*gofeed.Feed
	logger *slog.Logger
}

var _ ports.FeedSource = (*RSSFetcher)(nil)

// NewRSSFetcher wires feed names to URLs. Names are sorted so collection
// order is deterministic run-to-run.
func NewRSSFetcher(urls map[string]string, client *http.Client, logger *slog.Logger) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	names := make([]string, 0, len(urls))
	for name := range urls {
		names = append(names, name)
	}
	sort.Strings(names)

	return &RSSFetcher{
		urls:   urls,
		names:  names,
		client: client,
		parser: gofeed.NewParser(),
		feeds:  map[string]*gofeed.Feed{},
		logger: logger,
	}
}

// FetchAll downloads every configured feed. Per-feed failures are logged and
// leave that feed empty; FetchAll itself only fails on a nil receiver
// misuse, never on network trouble.
func (f *RSSFetcher) FetchAll(ctx context.Context) error {
	for _, name := range f.names {
		feed, err := f.fetch(ctx, name, f.urls[name])
		if err != nil {
			f.warn("fetch feed", "feed", name, "error", err)
			f.feeds[name] = nil
			continue
		}
		f.feeds[name] = feed
	}
	return nil
}

// Sources lists the configured feed names in sorted order.
func (f *RSSFetcher) Sources() []string {
	return f.names
}

// EntriesByRange returns entries of one feed whose publication date falls
// within [start, end], inclusive. Entries without any parseable date are
// skipped.
func (f *RSSFetcher) EntriesByRange(source string, start, end time.Time) []domain.RawEntry {
	feed := f.feeds[source]
	if feed == nil {
		return nil
	}

	startDay := dateOnly(start)
	endDay := dateOnly(end)

	var entries []domain.RawEntry
	for _, item := range feed.Items {
		published := entryDate(item)
		if published == nil {
			continue
		}
		day := dateOnly(*published)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		entries = append(entries, toRawEntry(item))
	}
	return entries
}

func (f *RSSFetcher) fetch(ctx context.Context, name, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", name, resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", name, err)
	}
	return feed, nil
}

func (f *RSSFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

// entryDate prefers the parsed published date, then the updated date.
func entryDate(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}

func toRawEntry(item *gofeed.Item) domain.RawEntry {
	return domain.RawEntry{
		Title:           item.Title,
		Link:            item.Link,
		Published:       item.Published,
		PublishedParsed: entryDate(item),
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
