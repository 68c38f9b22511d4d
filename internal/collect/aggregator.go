package collect

import (
	"context"
	"log/slog"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// SourceSet pairs one feed family with the content fetcher that knows how to
// pull full article text for its links.
type SourceSet struct {
	Feed    ports.FeedSource
	Content ports.ContentFetcher
}

// Aggregator turns the configured feed families into a single Extraction.
type Aggregator struct {
	sets   []SourceSet
	logger *slog.Logger
}

// NewAggregator wires feed families in the order they should appear in the
// resulting Extraction.
func NewAggregator(sets []SourceSet, logger *slog.Logger) *Aggregator {
	return &Aggregator{sets: sets, logger: logger}
}

// CollectRange fetches every feed family and builds a fresh Extraction from
// the entries published within [start, end]. Feed failures yield zero
// entries for that family and the run continues. Duplicate links across
// feeds are dropped: the first occurrence wins, so each article is fetched
// and scored once per run.
func (a *Aggregator) CollectRange(ctx context.Context, start, end time.Time) domain.Extraction {
	var extraction domain.Extraction
	seen := map[string]struct{}{}

	for _, set := range a.sets {
		if set.Feed == nil {
			continue
		}
		if err := set.Feed.FetchAll(ctx); err != nil {
			a.warn("fetch feeds", "error", err)
			continue
		}

		for _, source := range set.Feed.Sources() {
			entries := set.Feed.EntriesByRange(source, start, end)
			col := extraction.EnsureCollection(source)
			a.debug("collect source", "source", source, "entries", len(entries))

			for _, entry := range entries {
				if entry.Link != "" {
					if _, dup := seen[entry.Link]; dup {
						a.debug("skip duplicate link", "source", source, "link", entry.Link)
						continue
					}
					seen[entry.Link] = struct{}{}
				}

				content := ""
				if set.Content != nil && entry.Link != "" {
					content = set.Content.FetchMarkdown(ctx, entry.Link)
				}

				col.Add(EntryToArticle(source, entry, content))
			}
		}
	}

	return extraction
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
