package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

type stubFeed struct {
	sources  []string
	entries  map[string][]domain.RawEntry
	fetchErr error
	fetched  bool
}

func (f *stubFeed) FetchAll(context.Context) error {
	f.fetched = true
	return f.fetchErr
}

func (f *stubFeed) Sources() []string { return f.sources }

func (f *stubFeed) EntriesByRange(source string, _, _ time.Time) []domain.RawEntry {
	return f.entries[source]
}

type stubContent struct {
	byURL map[string]string
	calls []string
}

func (c *stubContent) FetchMarkdown(_ context.Context, url string) string {
	c.calls = append(c.calls, url)
	return c.byURL[url]
}

func entry(title, link string) domain.RawEntry {
	return domain.RawEntry{Title: title, Link: link}
}

func TestCollectRangeBuildsCollectionsPerSource(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{
		sources: []string{"Bloomberg", "Reuters"},
		entries: map[string][]domain.RawEntry{
			"Bloomberg": {entry("b1", "https://example.com/b1")},
			"Reuters":   {entry("r1", "https://example.com/r1"), entry("r2", "https://example.com/r2")},
		},
	}
	content := &stubContent{byURL: map[string]string{"https://example.com/b1": "# b1"}}

	agg := NewAggregator([]SourceSet{{Feed: feed, Content: content}}, nil)
	got := agg.CollectRange(context.Background(), time.Now().Add(-24*time.Hour), time.Now())

	if !feed.fetched {
		t.Fatal("FetchAll was never called")
	}
	if len(got.Collections) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(got.Collections))
	}
	if got.Collections[0].Source != "Bloomberg" || got.Collections[1].Source != "Reuters" {
		t.Fatalf("collections out of order: %s, %s", got.Collections[0].Source, got.Collections[1].Source)
	}
	if got.Collections[0].Articles[0].Content != "# b1" {
		t.Fatalf("fetched content not attached: %q", got.Collections[0].Articles[0].Content)
	}
	if got.TotalArticles() != 3 {
		t.Fatalf("expected 3 articles, got %d", got.TotalArticles())
	}
}

func TestCollectRangeFeedFailureYieldsNoEntriesAndContinues(t *testing.T) {
	t.Parallel()

	broken := &stubFeed{
		sources:  []string{"Broken"},
		fetchErr: errors.New("connection refused"),
	}
	healthy := &stubFeed{
		sources: []string{"Healthy"},
		entries: map[string][]domain.RawEntry{
			"Healthy": {entry("ok", "https://example.com/ok")},
		},
	}

	agg := NewAggregator([]SourceSet{{Feed: broken}, {Feed: healthy}}, nil)
	got := agg.CollectRange(context.Background(), time.Now().Add(-24*time.Hour), time.Now())

	if got.TotalArticles() != 1 {
		t.Fatalf("expected the healthy feed's article only, got %d", got.TotalArticles())
	}
	for _, col := range got.Collections {
		if col.Source == "Broken" {
			t.Fatal("failed feed family must contribute no collections")
		}
	}
}

func TestCollectRangeDeduplicatesLinksFirstWins(t *testing.T) {
	t.Parallel()

	first := &stubFeed{
		sources: []string{"A"},
		entries: map[string][]domain.RawEntry{
			"A": {entry("original", "https://example.com/shared")},
		},
	}
	second := &stubFeed{
		sources: []string{"B"},
		entries: map[string][]domain.RawEntry{
			"B": {entry("duplicate", "https://example.com/shared"), entry("fresh", "https://example.com/fresh")},
		},
	}
	content := &stubContent{byURL: map[string]string{}}

	agg := NewAggregator([]SourceSet{{Feed: first, Content: content}, {Feed: second, Content: content}}, nil)
	got := agg.CollectRange(context.Background(), time.Now().Add(-24*time.Hour), time.Now())

	if got.TotalArticles() != 2 {
		t.Fatalf("expected duplicate link dropped, got %d articles", got.TotalArticles())
	}
	var titles []string
	for _, col := range got.Collections {
		for _, article := range col.Articles {
			titles = append(titles, article.Title)
		}
	}
	if titles[0] != "original" || titles[1] != "fresh" {
		t.Fatalf("first occurrence must win: %v", titles)
	}
	if len(content.calls) != 2 {
		t.Fatalf("duplicate link must not be fetched again, got %d fetches", len(content.calls))
	}
}

func TestCollectRangeEmptySourceStillGetsCollection(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{sources: []string{"Quiet"}}

	agg := NewAggregator([]SourceSet{{Feed: feed}}, nil)
	got := agg.CollectRange(context.Background(), time.Now().Add(-24*time.Hour), time.Now())

	if len(got.Collections) != 1 || got.Collections[0].Source != "Quiet" {
		t.Fatalf("expected an empty collection for the quiet source, got %+v", got.Collections)
	}
	if len(got.Collections[0].Articles) != 0 {
		t.Fatalf("expected zero articles, got %d", len(got.Collections[0].Articles))
	}
}
