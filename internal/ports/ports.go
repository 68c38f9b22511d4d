package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// FeedSource pulls raw entries from one family of upstream feeds.
type FeedSource interface {
	// FetchAll downloads and parses every configured feed. Per-feed failures
	// are logged by the implementation and leave that feed empty.
	FetchAll(ctx context.Context) error

	// Sources lists the source names this fetcher produced, in a
	// deterministic order.
	Sources() []string

	// EntriesByRange returns the entries of one source whose publication date
	// falls within [start, end], inclusive both ends.
	EntriesByRange(source string, start, end time.Time) []domain.RawEntry
}

// ContentFetcher retrieves full article text, best-effort: any failure
// returns the empty string.
type ContentFetcher interface {
	FetchMarkdown(ctx context.Context, url string) string
}

// Scorer assigns a relevance score in [0, 100] to an article.
type Scorer interface {
	Score(ctx context.Context, article domain.Article) (float64, error)
}

// Summarizer produces the structured summary of a ranked article.
type Summarizer interface {
	Summarize(ctx context.Context, title, content string) (domain.Summary, error)
}

// ArticleStore persists extractions and serves the digest queries. Inserting
// an article whose link already exists updates its non-empty summary and
// content instead of duplicating the row.
type ArticleStore interface {
	InsertExtraction(ctx context.Context, extraction domain.Extraction) (int64, error)
	ArticlesCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.PersistedArticle, error)
	ListRecipientEmails(ctx context.Context) ([]string, error)
}

// DigestSender delivers the composed digest email.
type DigestSender interface {
	Send(ctx context.Context, subject, htmlBody string, recipients []string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
