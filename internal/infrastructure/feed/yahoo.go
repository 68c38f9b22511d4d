package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// minParagraphLen drops navigation fragments and photo captions that Yahoo
// pages mix into the article container.
const minParagraphLen = 50

// YahooFetcher reads Yahoo Finance RSS feeds. Only entries linking to
// article pages (.html) are kept, capped at maxArticles per feed.
type YahooFetcher struct {
	*RSSFetcher
	maxArticles int
}

var _ ports.FeedSource = (*YahooFetcher)(nil)

// NewYahooFetcher wires the feed map and the per-feed article cap.
func NewYahooFetcher(urls map[string]string, maxArticles int, client *http.Client, logger *slog.Logger) *YahooFetcher {
	return &YahooFetcher{
		RSSFetcher:  NewRSSFetcher(urls, client, logger),
		maxArticles: maxArticles,
	}
}

// EntriesByRange filters the base entries down to .html article links and
// applies the per-feed cap.
func (y *YahooFetcher) EntriesByRange(source string, start, end time.Time) []domain.RawEntry {
	entries := y.RSSFetcher.EntriesByRange(source, start, end)

	var filtered []domain.RawEntry
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Link, ".html") {
			continue
		}
		filtered = append(filtered, entry)
		if y.maxArticles > 0 && len(filtered) == y.maxArticles {
			break
		}
	}
	return filtered
}

// YahooBodyFetcher extracts the main article text from a Yahoo Finance page.
// Yahoo serves article bodies under a handful of container variants, so
// several selectors are probed in order.
type YahooBodyFetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.ContentFetcher = (*YahooBodyFetcher)(nil)

// NewYahooBodyFetcher wires an HTTP client for article pages.
func NewYahooBodyFetcher(client *http.Client, logger *slog.Logger) *YahooBodyFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &YahooBodyFetcher{client: client, logger: logger}
}

// FetchMarkdown downloads the article page and returns its paragraph text,
// best-effort: any failure returns the empty string.
func (y *YahooBodyFetcher) FetchMarkdown(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		y.warn("fetch article page", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		y.warn("fetch article page", "url", pageURL, "status", resp.Status)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		y.warn("parse article page", "url", pageURL, "error", err)
		return ""
	}
	return extractBody(doc)
}

func extractBody(doc *goquery.Document) string {
	selectors := []string{
		"div.article-body",
		"div.caas-body",
		"article",
		"div[data-test='article-body']",
	}

	var container *goquery.Selection
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			container = sel
			break
		}
	}
	if container == nil {
		return ""
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > minParagraphLen {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func (y *YahooBodyFetcher) warn(msg string, args ...any) {
	if y.logger != nil {
		y.logger.Warn(msg, args...)
	}
}
