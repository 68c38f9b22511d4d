// Package content fetches article pages and converts them to markdown for
// downstream summarization.
package content

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"NewsDigest/internal/ports"
)

// maxBodyBytes caps how much of a page is read; news articles fit well
// within this and some sites stream endlessly.
const maxBodyBytes = 4 << 20

// MarkdownFetcher implements the best-effort content fetch collaborator:
// GET the URL, convert the HTML to markdown, return "" on any failure.
type MarkdownFetcher struct {
	client    *http.Client
	converter *converter.Converter
	logger    *slog.Logger
}

var _ ports.ContentFetcher = (*MarkdownFetcher)(nil)

// NewMarkdownFetcher builds the fetcher with a commonmark converter.
func NewMarkdownFetcher(client *http.Client, logger *slog.Logger) *MarkdownFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &MarkdownFetcher{
		client: client,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
		logger: logger,
	}
}

// FetchMarkdown returns the page content as markdown, or "" on any failure.
func (m *MarkdownFetcher) FetchMarkdown(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := m.client.Do(req)
	if err != nil {
		m.warn("fetch content", "url", url, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.warn("fetch content", "url", url, "status", resp.Status)
		return ""
	}

	html, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		m.warn("read content", "url", url, "error", err)
		return ""
	}

	markdown, err := m.converter.ConvertString(string(html), converter.WithDomain(url))
	if err != nil {
		m.warn("convert content", "url", url, "error", err)
		return ""
	}
	return strings.TrimSpace(markdown)
}

func (m *MarkdownFetcher) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
