// Package digest turns today's persisted, summarized articles into the
// newsletter items and HTML body of the daily email.
package digest

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"NewsDigest/internal/language"
	"NewsDigest/internal/ports"
)

// NewsItem is one digest entry, ready for email composition.
type NewsItem struct {
	Category string
	Title    string
	Summary  string // HTML fragment
	Source   string
	Link     string
}

// Builder reads the store and formats newsletter items.
type Builder struct {
	store    ports.ArticleStore
	location *time.Location
	logger   *slog.Logger
}

// NewBuilder wires the store and the local calendar to aggregate on.
func NewBuilder(store ports.ArticleStore, location *time.Location, logger *slog.Logger) *Builder {
	if location == nil {
		location = time.UTC
	}
	return &Builder{store: store, location: location, logger: logger}
}

// BuildDay returns the digest items for the calendar day containing the
// given instant, newest-first. Articles without a summary are not ready for
// the digest and are skipped; that is a readiness filter, not an error.
func (b *Builder) BuildDay(ctx context.Context, day time.Time) ([]NewsItem, error) {
	local := day.In(b.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.location)
	// Next local midnight, not start+24h: DST days are 23 or 25 hours long.
	end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, b.location).Add(-time.Nanosecond)

	articles, err := b.store.ArticlesCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("query articles for %s: %w", start.Format("2006-01-02"), err)
	}

	items := make([]NewsItem, 0, len(articles))
	for _, article := range articles {
		if article.Summary == "" {
			if b.logger != nil {
				b.logger.Debug("skip unsummarized article", "link", article.Link)
			}
			continue
		}
		items = append(items, NewsItem{
			Category: categoryOf(article.Source),
			Title:    article.Title,
			Summary:  FormatSummaryHTML(article.Summary),
			Source:   article.Source,
			Link:     article.Link,
		})
	}
	return items, nil
}

// categoryOf derives the display category from a source tag. Topic-tagged
// sources like "GoogleNews:stock market" use the topic; plain feed names are
// their own category.
func categoryOf(source string) string {
	if _, topic, ok := strings.Cut(source, ":"); ok && strings.TrimSpace(topic) != "" {
		return strings.TrimSpace(topic)
	}
	return source
}

// FormatSummaryHTML converts a labelled plain-text summary into an HTML
// fragment. The language is inferred per summary from whichever section
// header appears first, so English and Spanish summaries can coexist in one
// digest. When no recognized header is found, the raw text is returned with
// line breaks preserved.
func FormatSummaryHTML(summary string) string {
	vocab, found := detectVocabulary(summary)
	if !found {
		return rawDump(summary)
	}

	sections := splitSections(summary, vocab)
	if len(sections) == 0 {
		return rawDump(summary)
	}

	var b strings.Builder
	for _, sec := range sections {
		b.WriteString("<p><strong>" + html.EscapeString(sec.display) + "</strong></p>\n")
		if sec.bulleted {
			b.WriteString("<ul>\n")
			for _, line := range strings.Split(sec.body, "\n") {
				line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•-*"))
				if line == "" {
					continue
				}
				b.WriteString("<li>" + html.EscapeString(line) + "</li>\n")
			}
			b.WriteString("</ul>\n")
		} else {
			body := strings.TrimSpace(sec.body)
			if body != "" {
				b.WriteString("<p>" + html.EscapeString(body) + "</p>\n")
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type section struct {
	display  string
	body     string
	bulleted bool
}

type headerSpec struct {
	label    string
	display  string
	bulleted bool
}

func headerSpecs(v language.Vocabulary) []headerSpec {
	return []headerSpec{
		{label: v.Overview, display: v.DisplayOverview},
		{label: v.KeyPoints, display: v.DisplayKeyPoints, bulleted: true},
		{label: v.WhyItMatters, display: v.DisplayWhyItMatters},
		{label: v.SimpleExplanation, display: v.DisplaySimpleExplanation},
	}
}

// detectVocabulary picks the language whose header occurs earliest in the
// text. Both vocabularies are always probed; no global language flag is
// consulted.
func detectVocabulary(summary string) (language.Vocabulary, bool) {
	upper := strings.ToUpper(summary)
	best := -1
	var bestVocab language.Vocabulary

	for _, vocab := range language.All() {
		for _, spec := range headerSpecs(vocab) {
			idx := strings.Index(upper, strings.ToUpper(spec.label)+":")
			if idx >= 0 && (best < 0 || idx < best) {
				best = idx
				bestVocab = vocab
			}
		}
	}
	return bestVocab, best >= 0
}

func splitSections(summary string, vocab language.Vocabulary) []section {
	specs := headerSpecs(vocab)

	var sections []section
	var current *section

	for _, line := range strings.Split(summary, "\n") {
		matched := false
		for _, spec := range specs {
			prefix := spec.label + ":"
			if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), prefix) {
				if current != nil {
					sections = append(sections, *current)
				}
				rest := strings.TrimSpace(line)[len(prefix):]
				current = &section{display: spec.display, body: strings.TrimSpace(rest), bulleted: spec.bulleted}
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if current != nil {
			if current.body == "" {
				current.body = line
			} else {
				current.body += "\n" + line
			}
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func rawDump(summary string) string {
	return strings.ReplaceAll(html.EscapeString(summary), "\n", "<br>\n")
}

// RenderHTML composes the full digest email body from the day's items.
func RenderHTML(items []NewsItem, title string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString("<h2>" + html.EscapeString(title) + "</h2>\n")

	for _, item := range items {
		b.WriteString("<h3><a href=\"" + html.EscapeString(item.Link) + "\">" + html.EscapeString(item.Title) + "</a></h3>\n")
		b.WriteString("<p><em>" + html.EscapeString(item.Category) + " — " + html.EscapeString(item.Source) + "</em></p>\n")
		b.WriteString(item.Summary)
		b.WriteString("\n<hr>\n")
	}

	b.WriteString("</body></html>")
	return b.String()
}
