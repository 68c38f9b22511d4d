package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/language"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/rank"
)

// Collector produces the day's extraction from all configured feeds.
type Collector interface {
	CollectRange(ctx context.Context, start, end time.Time) domain.Extraction
}

// DigestBuilder aggregates the persisted, summarized articles of one day.
type DigestBuilder interface {
	BuildDay(ctx context.Context, day time.Time) ([]digest.NewsItem, error)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Collector  Collector
	Scorer     ports.Scorer
	Summarizer ports.Summarizer
	Store      ports.ArticleStore
	Digest     DigestBuilder
	Sender     ports.DigestSender

	TopK          int
	DaysBack      int
	Language      language.Code
	SubjectPrefix string
	Logger        *slog.Logger
}

// Pipeline implements the daily ingestion workflow: fetch, normalize,
// aggregate, rank/select, summarize, persist, digest, email. Each phase runs
// sequentially; only persistence failures abort the remaining phases.
type Pipeline struct {
	collector  Collector
	scorer     ports.Scorer
	summarizer ports.Summarizer
	store      ports.ArticleStore
	digest     DigestBuilder
	sender     ports.DigestSender

	topK          int
	daysBack      int
	vocab         language.Vocabulary
	subjectPrefix string
	logger        *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	daysBack := deps.DaysBack
	if daysBack <= 0 {
		daysBack = 1
	}
	return &Pipeline{
		collector:     deps.Collector,
		scorer:        deps.Scorer,
		summarizer:    deps.Summarizer,
		store:         deps.Store,
		digest:        deps.Digest,
		sender:        deps.Sender,
		topK:          deps.TopK,
		daysBack:      daysBack,
		vocab:         language.Lookup(deps.Language),
		subjectPrefix: deps.SubjectPrefix,
		logger:        deps.Logger,
	}
}

// ProcessDay runs the full pipeline for one day.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	if p.collector == nil {
		return nil
	}

	start := day.AddDate(0, 0, -p.daysBack)
	extraction := p.collector.CollectRange(ctx, start, day)

	total := extraction.TotalArticles()
	p.info("collected articles", "total", total, "collections", len(extraction.Collections))
	if total == 0 {
		return nil
	}

	selected := extraction
	if p.scorer != nil {
		selected = rank.Select(ctx, extraction, p.scorer, p.topK, p.logger)
		p.info("ranked and selected articles", "survivors", selected.TotalArticles(), "top_k", p.topK)
	}

	if p.summarizer != nil {
		selected = p.summarizeAll(ctx, selected)
	}

	if p.store == nil {
		return nil
	}

	extractionID, err := p.store.InsertExtraction(ctx, selected)
	if err != nil {
		// Persistence is the only fatal category: without stored rows there
		// is nothing correct to digest or email.
		return fmt.Errorf("persist extraction: %w", err)
	}
	p.info("persisted extraction", "extraction_id", extractionID)

	if p.digest == nil || p.sender == nil {
		return nil
	}

	items, err := p.digest.BuildDay(ctx, day)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if len(items) == 0 {
		p.info("no summarized articles for digest, skipping email")
		return nil
	}

	subject := fmt.Sprintf("%s - %s", p.subjectPrefix, day.Format("2006-01-02"))
	htmlBody := digest.RenderHTML(items, subject)

	recipients, err := p.store.ListRecipientEmails(ctx)
	if err != nil {
		p.warn("list recipients failed, digest not sent", "error", err)
		return nil
	}

	if err := p.sender.Send(ctx, subject, htmlBody, recipients); err != nil {
		p.warn("send digest failed", "error", err)
	}
	return nil
}

// summarizeAll attaches a rendered summary to every selected article. A
// failed summarization degrades to an error placeholder and the run
// continues.
func (p *Pipeline) summarizeAll(ctx context.Context, extraction domain.Extraction) domain.Extraction {
	var out domain.Extraction
	for _, col := range extraction.Collections {
		for _, article := range col.Articles {
			summary, err := p.summarizer.Summarize(ctx, article.Title, article.Content)
			if err != nil {
				p.warn("summarize article failed", "link", article.Link, "error", err)
				article.Summary = "Error: " + err.Error()
			} else {
				article.Summary = language.FormatSummary(p.vocab, summary)
			}
			out.EnsureCollection(col.Source).Add(article)
		}
	}
	return out
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
