package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDigest/internal/collect"
	"NewsDigest/internal/config"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/infrastructure/content"
	"NewsDigest/internal/infrastructure/email"
	"NewsDigest/internal/infrastructure/feed"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/usecase"
)

// Options narrow which feed families a run collects from.
type Options struct {
	RSSOnly    bool
	GoogleOnly bool
	DryRun     bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	store    *storage.PostgresStore
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, opts Options, logger *slog.Logger) (*Application, error) {
	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	markdown := content.NewMarkdownFetcher(nil, logger.With("component", "content"))

	var sets []collect.SourceSet
	if !opts.GoogleOnly && len(sources.RSSURLs) > 0 {
		sets = append(sets, collect.SourceSet{
			Feed:    feed.NewRSSFetcher(sources.RSSURLs, nil, logger.With("component", "feed.rss")),
			Content: markdown,
		})
	}
	if !opts.RSSOnly && len(sources.GoogleNewsTopics) > 0 {
		sets = append(sets, collect.SourceSet{
			Feed:    feed.NewGoogleNewsFetcher(sources.GoogleNewsTopics, nil, logger.With("component", "feed.googlenews")),
			Content: markdown,
		})
	}
	if !opts.RSSOnly && !opts.GoogleOnly && len(sources.YahooRSSURLs) > 0 {
		sets = append(sets, collect.SourceSet{
			Feed: feed.NewYahooFetcher(sources.YahooRSSURLs, cfg.Digest.MaxArticles, nil,
				logger.With("component", "feed.yahoo")),
			Content: feed.NewYahooBodyFetcher(nil, logger.With("component", "feed.yahoo")),
		})
	}

	aggregator := collect.NewAggregator(sets, logger.With("component", "aggregator"))

	var client *llm.Client
	if cfg.OpenAI.APIKey != "" {
		client = llm.NewClient(cfg.OpenAI, cfg.Digest.Language, logger.With("component", "llm"))
	}

	emailCfg := cfg.Email
	if opts.DryRun {
		emailCfg.DryRun = true
	}

	deps := usecase.PipelineDeps{
		Collector:     aggregator,
		Store:         store,
		Digest:        digest.NewBuilder(store, cfg.Scheduler.Location(), logger.With("component", "digest")),
		Sender:        email.NewSender(emailCfg, logger.With("component", "email")),
		TopK:          cfg.Digest.TopK,
		DaysBack:      cfg.Digest.DaysBack,
		Language:      cfg.Digest.Language,
		SubjectPrefix: cfg.Digest.SubjectPrefix,
		Logger:        logger.With("component", "pipeline"),
	}
	if client != nil {
		deps.Scorer = client
		deps.Summarizer = client
	}

	return &Application{
		cfg:      cfg,
		store:    store,
		pipeline: usecase.NewPipeline(deps),
		logger:   logger,
	}, nil
}

// Run executes one pipeline pass, or keeps running on the configured cron
// expression until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer func() { _ = a.store.Close() }()

	location := a.cfg.Scheduler.Location()

	if a.cfg.Scheduler.CronExpression == "" {
		return a.pipeline.ProcessDay(ctx, time.Now().In(location))
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, location)
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}
