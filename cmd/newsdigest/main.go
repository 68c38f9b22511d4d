package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/logging"
)

func main() {
	rssOnly := flag.Bool("rss-only", false, "collect only the configured RSS feeds")
	googleOnly := flag.Bool("google-only", false, "collect only the configured Google News topics")
	dryRun := flag.Bool("dry-run", false, "compose the digest without sending email")
	flag.Parse()

	if *rssOnly && *googleOnly {
		fmt.Fprintln(os.Stderr, "cannot use -rss-only and -google-only together")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, app.Options{
		RSSOnly:    *rssOnly,
		GoogleOnly: *googleOnly,
		DryRun:     *dryRun,
	}, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
