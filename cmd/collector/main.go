// Package main provides the collector command-line tool for downloading monthly comment archives.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commentsent/internal/config"
	"commentsent/internal/crawler"
	"commentsent/internal/logger"
	"commentsent/internal/models"
	"commentsent/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default configs/config.yaml if present)")
	from := flag.String("from", "", "First month to collect, YYYY-MM")
	to := flag.String("to", "", "Last month to collect, YYYY-MM (defaults to -from)")
	subreddit := flag.String("subreddit", "", "Subreddit to collect (overrides config)")
	query := flag.String("query", "", "Search text (overrides config)")
	skipExisting := flag.Bool("skip-existing", false, "Skip months that already have files in the data directory")
	verbose := flag.Bool("verbose", false, "Log at debug level regardless of logging.level")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	// Used until the configured logger exists.
	bootLog := logger.NewLogger("info")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLog.Warn(fmt.Sprintf("⚠️  Could not read .env: %v", err))
	}

	cfg, err := config.Resolve(*configFile)
	if err != nil {
		bootLog.Error(fmt.Sprintf("❌ Failed to load config: %v", err))
		bootLog.Sync()
		os.Exit(1)
	}

	if *subreddit != "" {
		cfg.Archive.Subreddit = *subreddit
	}

	if *query != "" {
		cfg.Archive.Query = *query
	}

	baseLog, err := logger.NewLoggerWithFile(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		bootLog.Warn(fmt.Sprintf("⚠️  Logging to stderr only: %v", err))
	}
	defer baseLog.Sync()

	if *verbose {
		baseLog.SetLevel("debug")
	}

	log := baseLog.With("run_id", uuid.NewString(), "cmd", "collector")
	log.Debug(fmt.Sprintf("✅ Configuration loaded: %s", cfg))

	if *from == "" {
		log.Error("Please provide the months to collect with -from YYYY-MM [-to YYYY-MM]")
		printUsage()
		os.Exit(1)
	}

	periods, err := models.ParseRange(*from, *to)
	if err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, periods, *skipExisting, log); err != nil {
		log.Error(fmt.Sprintf("❌ Collection failed: %v", err))
		os.Exit(1)
	}

	log.Info("✨ Collection complete!")
}

func run(ctx context.Context, cfg *config.Config, periods []models.Period, skipExisting bool, log *logger.Logger) error {
	scraper := crawler.NewScraper(&cfg.Archive, log)
	collector := crawler.NewCollector(scraper, log)
	comments := store.New(cfg.Storage.DataDir, log,
		store.WithMaxPerFile(cfg.Storage.MaxCommentsPerFile),
		store.WithPrettyPrint(cfg.Storage.PrettyPrint),
	)

	printCollectorHeader(cfg, periods, comments, log)

	defer func() {
		crawler.LogAttemptSummary(log, scraper.Stats())
	}()

	for i, period := range periods {
		periodLog := log.With("period", period.String())

		if skipExisting {
			exists, err := comments.HasPeriod(period)
			if err != nil {
				return err
			}

			if exists {
				periodLog.Info(fmt.Sprintf("⏭️  %s already collected, skipping", period))

				continue
			}
		}

		periodLog.Info(fmt.Sprintf("📦 Month %d/%d: %s", i+1, len(periods), period))

		startTime := time.Now()

		monthComments, err := collector.CollectMonth(ctx, period.Year, period.Month, cfg.Archive.Subreddit, cfg.Archive.Query)
		if err != nil {
			return fmt.Errorf("collect %s: %w", period, err)
		}

		paths, err := comments.SavePeriod(period, monthComments)
		if err != nil {
			return fmt.Errorf("save %s: %w", period, err)
		}

		periodLog.Info(fmt.Sprintf("✅ Saved %s comments in %s", humanize.Comma(int64(len(monthComments))), time.Since(startTime).Round(time.Second)),
			"files", paths,
		)
	}

	return nil
}

func printCollectorHeader(cfg *config.Config, periods []models.Period, comments *store.Store, log *logger.Logger) {
	log.Info("🕷️  Comment Collector")
	log.Info(fmt.Sprintf("Archive: %s", cfg.Archive.BaseURL))
	log.Info(fmt.Sprintf("Subreddit: r/%s, query: %q, page size %d", cfg.Archive.Subreddit, cfg.Archive.Query, cfg.Archive.PageSize))
	log.Info(fmt.Sprintf("Months: %s to %s (%d)", periods[0], periods[len(periods)-1], len(periods)))
	log.Info(fmt.Sprintf("Retry policy: unlimited attempts, %dms initial, %.1fx backoff, %ds timeout",
		cfg.Archive.Retry.InitialDelayMs,
		cfg.Archive.Retry.BackoffMultiplier,
		cfg.Archive.Retry.TimeoutSec))
	log.Info(fmt.Sprintf("Output: %s", comments.Dir()))
}

func printUsage() {
	fmt.Println("Usage: ./bin/collector -from YYYY-MM [-to YYYY-MM] [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/collector -from 2020-06")
	fmt.Println("  ./bin/collector -from 2020-06 -verbose")
	fmt.Println("  ./bin/collector -config configs/config.yaml -from 2018-01 -to 2018-12 -skip-existing")
	fmt.Println("  COMMENTSENT_SUBREDDIT=malaysia ./bin/collector -from 2020-01 -query election")
}
