// Package main provides the analyzer command-line tool for classifying stored comments and scoring their sentiment.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"commentsent/internal/analysis"
	"commentsent/internal/config"
	"commentsent/internal/formatter"
	"commentsent/internal/keywords"
	"commentsent/internal/logger"
	"commentsent/internal/models"
	"commentsent/internal/sentiment"
	"commentsent/internal/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file (default configs/config.yaml if present)")
	from := flag.String("from", "", "First month to analyze, YYYY-MM")
	to := flag.String("to", "", "Last month to analyze, YYYY-MM (defaults to -from)")
	keywordsFile := flag.String("keywords", "", "Keywords YAML file (overrides config)")
	reportPath := flag.String("report", "", "Write the markdown report to this file instead of stdout")
	verbose := flag.Bool("verbose", false, "Log at debug level regardless of logging.level")
	flag.Parse()

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

	if *keywordsFile != "" {
		cfg.Analysis.KeywordsFile = *keywordsFile
	}

	baseLog, err := logger.NewLoggerWithFile(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		bootLog.Warn(fmt.Sprintf("⚠️  Logging to stderr only: %v", err))
	}
	defer baseLog.Sync()

	if *verbose {
		baseLog.SetLevel("debug")
	}

	log := baseLog.With("run_id", uuid.NewString(), "cmd", "analyzer")
	log.Debug(fmt.Sprintf("✅ Configuration loaded: %s", cfg))

	if *from == "" {
		log.Error("Please provide the months to analyze with -from YYYY-MM [-to YYYY-MM]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	periods, err := models.ParseRange(*from, *to)
	if err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		os.Exit(1)
	}

	log.Info("🚀 Starting sentiment analysis")

	// 1. Keywords
	// -----------
	log.Info(fmt.Sprintf("📂 Loading keywords: %s", cfg.Analysis.KeywordsFile))

	processor, err := buildProcessor(cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		os.Exit(1)
	}

	// 2. Load and process
	// -------------------
	comments := store.New(cfg.Storage.DataDir, log)
	log.Info(fmt.Sprintf("📂 Reading comments from: %s", comments.Dir()))

	result, err := processor.Run(comments, periods)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Analysis failed: %v", err))
		os.Exit(1)
	}

	// 3. Output
	// ---------
	paths, err := analysis.WriteResult(cfg.OutputDir(), result, cfg.Storage.PrettyPrint)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Writing results failed: %v", err))
		os.Exit(1)
	}

	for _, p := range paths {
		log.Info(fmt.Sprintf("✅ Saved to: %s", p))
	}

	report := formatter.RenderReport(result)

	if *reportPath == "" {
		fmt.Print(report)
	} else {
		if dir := filepath.Dir(*reportPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Error(fmt.Sprintf("❌ Could not create report directory: %v", err))
				os.Exit(1)
			}
		}

		if err := os.WriteFile(*reportPath, []byte(report), 0644); err != nil {
			log.Error(fmt.Sprintf("❌ Writing report failed: %v", err))
			os.Exit(1)
		}

		log.Info(fmt.Sprintf("📝 Report written to: %s", *reportPath))
	}

	log.Info(fmt.Sprintf("Average %s sentiment: %s", result.A.Category, result.A.Summary.MeanString()))
	log.Info(fmt.Sprintf("Average %s sentiment: %s", result.B.Category, result.B.Summary.MeanString()))
	log.Info("✨ Analysis complete!")
}

func buildProcessor(cfg *config.Config, log *logger.Logger) (*analysis.Processor, error) {
	sets, err := keywords.LoadKeywords(cfg.Analysis.KeywordsFile)
	if err != nil {
		return nil, err
	}

	setA, err := keywords.Compile(sets.A)
	if err != nil {
		return nil, err
	}

	setB, err := keywords.Compile(sets.B)
	if err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("Compiled %d %s and %d %s patterns",
		setA.Len(), cfg.Analysis.Categories.A, setB.Len(), cfg.Analysis.Categories.B))

	return analysis.NewProcessor(analysis.Config{
		Denylist:  keywords.NewDenylist(cfg.Analysis.Denylist...),
		SetA:      setA,
		SetB:      setB,
		Scorer:    sentiment.NewScorer(sentiment.WithProvenance(cfg.Analysis.IncludeProvenance)),
		CategoryA: models.Category(cfg.Analysis.Categories.A),
		CategoryB: models.Category(cfg.Analysis.Categories.B),
	}, log)
}
