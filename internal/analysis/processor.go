// Package analysis runs the offline pipeline: denylist, two-pass keyword
// classification and sentiment scoring.
package analysis

import (
	"errors"
	"fmt"

	"commentsent/internal/keywords"
	"commentsent/internal/logger"
	"commentsent/internal/models"
	"commentsent/internal/sentiment"

	"github.com/dustin/go-humanize"
)

// Pipeline errors.
var (
	ErrNoPeriods       = errors.New("no periods to analyze")
	ErrMissingPatterns = errors.New("both keyword pattern sets are required")
	ErrInvalidCategory = errors.New("category names must be non-empty and distinct")
)

// Loader supplies stored comments for a list of periods.
type Loader interface {
	LoadPeriods(periods []models.Period) ([]models.Comment, error)
}

// CategoryResult holds the comments and scores of one category.
type CategoryResult struct {
	Category models.Category
	Comments []models.Comment
	Records  []models.SentimentRecord
	Summary  sentiment.Summary
}

// Result is the outcome of one pipeline run.
type Result struct {
	Periods []models.Period
	A       CategoryResult
	B       CategoryResult
	// Total counts comments before the denylist.
	Total  int
	Denied int
	// Ambiguous comments matched both sets, Unclassified matched neither.
	Ambiguous    int
	Unclassified int
}

// Processor classifies and scores comments.
type Processor struct {
	denylist  *keywords.Denylist
	setA      *keywords.PatternSet
	setB      *keywords.PatternSet
	scorer    *sentiment.Scorer
	log       *logger.Logger
	categoryA models.Category
	categoryB models.Category
}

// Config wires a Processor.
type Config struct {
	Denylist  *keywords.Denylist
	SetA      *keywords.PatternSet
	SetB      *keywords.PatternSet
	Scorer    *sentiment.Scorer
	CategoryA models.Category
	CategoryB models.Category
}

// NewProcessor creates a new processor instance.
func NewProcessor(cfg Config, log *logger.Logger) (*Processor, error) {
	if cfg.SetA == nil || cfg.SetB == nil {
		return nil, ErrMissingPatterns
	}

	if cfg.CategoryA == "" || cfg.CategoryB == "" || cfg.CategoryA == cfg.CategoryB {
		return nil, fmt.Errorf("%w: %q, %q", ErrInvalidCategory, cfg.CategoryA, cfg.CategoryB)
	}

	p := &Processor{
		denylist:  cfg.Denylist,
		setA:      cfg.SetA,
		setB:      cfg.SetB,
		scorer:    cfg.Scorer,
		log:       log,
		categoryA: cfg.CategoryA,
		categoryB: cfg.CategoryB,
	}

	if p.denylist == nil {
		p.denylist = keywords.NewDenylist(keywords.DefaultDeniedAuthor)
	}

	if p.scorer == nil {
		p.scorer = sentiment.NewScorer()
	}

	return p, nil
}

// Process classifies comments into both categories and scores each category.
func (p *Processor) Process(comments []models.Comment) *Result {
	result := &Result{Total: len(comments)}

	// 1. Drop denylisted authors
	kept, denied := p.denylist.Apply(comments)
	result.Denied = denied

	// 2. Classify A against B, then B against A
	p.log.Info(fmt.Sprintf("Filtering comments for %s keywords...", p.categoryA))
	forA := keywords.Filter(kept, p.setA, p.setB)
	p.log.Info(fmt.Sprintf("Found %s %s comments", humanize.Comma(int64(len(forA))), p.categoryA))

	p.log.Info(fmt.Sprintf("Filtering comments for %s keywords...", p.categoryB))
	forB := keywords.Filter(kept, p.setB, p.setA)
	p.log.Info(fmt.Sprintf("Found %s %s comments", humanize.Comma(int64(len(forB))), p.categoryB))

	for _, c := range kept {
		matchA, matchB := p.setA.Matches(c.Body), p.setB.Matches(c.Body)

		switch {
		case matchA && matchB:
			result.Ambiguous++
		case !matchA && !matchB:
			result.Unclassified++
		}
	}

	// 3. Score
	result.A = p.score(p.categoryA, forA)
	result.B = p.score(p.categoryB, forB)

	return result
}

func (p *Processor) score(category models.Category, comments []models.Comment) CategoryResult {
	p.log.Info(fmt.Sprintf("Getting sentiments for %s comments...", category))

	records := p.scorer.Score(comments)

	return CategoryResult{
		Category: category,
		Comments: comments,
		Records:  records,
		Summary:  sentiment.Summarize(category, records),
	}
}

// Run loads the given periods and processes them.
func (p *Processor) Run(loader Loader, periods []models.Period) (*Result, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	comments, err := loader.LoadPeriods(periods)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	result := p.Process(comments)
	result.Periods = append([]models.Period(nil), periods...)

	p.log.Info("Analysis complete",
		"total", result.Total,
		"denied", result.Denied,
		string(p.categoryA), len(result.A.Records),
		string(p.categoryB), len(result.B.Records),
		"ambiguous", result.Ambiguous,
		"unclassified", result.Unclassified,
	)

	return result, nil
}
