// Package sentiment scores comment text with the VADER lexicon and summarizes the results.
package sentiment

import (
	"commentsent/internal/models"

	"github.com/jonreiter/govader"
)

// Analyzer returns a compound polarity in [-1, 1] for text.
type Analyzer interface {
	Compound(text string) float64
}

// VaderAnalyzer is the lexicon and rule based VADER model.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderAnalyzer loads the VADER lexicon.
func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound implements Analyzer.
func (v *VaderAnalyzer) Compound(text string) float64 {
	return clamp(v.analyzer.PolarityScores(text).Compound)
}

func clamp(score float64) float64 {
	switch {
	case score > 1:
		return 1
	case score < -1:
		return -1
	default:
		return score
	}
}

// Scorer turns comments into sentiment records.
type Scorer struct {
	analyzer          Analyzer
	includeProvenance bool
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithAnalyzer replaces the VADER model.
func WithAnalyzer(a Analyzer) Option {
	return func(s *Scorer) {
		s.analyzer = a
	}
}

// WithProvenance copies author and created_utc into each record.
func WithProvenance(include bool) Option {
	return func(s *Scorer) {
		s.includeProvenance = include
	}
}

// NewScorer creates a scorer backed by VADER unless another analyzer is given.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{includeProvenance: true}

	for _, opt := range opts {
		opt(s)
	}

	if s.analyzer == nil {
		s.analyzer = NewVaderAnalyzer()
	}

	return s
}

// ScoreText returns the compound score of a single text.
func (s *Scorer) ScoreText(text string) float64 {
	return s.analyzer.Compound(text)
}

// Score returns one record per comment in input order.
func (s *Scorer) Score(comments []models.Comment) []models.SentimentRecord {
	records := make([]models.SentimentRecord, 0, len(comments))

	for _, c := range comments {
		record := models.SentimentRecord{
			Body:  c.Body,
			Score: s.ScoreText(c.Body),
		}

		if s.includeProvenance {
			record = record.WithProvenance(c)
		}

		records = append(records, record)
	}

	return records
}
