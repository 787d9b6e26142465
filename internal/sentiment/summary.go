package sentiment

import (
	"fmt"
	"math"

	"commentsent/internal/models"
)

const (
	// HistogramBins is the number of equal-width bins over [-1, 1].
	HistogramBins = 30

	// PolarityThreshold separates positive and negative compound scores from neutral ones.
	PolarityThreshold = 0.05

	scoreMin = -1.0
	scoreMax = 1.0
)

// Histogram counts scores in equal-width bins over [Low, High].
type Histogram struct {
	Counts []int
	Low    float64
	High   float64
}

// BinWidth returns the width of a single bin.
func (h Histogram) BinWidth() float64 {
	if len(h.Counts) == 0 {
		return 0
	}

	return (h.High - h.Low) / float64(len(h.Counts))
}

// MaxCount returns the largest bin count.
func (h Histogram) MaxCount() int {
	m := 0
	for _, c := range h.Counts {
		m = max(m, c)
	}

	return m
}

// Summary aggregates the scores of one category. For an empty input HasScores
// is false and Mean, Min and Max are zero.
type Summary struct {
	Category  models.Category
	Histogram Histogram
	Mean      float64
	Min       float64
	Max       float64
	Count     int
	Positive  int
	Neutral   int
	Negative  int
	HasScores bool
}

// Summarize computes aggregate statistics over records.
func Summarize(category models.Category, records []models.SentimentRecord) Summary {
	s := Summary{
		Category: category,
		Count:    len(records),
		Histogram: Histogram{
			Counts: make([]int, HistogramBins),
			Low:    scoreMin,
			High:   scoreMax,
		},
	}

	if len(records) == 0 {
		return s
	}

	s.HasScores = true
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)

	var sum float64

	for _, r := range records {
		sum += r.Score
		s.Min = math.Min(s.Min, r.Score)
		s.Max = math.Max(s.Max, r.Score)

		switch {
		case r.Score >= PolarityThreshold:
			s.Positive++
		case r.Score <= -PolarityThreshold:
			s.Negative++
		default:
			s.Neutral++
		}

		s.Histogram.Counts[binIndex(r.Score)]++
	}

	s.Mean = sum / float64(len(records))

	return s
}

func binIndex(score float64) int {
	idx := int((score - scoreMin) / (scoreMax - scoreMin) * HistogramBins)

	return min(max(idx, 0), HistogramBins-1)
}

// MeanString formats the mean with three decimals, or "n/a" without scores.
func (s Summary) MeanString() string {
	if !s.HasScores {
		return "n/a"
	}

	return fmt.Sprintf("%.3f", s.Mean)
}
