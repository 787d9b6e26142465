package formatter

import (
	"fmt"
	"sort"
	"strings"

	"commentsent/internal/analysis"
	"commentsent/internal/models"
	"commentsent/internal/sentiment"
	"commentsent/pkg/utils"

	"github.com/dustin/go-humanize"
)

const (
	histogramBarWidth = 40
	previewLength     = 80
	extremesShown     = 3
)

// RenderSummaryTable renders one row per category summary.
func RenderSummaryTable(summaries []sentiment.Summary) string {
	header := []string{"Category", "Comments", "Mean", "Min", "Max", "Positive", "Neutral", "Negative"}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		minScore, maxScore := "n/a", "n/a"
		if s.HasScores {
			minScore = fmt.Sprintf("%.3f", s.Min)
			maxScore = fmt.Sprintf("%.3f", s.Max)
		}

		rows = append(rows, []string{
			string(s.Category),
			humanize.Comma(int64(s.Count)),
			s.MeanString(),
			minScore,
			maxScore,
			humanize.Comma(int64(s.Positive)),
			humanize.Comma(int64(s.Neutral)),
			humanize.Comma(int64(s.Negative)),
		})
	}

	return strings.Join(FormatTable(header, rows), "\n") + "\n"
}

// RenderHistogram draws the score distribution of s as text bars, one line per bin.
func RenderHistogram(s sentiment.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s comments)\n", s.Category, humanize.Comma(int64(s.Count)))

	if !s.HasScores {
		sb.WriteString("  no scores\n")

		return sb.String()
	}

	h := s.Histogram
	peak := h.MaxCount()
	width := h.BinWidth()

	for i, count := range h.Counts {
		low := h.Low + float64(i)*width
		high := low + width

		bar := 0
		if peak > 0 {
			bar = count * histogramBarWidth / peak
		}

		if count > 0 && bar == 0 {
			bar = 1
		}

		fmt.Fprintf(&sb, "  [%+.2f, %+.2f) %-*s %d\n", low, high, histogramBarWidth, strings.Repeat("#", bar), count)
	}

	return sb.String()
}

// RenderExtremes lists the most positive and most negative records of a category.
func RenderExtremes(category models.Category, records []models.SentimentRecord) string {
	if len(records) == 0 {
		return ""
	}

	sorted := append([]models.SentimentRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	n := min(extremesShown, len(sorted))
	strs := utils.NewStringHelper()

	header := []string{"Score", "Author", "Comment"}

	var rows [][]string
	for _, r := range sorted[:n] {
		rows = append(rows, []string{fmt.Sprintf("%+.3f", r.Score), r.AuthorName(), strs.Preview(r.Body, previewLength)})
	}

	for i := max(n, len(sorted)-n); i < len(sorted); i++ {
		r := sorted[i]
		rows = append(rows, []string{fmt.Sprintf("%+.3f", r.Score), r.AuthorName(), strs.Preview(r.Body, previewLength)})
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s extremes\n\n", category)
	sb.WriteString(strings.Join(FormatTable(header, rows), "\n"))
	sb.WriteString("\n")

	return sb.String()
}

// RenderReport renders the full markdown report of an analysis run.
func RenderReport(result *analysis.Result) string {
	var sb strings.Builder

	sb.WriteString("# Sentiment report\n\n")

	if len(result.Periods) > 0 {
		first, last := result.Periods[0], result.Periods[len(result.Periods)-1]
		fmt.Fprintf(&sb, "Periods: %s to %s (%d months)\n\n", first, last, len(result.Periods))
	}

	overview := [][]string{
		{"Loaded", humanize.Comma(int64(result.Total))},
		{"Denylisted", humanize.Comma(int64(result.Denied))},
		{string(result.A.Category), humanize.Comma(int64(len(result.A.Records)))},
		{string(result.B.Category), humanize.Comma(int64(len(result.B.Records)))},
		{"Ambiguous", humanize.Comma(int64(result.Ambiguous))},
		{"Unclassified", humanize.Comma(int64(result.Unclassified))},
	}

	sb.WriteString(strings.Join(FormatTable([]string{"Comments", "Count"}, overview), "\n"))
	sb.WriteString("\n\n## Summary\n\n")
	sb.WriteString(RenderSummaryTable([]sentiment.Summary{result.A.Summary, result.B.Summary}))
	sb.WriteString("\n## Distribution\n\n```\n")
	sb.WriteString(RenderHistogram(result.A.Summary))
	sb.WriteString("\n")
	sb.WriteString(RenderHistogram(result.B.Summary))
	sb.WriteString("```\n")

	for _, cr := range []analysis.CategoryResult{result.A, result.B} {
		if extremes := RenderExtremes(cr.Category, cr.Records); extremes != "" {
			sb.WriteString("\n")
			sb.WriteString(extremes)
		}
	}

	return sb.String()
}
