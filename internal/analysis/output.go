package analysis

import (
	"fmt"
	"path/filepath"

	"commentsent/internal/models"
	"commentsent/internal/store"
)

// OutputName returns the sentiment file name for a period span, e.g.
// sentiment-2018-01-12-pap.json, or sentiment-2019-11-2020-02-pap.json when the
// span crosses a year.
func OutputName(periods []models.Period, category models.Category) (string, error) {
	if len(periods) == 0 {
		return "", ErrNoPeriods
	}

	first, last := periods[0], periods[0]
	for _, p := range periods[1:] {
		if p.Before(first) {
			first = p
		}

		if last.Before(p) {
			last = p
		}
	}

	if first.Year == last.Year {
		return fmt.Sprintf("sentiment-%d-%02d-%02d-%s.json", first.Year, first.Month, last.Month, category), nil
	}

	return fmt.Sprintf("sentiment-%d-%02d-%d-%02d-%s.json", first.Year, first.Month, last.Year, last.Month, category), nil
}

// WriteResult writes one sentiment file per category into dir and returns the paths.
func WriteResult(dir string, result *Result, pretty bool) ([]string, error) {
	var paths []string

	for _, cr := range []CategoryResult{result.A, result.B} {
		name, err := OutputName(result.Periods, cr.Category)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, name)

		records := cr.Records
		if records == nil {
			records = []models.SentimentRecord{}
		}

		if err := store.WriteJSON(records, path, pretty); err != nil {
			return paths, fmt.Errorf("failed to write %s sentiment: %w", cr.Category, err)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
