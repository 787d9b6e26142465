// Package crawler pages through the comment archive and groups results by month.
package crawler

import (
	"context"
	"fmt"
	"time"

	"commentsent/internal/logger"
	"commentsent/internal/models"

	"github.com/dustin/go-humanize"
)

// Collector drives a Fetcher across a time window.
type Collector struct {
	fetcher Fetcher
	log     *logger.Logger
}

// NewCollector creates a collector over fetcher.
func NewCollector(fetcher Fetcher, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		log:     log,
	}
}

// CollectMonth returns every comment posted to subreddit during the given calendar month.
func (c *Collector) CollectMonth(ctx context.Context, year, month int, subreddit, query string) ([]models.Comment, error) {
	period, err := models.NewPeriod(year, month)
	if err != nil {
		return nil, err
	}

	start, end := period.Bounds()

	return c.CollectRange(ctx, start, end, subreddit, query)
}

// CollectRange pages forward from start until the archive returns an empty page.
// The cursor is the created_utc of the last comment of each page and never moves
// backwards. Comments are returned in arrival order without deduplication.
func (c *Collector) CollectRange(ctx context.Context, start, end time.Time, subreddit, query string) ([]models.Comment, error) {
	after := start.Unix()
	before := end.Unix()

	var all []models.Comment

	for page := 1; ; page++ {
		comments, err := c.fetcher.Fetch(ctx, after, before, subreddit, query)
		if err != nil {
			return all, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		if len(comments) == 0 {
			break
		}

		all = append(all, comments...)

		last := comments[len(comments)-1].CreatedUTC
		if last >= after {
			after = last
		} else {
			c.log.Warn("archive returned an older cursor, keeping previous",
				"page", page,
				"cursor", after,
				"last_created_utc", last,
			)
		}

		c.log.Info(fmt.Sprintf("%d comments up till %s", len(comments), time.Unix(after, 0).UTC().Format(time.DateTime)),
			"page", page,
			"total", humanize.Comma(int64(len(all))),
		)
	}

	return all, nil
}
