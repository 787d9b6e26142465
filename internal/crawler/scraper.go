package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"commentsent/internal/config"
	"commentsent/internal/logger"
	"commentsent/internal/models"
	"commentsent/pkg/utils"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrMissingDataField     = errors.New("response has no data field")
	ErrInvalidBaseURL       = errors.New("invalid archive base url")
)

// Fetcher returns one page of comments created in (after, before].
type Fetcher interface {
	Fetch(ctx context.Context, after, before int64, subreddit, query string) ([]models.Comment, error)
}

// Scraper queries the comment archive, retrying failed requests until they succeed.
type Scraper struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
	limiter     *rate.Limiter
	clock       clockwork.Clock
	headers     *utils.HTTPHelper
	log         *logger.Logger
	baseURL     string
	stats       AttemptLog
	pageSize    int
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the HTTP client, e.g. to shorten timeouts in tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		s.client = c
	}
}

// WithClock replaces the clock used for retry delays.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scraper) {
		s.clock = c
	}
}

// NewScraper creates a scraper for the archive described by cfg.
func NewScraper(cfg *config.ArchiveConfig, log *logger.Logger, opts ...Option) *Scraper {
	retry := cfg.Retry

	s := &Scraper{
		client: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		retryPolicy: &retry,
		clock:       clockwork.NewRealClock(),
		headers:     utils.NewHTTPHelper(cfg.UserAgent),
		log:         log,
		baseURL:     cfg.BaseURL,
		pageSize:    cfg.PageSize,
	}

	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fetch requests one page. Transport failures, non-2xx statuses, timeouts and
// undecodable bodies are logged and retried without limit. An error is only
// returned when ctx is done or the request URL cannot be built.
func (s *Scraper) Fetch(ctx context.Context, after, before int64, subreddit, query string) ([]models.Comment, error) {
	reqURL, err := s.buildURL(after, before, subreddit, query)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("fetch interrupted: %w", err)
			}
		}

		comments, statusCode, duration, err := s.fetchOnce(ctx, reqURL)
		s.stats.Record(AttemptResult{
			Timestamp:  s.clock.Now(),
			URL:        reqURL,
			Attempt:    attempt,
			Duration:   duration,
			StatusCode: statusCode,
			Success:    err == nil,
			Error:      errString(err),
		})

		if err == nil {
			return comments, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch interrupted: %w", ctxErr)
		}

		delay := s.retryPolicy.GetRetryDelay(attempt)
		s.log.Warn("Failed, trying again",
			"attempt", attempt,
			"status", statusCode,
			"error", err,
			"retry_in", delay,
		)

		if delay > 0 {
			select {
			case <-s.clock.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("fetch interrupted: %w", ctx.Err())
			}
		}
	}
}

// Stats returns a summary of every attempt made so far.
func (s *Scraper) Stats() AttemptStats {
	return s.stats.Stats()
}

func (s *Scraper) buildURL(after, before int64, subreddit, query string) (string, error) {
	if !s.headers.IsValidURL(s.baseURL) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, s.baseURL)
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	q := u.Query()
	q.Set("size", strconv.Itoa(s.pageSize))
	q.Set("after", strconv.FormatInt(after, 10))
	q.Set("before", strconv.FormatInt(before, 10))
	q.Set("subreddit", subreddit)

	if query != "" {
		q.Set("q", query)
	}

	u.RawQuery = q.Encode()

	return u.String(), nil
}

type archiveResponse struct {
	Data *[]models.Comment `json:"data"`
}

// fetchOnce returns (comments, statusCode, duration, error).
func (s *Scraper) fetchOnce(ctx context.Context, reqURL string) ([]models.Comment, int, time.Duration, error) {
	startTime := s.clock.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = s.headers.BuildHeaders(nil)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, s.clock.Since(startTime), fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, resp.StatusCode, s.clock.Since(startTime), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var body archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, resp.StatusCode, s.clock.Since(startTime), fmt.Errorf("failed to decode response: %w", err)
	}

	if body.Data == nil {
		return nil, resp.StatusCode, s.clock.Since(startTime), ErrMissingDataField
	}

	comments := *body.Data
	if comments == nil {
		comments = []models.Comment{}
	}

	return comments, resp.StatusCode, s.clock.Since(startTime), nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
