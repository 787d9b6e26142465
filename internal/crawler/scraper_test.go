package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"commentsent/internal/config"
	"commentsent/internal/logger"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoComments = `{"data":[
  {"body":"first","author":"alice","created_utc":1593561700,"id":"a1"},
  {"body":"second","author":"bob","created_utc":1593561800,"id":"b2"}
]}`

func testArchiveConfig(baseURL string) *config.ArchiveConfig {
	return &config.ArchiveConfig{
		BaseURL:   baseURL,
		Subreddit: "singapore",
		UserAgent: "commentsent-test",
		PageSize:  500,
		Retry: config.RetryPolicy{
			InitialDelayMs:    0,
			MaxDelayMs:        1000,
			BackoffMultiplier: 2.0,
			TimeoutSec:        5,
		},
	}
}

func TestScraper_Fetch_BuildsQuery(t *testing.T) {
	var gotQuery map[string]string

	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = map[string]string{}

		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}

		_, _ = w.Write([]byte(twoComments))
	}))
	defer srv.Close()

	s := NewScraper(testArchiveConfig(srv.URL+"/reddit/search/comment/"), logger.NewNop())

	comments, err := s.Fetch(context.Background(), 1593561600, 1596240000, "singapore", "")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, int64(1593561800), comments[1].CreatedUTC)
	assert.JSONEq(t, `"b2"`, string(comments[1].Extra["id"]))

	assert.Equal(t, map[string]string{
		"size":      "500",
		"after":     "1593561600",
		"before":    "1596240000",
		"subreddit": "singapore",
	}, gotQuery)
	assert.Equal(t, "commentsent-test", gotUA)
}

func TestScraper_Fetch_IncludesQueryText(t *testing.T) {
	var gotQ string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	s := NewScraper(testArchiveConfig(srv.URL), logger.NewNop())

	comments, err := s.Fetch(context.Background(), 1, 2, "singapore", "general election")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
	assert.Equal(t, "general election", gotQ)
}

func TestScraper_Fetch_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusInternalServerError)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		case 3:
			_, _ = w.Write([]byte(`not json`))
		case 4:
			_, _ = w.Write([]byte(`{"error":"shard unavailable"}`))
		default:
			_, _ = w.Write([]byte(twoComments))
		}
	}))
	defer srv.Close()

	s := NewScraper(testArchiveConfig(srv.URL), logger.NewNop())

	comments, err := s.Fetch(context.Background(), 1, 2, "singapore", "")
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, int32(5), calls.Load())

	stats := s.Stats()
	assert.Equal(t, 5, stats.TotalAttempts)
	assert.Equal(t, 4, stats.FailedAttempts)
	assert.Equal(t, 1, stats.SuccessfulAttempts)
	assert.Equal(t, 5, stats.MaxAttemptsForPage)
	require.Len(t, stats.RecentFailures, 4)
	assert.Equal(t, http.StatusInternalServerError, stats.RecentFailures[0].StatusCode)
	assert.Contains(t, stats.RecentFailures[3].Error, ErrMissingDataField.Error())
}

func TestScraper_Fetch_TimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-release:
			case <-r.Context().Done():
			}

			return
		}

		_, _ = w.Write([]byte(twoComments))
	}))
	defer srv.Close()
	defer close(release)

	s := NewScraper(testArchiveConfig(srv.URL), logger.NewNop(),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	comments, err := s.Fetch(context.Background(), 1, 2, "singapore", "")
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScraper_Fetch_WaitsBackoffOnClock(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte(twoComments))
	}))
	defer srv.Close()

	cfg := testArchiveConfig(srv.URL)
	cfg.Retry.InitialDelayMs = 200

	fc := clockwork.NewFakeClock()
	s := NewScraper(cfg, logger.NewNop(), WithClock(fc))

	type result struct {
		n   int
		err error
	}

	done := make(chan result, 1)

	go func() {
		comments, err := s.Fetch(context.Background(), 1, 2, "singapore", "")
		done <- result{n: len(comments), err: err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(1), calls.Load())

	fc.Advance(200 * time.Millisecond)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, 2, r.n)
	case <-ctx.Done():
		t.Fatal("Fetch did not resume after the backoff elapsed")
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestScraper_Fetch_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 3 {
			cancel()
		}

		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewScraper(testArchiveConfig(srv.URL), logger.NewNop())

	_, err := s.Fetch(ctx, 1, 2, "singapore", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestScraper_Fetch_InvalidBaseURL(t *testing.T) {
	s := NewScraper(testArchiveConfig("not a url"), logger.NewNop())

	_, err := s.Fetch(context.Background(), 1, 2, "singapore", "")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
	assert.Zero(t, s.Stats().TotalAttempts)
}

func TestScraper_Fetch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	cfg := testArchiveConfig(srv.URL)
	cfg.RequestsPerSecond = 20

	s := NewScraper(cfg, logger.NewNop())

	startTime := time.Now()

	for i := 0; i < 3; i++ {
		_, err := s.Fetch(context.Background(), 1, 2, "singapore", "")
		require.NoError(t, err)
	}

	// Burst of one: the second and third requests each wait ~50ms.
	assert.GreaterOrEqual(t, time.Since(startTime), 90*time.Millisecond)
}

func TestAttemptStats_String(t *testing.T) {
	var l AttemptLog
	l.Record(AttemptResult{Attempt: 1, Duration: time.Second})
	l.Record(AttemptResult{Attempt: 2, Duration: time.Second, Success: true})

	assert.Equal(t,
		"Attempts: 2 total, 1 success, 1 failed | worst page took 2 attempts | 2.0s in requests",
		l.Stats().String())
}

func TestAttemptLog_BoundsRetainedFailures(t *testing.T) {
	var l AttemptLog
	for i := 1; i <= maxRetainedFailures+5; i++ {
		l.Record(AttemptResult{Attempt: i})
	}

	stats := l.Stats()
	assert.Len(t, stats.RecentFailures, maxRetainedFailures)
	assert.Equal(t, 6, stats.RecentFailures[0].Attempt)
	assert.Equal(t, maxRetainedFailures+5, stats.FailedAttempts)
}
