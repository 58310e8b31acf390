package dashboard

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jgoulah/pumplog/internal/feed"
	"github.com/jgoulah/pumplog/internal/logger"
	"github.com/jgoulah/pumplog/pkg/models"
)

var testNow = time.Date(2025, time.May, 8, 18, 45, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPipeline(f Fetcher) *Pipeline {
	return NewPipeline(f, Options{
		Location: time.UTC,
		Now:      fixedClock,
		Rand:     rand.New(rand.NewSource(1)),
	})
}

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(ctx context.Context) (string, error) { return "", f.err }

func TestRunEndToEnd(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "header\n08.05.2025 10:00,60,No\n08.05.2025 15:00,80,Yes\n")
	p := newTestPipeline(feed.NewClient(srv.URL, 5*time.Second))

	snap := p.Run(context.Background())

	assert.Equal(t, SourceFeed, snap.Source)
	assert.Empty(t, snap.FetchError)
	assert.Empty(t, snap.Issues)

	require.Len(t, snap.Today.Events, 2)
	assert.Equal(t, "15:00", snap.Today.Events[0].TimeLabel())
	assert.Equal(t, "10:00", snap.Today.Events[1].TimeLabel())
	assert.Equal(t, models.ML(140), snap.Today.Total)

	require.Len(t, snap.Week, 7)
	last := snap.Week[6]
	assert.Equal(t, 8, last.Date.Day())
	assert.Equal(t, models.ML(60), last.Morning)
	assert.Equal(t, models.ML(80), last.Afternoon)
	assert.Equal(t, models.ML(140), last.Total)
	for _, d := range snap.Week[:6] {
		assert.Equal(t, models.ML(0), d.Total, "day %s", d.Date.Format("2006-01-02"))
	}

	assert.Len(t, snap.Bubbles, 2)
	assert.Equal(t, testNow, snap.BuiltAt)
}

func TestRunFallsBackOnServerError(t *testing.T) {
	srv := feedServer(t, http.StatusInternalServerError, "boom")
	p := newTestPipeline(feed.NewClient(srv.URL, 5*time.Second))

	snap := p.Run(context.Background())

	assert.Equal(t, SourceSample, snap.Source)
	assert.Contains(t, snap.FetchError, "500")
	// five generated entries for today
	assert.Len(t, snap.Today.Events, 5)
	assert.True(t, snap.Today.Total.Valid)
	assert.Len(t, snap.Week, 7)
	for _, d := range snap.Week[:6] {
		assert.Positive(t, d.Total.ML)
	}
}

func TestRunFallsBackOnFetchError(t *testing.T) {
	p := newTestPipeline(failingFetcher{err: errors.New("dial tcp: connection refused")})
	snap := p.Run(context.Background())

	assert.Equal(t, SourceSample, snap.Source)
	assert.Equal(t, "dial tcp: connection refused", snap.FetchError)
	assert.NotEmpty(t, snap.Events)
}

func TestRunSampleMode(t *testing.T) {
	p := NewPipeline(failingFetcher{err: errors.New("must not be called")}, Options{
		Location:  time.UTC,
		Now:       fixedClock,
		UseSample: true,
	})
	snap := p.Run(context.Background())

	assert.Equal(t, SourceSample, snap.Source)
	assert.Empty(t, snap.FetchError)
	assert.Len(t, snap.Today.Events, 5)
}

func TestRunReportsMalformedFields(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "header\n08.05.2025 10:00,lots,No\nyesterday,50,No\n08.05.2025 11:00,20,No\n")
	p := newTestPipeline(feed.NewClient(srv.URL, 5*time.Second))

	snap := p.Run(context.Background())

	assert.Equal(t, SourceFeed, snap.Source)
	require.Len(t, snap.Issues, 2)
	assert.Contains(t, snap.Issues[0], "amount")
	assert.Contains(t, snap.Issues[1], "datetime")

	// the undated row stays in the sequence but in no window
	assert.Len(t, snap.Events, 3)
	assert.Len(t, snap.Today.Events, 2)
	assert.False(t, snap.Today.Total.Valid)
	assert.Equal(t, "NaN", snap.Today.Total.String())
}

func TestRunEmptyFeed(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "Zeitstempel,Menge,Pumpe\n")
	p := newTestPipeline(feed.NewClient(srv.URL, 5*time.Second))

	snap := p.Run(context.Background())

	assert.Equal(t, SourceFeed, snap.Source)
	assert.True(t, snap.Today.Empty())
	assert.Equal(t, models.ML(0), snap.Today.Total)
	assert.Len(t, snap.Week, 7)
	assert.Empty(t, snap.Bubbles)
}

func TestRunUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 23:30 UTC on May 7 is already May 8 in Berlin
	srv := feedServer(t, http.StatusOK, "header\n08.05.2025 00:30,40,No\n")
	p := NewPipeline(feed.NewClient(srv.URL, 5*time.Second), Options{
		Location: berlin,
		Now:      func() time.Time { return time.Date(2025, time.May, 7, 23, 30, 0, 0, time.UTC) },
	})

	snap := p.Run(context.Background())
	require.Len(t, snap.Today.Events, 1)
	assert.Equal(t, berlin, snap.Today.Date.Location())
}

func TestRunLogsCorrelationID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewPipeline(failingFetcher{err: errors.New("connection refused")}, Options{
		Location: time.UTC,
		Now:      fixedClock,
		Rand:     rand.New(rand.NewSource(1)),
		Logger:   zap.New(core),
	})

	ctx := logger.WithCorrelationID(context.Background(), "abc-123")
	snap := p.Run(ctx)
	require.Equal(t, SourceSample, snap.Source)

	fallback := logs.FilterMessage("feed unavailable, using sample data").All()
	require.Len(t, fallback, 1)
	assert.Equal(t, zapcore.ErrorLevel, fallback[0].Level)
	assert.Equal(t, "abc-123", fallback[0].ContextMap()["correlation_id"])

	built := logs.FilterMessage("snapshot built").All()
	require.Len(t, built, 1)
	assert.Equal(t, "abc-123", built[0].ContextMap()["correlation_id"])
}
