// Package dashboard runs the fetch, parse, normalize and aggregate pipeline
// and holds the latest result for the HTTP surface and the CLI.
package dashboard

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jgoulah/pumplog/internal/aggregate"
	"github.com/jgoulah/pumplog/internal/events"
	"github.com/jgoulah/pumplog/internal/feed"
	"github.com/jgoulah/pumplog/internal/logger"
	"github.com/jgoulah/pumplog/internal/metrics"
	"github.com/jgoulah/pumplog/pkg/models"
)

// Fetcher returns the raw feed text
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Source tells where a snapshot's records came from
type Source string

const (
	SourceFeed   Source = "feed"
	SourceSample Source = "sample"
)

// Snapshot is the complete result of one pipeline run. It is never mutated
// after Run returns.
type Snapshot struct {
	ID         uuid.UUID             `json:"id"`
	BuiltAt    time.Time             `json:"built_at"`
	Source     Source                `json:"source"`
	FetchError string                `json:"fetch_error,omitempty"`
	Issues     []string              `json:"issues,omitempty"`
	Events     []models.Event        `json:"-"`
	Today      aggregate.TodayView   `json:"today"`
	Week       []models.DaySummary   `json:"week"`
	Bubbles    []models.BubbleSample `json:"bubbles"`
}

// Options configures a Pipeline. Zero values mean local time, the wall
// clock and a time-seeded random source.
type Options struct {
	Location  *time.Location
	Now       func() time.Time
	Rand      *rand.Rand
	UseSample bool // skip the fetch and always generate records
	Logger    *zap.Logger
}

// Pipeline turns feed text into a Snapshot
type Pipeline struct {
	fetcher   Fetcher
	loc       *time.Location
	now       func() time.Time
	useSample bool
	log       *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewPipeline creates a pipeline reading from f
func NewPipeline(f Fetcher, opts Options) *Pipeline {
	p := &Pipeline{
		fetcher:   f,
		loc:       opts.Location,
		now:       opts.Now,
		useSample: opts.UseSample || f == nil,
		log:       opts.Logger,
		rng:       opts.Rand,
	}
	if p.loc == nil {
		p.loc = time.Local
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p
}

// Location returns the timezone day boundaries are computed in
func (p *Pipeline) Location() *time.Location {
	return p.loc
}

// Run builds a snapshot. It never fails: when the feed cannot be read the
// snapshot is built from generated records and carries the fetch error.
func (p *Pipeline) Run(ctx context.Context) *Snapshot {
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	log := logger.FromContext(ctx, p.log)
	now := p.now().In(p.loc)
	snap := &Snapshot{
		ID:      uuid.New(),
		BuiltAt: now,
		Source:  SourceFeed,
	}

	records, fetchErr := p.records(ctx, now)
	if fetchErr != nil {
		log.Error("feed unavailable, using sample data",
			zap.String("snapshot_id", snap.ID.String()),
			zap.Error(fetchErr),
		)
		metrics.FallbackTotal.Inc()
		snap.Source = SourceSample
		snap.FetchError = fetchErr.Error()
		records = p.sample(now)
	} else if p.useSample {
		snap.Source = SourceSample
	}

	evts, issues := events.Normalize(records, p.loc)
	for _, issue := range issues {
		log.Warn("malformed field",
			zap.Int("line", issue.Line),
			zap.String("field", issue.Field),
			zap.String("value", issue.Value),
			zap.Error(issue.Err),
		)
		metrics.ParseIssues.WithLabelValues(issue.Field).Inc()
		snap.Issues = append(snap.Issues, issue.Error())
	}

	snap.Events = evts
	snap.Today = aggregate.Today(evts, now)
	snap.Week = aggregate.Weekly(evts, now)
	snap.Bubbles = aggregate.Bubbles(evts, now)

	metrics.Events.Set(float64(len(evts)))
	metrics.LastRefresh.Set(float64(now.Unix()))

	log.Debug("snapshot built",
		zap.String("snapshot_id", snap.ID.String()),
		zap.String("source", string(snap.Source)),
		zap.Int("events", len(evts)),
		zap.Int("issues", len(issues)),
		zap.Duration("took", time.Since(start)),
	)
	return snap
}

// records fetches and parses the feed, or generates records in sample mode
func (p *Pipeline) records(ctx context.Context, now time.Time) ([]models.RawRecord, error) {
	if p.useSample {
		return p.sample(now), nil
	}

	text, err := p.fetcher.Fetch(ctx)
	if err != nil {
		metrics.FetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.FetchTotal.WithLabelValues("ok").Inc()
	return feed.ParseRecords(text), nil
}

func (p *Pipeline) sample(now time.Time) []models.RawRecord {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return feed.Sample(now, p.rng)
}
