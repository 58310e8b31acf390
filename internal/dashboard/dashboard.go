package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jgoulah/pumplog/internal/geometry"
)

// Dashboard holds the most recent snapshot and the hit regions of the most
// recently rendered bubble chart. Readers always see a complete snapshot.
type Dashboard struct {
	pipeline *Pipeline
	log      *zap.Logger

	mu      sync.RWMutex
	current *Snapshot
	hits    geometry.HitRegions
}

// New creates a dashboard with no snapshot yet
func New(p *Pipeline, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{pipeline: p, log: log}
}

// Refresh runs the pipeline and swaps in the result
func (d *Dashboard) Refresh(ctx context.Context) *Snapshot {
	snap := d.pipeline.Run(ctx)

	d.mu.Lock()
	d.current = snap
	d.mu.Unlock()

	return snap
}

// Current returns the latest snapshot, or nil before the first refresh
func (d *Dashboard) Current() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Snapshot returns the latest snapshot, building one if none exists
func (d *Dashboard) Snapshot(ctx context.Context) *Snapshot {
	if snap := d.Current(); snap != nil {
		return snap
	}
	return d.Refresh(ctx)
}

// SetHitRegions replaces the hit-test snapshot. Call it after each bubble
// chart render.
func (d *Dashboard) SetHitRegions(regions geometry.HitRegions) {
	d.mu.Lock()
	d.hits = regions
	d.mu.Unlock()
}

// HitRegions returns the regions of the last bubble chart render
func (d *Dashboard) HitRegions() geometry.HitRegions {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hits
}

// Tooltip hit-tests against the last bubble chart render. Before any render
// there are no regions and nothing is hit.
func (d *Dashboard) Tooltip(x, y, pageX, pageY float64, unit string) geometry.Tooltip {
	return d.HitRegions().Tooltip(x, y, pageX, pageY, unit)
}

// Watch rebuilds the snapshot every interval until ctx is done
func (d *Dashboard) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.log.Info("refresh loop started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			d.log.Info("refresh loop stopped")
			return nil
		case <-ticker.C:
			snap := d.Refresh(ctx)
			d.log.Info("snapshot refreshed",
				zap.String("snapshot_id", snap.ID.String()),
				zap.String("source", string(snap.Source)),
				zap.Int("events", len(snap.Events)),
			)
		}
	}
}
