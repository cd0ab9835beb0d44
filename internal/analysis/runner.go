package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
	"github.com/couchcryptid/balloon-proximity-service/internal/observability"
)

// TrailSource provides the current balloon constellation snapshot.
type TrailSource interface {
	FetchTrails(ctx context.Context) ([]domain.BalloonTrail, error)
}

// StormSource provides active storm cones and their optional forecast tracks.
type StormSource interface {
	FetchStorms(ctx context.Context) ([]domain.StormPolygon, []domain.StormTrack, error)
}

// ResultPublisher delivers a completed analysis result downstream.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result domain.AnalysisResult) error
}

// Runner orchestrates the fetch-analyze-publish loop.
type Runner struct {
	trails    TrailSource
	storms    StormSource
	publisher ResultPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock

	interval    time.Duration
	thresholdKm float64

	ready  atomic.Bool
	mu     sync.RWMutex
	latest *domain.AnalysisResult
}

// New creates a Runner with the given sources and observability.
func New(trails TrailSource, storms StormSource, publisher ResultPublisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration, thresholdKm float64) *Runner {
	return &Runner{
		trails:      trails,
		storms:      storms,
		publisher:   publisher,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		interval:    interval,
		thresholdKm: thresholdKm,
	}
}

// CheckReadiness returns nil once at least one analysis run has completed.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no analysis run has completed yet")
	}
	return nil
}

// Latest returns the most recent analysis result, or false before the first
// completed run.
func (r *Runner) Latest() (domain.AnalysisResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return domain.AnalysisResult{}, false
	}
	return *r.latest, true
}

// Run executes analysis cycles until the context is cancelled. Transient
// failures (fetch, publish) retry with exponential backoff. Malformed storm
// geometry skips the cycle without publishing and waits the full interval.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("analysis runner started",
		"interval", r.interval,
		"threshold_km", r.thresholdKm,
	)
	r.metrics.AnalysisRunning.Set(1)
	defer r.metrics.AnalysisRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		if ctx.Err() != nil {
			r.logger.Info("analysis runner stopping", "reason", ctx.Err())
			return nil
		}

		err := r.runOnce(ctx)
		switch {
		case err == nil:
			backoff = 200 * time.Millisecond
			if !r.sleep(ctx, r.interval) {
				return nil
			}
		case isGeometryError(err):
			r.logger.Error("malformed storm geometry, skipping cycle", "error", err)
			if !r.sleep(ctx, r.interval) {
				return nil
			}
		default:
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("analysis cycle failed", "error", err)
			if !r.sleep(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}
	}
}

// runOnce performs one fetch-analyze-publish cycle.
func (r *Runner) runOnce(ctx context.Context) error {
	start := r.clock.Now()

	trails, err := r.trails.FetchTrails(ctx)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues("balloons").Inc()
		return err
	}
	storms, tracks, err := r.storms.FetchStorms(ctx)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues("storms").Inc()
		return err
	}
	r.metrics.TrailsFetched.Set(float64(len(trails)))
	r.metrics.StormsFetched.Set(float64(len(storms)))

	now := r.clock.Now().UTC()
	result, err := Analyze(ctx, trails, storms, tracks, now, r.thresholdKm)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.latest = &result
	r.mu.Unlock()

	if err := r.publisher.PublishResult(ctx, result); err != nil {
		return err
	}
	r.metrics.ResultsPublished.Inc()

	r.metrics.AnalysisRuns.Inc()
	r.metrics.AnalysisRunDuration.Observe(r.clock.Since(start).Seconds())
	r.metrics.AlertsEmitted.Add(float64(len(result.Alerts)))
	for _, kind := range []domain.IntersectionKind{domain.KindPast, domain.KindFuture} {
		r.metrics.IntersectionsEmitted.WithLabelValues(string(kind)).
			Add(float64(len(domain.ByKind(result.Intersections, kind))))
	}
	r.ready.Store(true)

	r.logger.Info("analysis run complete",
		"run_id", result.RunID,
		"balloons", result.BalloonCount,
		"storms", result.StormCount,
		"alerts", len(result.Alerts),
		"intersections", len(result.Intersections),
	)
	return nil
}

// Analyze runs the full engine over one snapshot: proximity alerts,
// historical intersections, and future predictions. Work fans out across
// storms with errgroup; each storm's output lands in its own slot, so the
// merged result is deterministic regardless of scheduling. Alerts are
// re-sorted globally by distance after the merge.
func Analyze(ctx context.Context, trails []domain.BalloonTrail, storms []domain.StormPolygon, tracks []domain.StormTrack, now time.Time, thresholdKm float64) (domain.AnalysisResult, error) {
	type stormSlot struct {
		alerts        []domain.ProximityAlert
		intersections []domain.Intersection
	}
	slots := make([]stormSlot, len(storms))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, storm := range storms {
		g.Go(func() error {
			one := []domain.StormPolygon{storm}

			alerts, err := domain.AnalyzeProximity(trails, one, thresholdKm)
			if err != nil {
				return err
			}
			historical, err := domain.ClassifyIntersections(trails, one, now, thresholdKm)
			if err != nil {
				return err
			}
			for _, trail := range trails {
				hits, err := domain.PredictFutureIntersections(trail, storm, tracks, thresholdKm, now)
				if err != nil {
					return err
				}
				historical = append(historical, hits...)
			}

			slots[i] = stormSlot{alerts: alerts, intersections: historical}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AnalysisResult{}, err
	}

	result := domain.AnalysisResult{
		RunID:        generateRunID(now),
		GeneratedAt:  now,
		ThresholdKm:  thresholdKm,
		BalloonCount: len(trails),
		StormCount:   len(storms),
	}
	for _, slot := range slots {
		result.Alerts = append(result.Alerts, slot.alerts...)
		result.Intersections = append(result.Intersections, slot.intersections...)
	}
	sortAlerts(result.Alerts)
	return result, nil
}

// generateRunID produces a deterministic ID from the analysis time, so a
// replayed snapshot yields the same run ID.
func generateRunID(now time.Time) string {
	hash := sha256.Sum256([]byte(now.Format(time.RFC3339Nano)))
	return "run-" + hex.EncodeToString(hash[:8])
}

func sortAlerts(alerts []domain.ProximityAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ClosestDistanceKm < alerts[j].ClosestDistanceKm
	})
}

func isGeometryError(err error) bool {
	var geoErr *domain.GeometryError
	return errors.As(err, &geoErr)
}

// sleep waits for d or context cancellation on the injected clock.
// Returns false if the context was cancelled.
func (r *Runner) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
