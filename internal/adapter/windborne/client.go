// Package windborne fetches the WindBorne constellation history and
// assembles per-balloon trails.
//
// The upstream exposes 24 hourly snapshot files, treasure/00.json through
// treasure/23.json, where file NN holds every balloon's position NN hours
// ago as [lat, lon, altitude_km] triples. The API carries no balloon IDs;
// identity is positional, so index i in every file is the same balloon.
// Individual files are frequently corrupt or missing and are skipped.
package windborne

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/balloon-proximity-service/internal/config"
	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// constellationHours is the depth of history the upstream retains.
const constellationHours = 24

// Client fetches balloon constellation snapshots over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient builds a constellation client from service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) *Client {
	return &Client{
		baseURL:    cfg.WindborneBaseURL,
		httpClient: &http.Client{Timeout: cfg.UpstreamTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), 1),
		logger:     logger,
		clock:      clock,
	}
}

// FetchTrails downloads all hourly snapshots and stitches them into
// per-balloon trails ordered oldest to newest. Corrupt or missing hours are
// skipped with a warning; the fetch fails only when no hour could be read.
func (c *Client) FetchTrails(ctx context.Context) ([]domain.BalloonTrail, error) {
	// File NN holds positions NN hours before now, so timestamps anchor to
	// the top of the current hour.
	base := c.clock.Now().UTC().Truncate(time.Hour)

	samplesByBalloon := make(map[int][]domain.BalloonSample)
	maxIndex := -1
	fetched := 0

	for hour := 0; hour < constellationHours; hour++ {
		positions, err := c.fetchHour(ctx, hour)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("skipping constellation snapshot",
				"hour", hour,
				"error", err,
			)
			continue
		}
		fetched++

		ts := base.Add(-time.Duration(hour) * time.Hour)
		for idx, pos := range positions {
			sample, ok := sampleFromPosition(idx, pos, ts)
			if !ok {
				c.logger.Debug("dropping out-of-range position",
					"hour", hour,
					"balloon_index", idx,
				)
				continue
			}
			samplesByBalloon[idx] = append(samplesByBalloon[idx], sample)
			if idx > maxIndex {
				maxIndex = idx
			}
		}
	}

	if fetched == 0 {
		return nil, fmt.Errorf("windborne: no constellation snapshot could be fetched")
	}

	trails := make([]domain.BalloonTrail, 0, maxIndex+1)
	for idx := 0; idx <= maxIndex; idx++ {
		samples, ok := samplesByBalloon[idx]
		if !ok {
			continue
		}
		trails = append(trails, domain.NewTrail(balloonID(idx), samples))
	}

	c.logger.Info("constellation fetched",
		"snapshots", fetched,
		"balloons", len(trails),
	)
	return trails, nil
}

// fetchHour downloads and decodes one snapshot file.
func (c *Client) fetchHour(ctx context.Context, hour int) ([][]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/treasure/%02d.json", c.baseURL, hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	var positions [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return positions, nil
}

// sampleFromPosition converts one [lat, lon, altitude_km] triple, rejecting
// malformed or out-of-range coordinates.
func sampleFromPosition(idx int, pos []float64, ts time.Time) (domain.BalloonSample, bool) {
	if len(pos) < 3 {
		return domain.BalloonSample{}, false
	}
	lat, lon, altKm := pos[0], pos[1], pos[2]
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.BalloonSample{}, false
	}
	return domain.BalloonSample{
		BalloonID: balloonID(idx),
		Point:     domain.GeoPoint{Lat: lat, Lon: lon},
		AltitudeM: altKm * 1000,
		Timestamp: ts,
	}, true
}

func balloonID(idx int) string {
	return fmt.Sprintf("WB-%03d", idx)
}
