// Package mockdata provides a deterministic in-process replacement for the
// WindBorne and NHC upstreams, for local development and fixture generation.
//
// The scenario is fixed relative to the injected clock: one balloon
// converging on a hurricane with a published forecast track, one balloon
// drifting inside a cone-only tropical storm, and one balloon far from
// everything. Every analysis outcome (alert, past intersection, predicted
// intersection, quiet trail) is represented.
package mockdata

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// Source implements analysis.TrailSource and analysis.StormSource.
type Source struct {
	clock clockwork.Clock
}

func NewSource(clock clockwork.Clock) *Source {
	return &Source{clock: clock}
}

func (s *Source) FetchTrails(_ context.Context) ([]domain.BalloonTrail, error) {
	return GenerateTrails(s.clock.Now().UTC()), nil
}

func (s *Source) FetchStorms(_ context.Context) ([]domain.StormPolygon, []domain.StormTrack, error) {
	storms, tracks := GenerateStorms()
	return storms, tracks, nil
}

// GenerateTrails builds the scenario's balloon trails with hourly samples
// ending at the top of the hour containing now.
func GenerateTrails(now time.Time) []domain.BalloonTrail {
	end := now.Truncate(time.Hour)

	return []domain.BalloonTrail{
		// Westbound at 0.5 deg/h along latitude 25, ending 0.5 deg east of
		// the ALPHA cone. Close enough to alert, and on a heading that
		// crosses the forecast track.
		linearTrail("WB-000", 25.0, -75.0, 0, -0.5, 17500, 6, end),

		// Slow drift inside the BETA cone.
		linearTrail("WB-001", 15.0, -45.25, 0, 0.05, 16000, 8, end),

		// Mid-Atlantic, nowhere near any storm.
		linearTrail("WB-002", 40.0, -30.0, 0.1, 0.2, 19000, 5, end),
	}
}

// GenerateStorms builds the scenario's storm geometry. ALPHA publishes a
// forecast track; BETA exercises the cone-only prediction path.
func GenerateStorms() ([]domain.StormPolygon, []domain.StormTrack) {
	storms := []domain.StormPolygon{
		{Name: "HURRICANE ALPHA", Ring: squareRing(25.0, -78.0, 2.5)},
		{Name: "TROPICAL STORM BETA", Ring: squareRing(15.0, -45.0, 2.0)},
	}
	tracks := []domain.StormTrack{
		{Name: "HURRICANE ALPHA", Line: []domain.GeoPoint{
			{Lat: 21.0, Lon: -78.0},
			{Lat: 23.5, Lon: -78.0},
			{Lat: 26.0, Lon: -78.0},
			{Lat: 28.5, Lon: -78.0},
			{Lat: 31.0, Lon: -78.0},
		}},
	}
	return storms, tracks
}

// linearTrail builds n hourly samples ending at end, moving at a constant
// per-hour velocity and arriving at (lat, lon) on the final sample.
func linearTrail(id string, lat, lon, vLat, vLon, altM float64, n int, end time.Time) domain.BalloonTrail {
	samples := make([]domain.BalloonSample, 0, n)
	for i := n - 1; i >= 0; i-- {
		samples = append(samples, domain.BalloonSample{
			BalloonID: id,
			Point: domain.GeoPoint{
				Lat: lat - vLat*float64(i),
				Lon: lon - vLon*float64(i),
			},
			AltitudeM: altM,
			Timestamp: end.Add(-time.Duration(i) * time.Hour),
		})
	}
	return domain.NewTrail(id, samples)
}

func squareRing(lat, lon, half float64) []domain.GeoPoint {
	return []domain.GeoPoint{
		{Lat: lat - half, Lon: lon - half},
		{Lat: lat - half, Lon: lon + half},
		{Lat: lat + half, Lon: lon + half},
		{Lat: lat + half, Lon: lon - half},
		{Lat: lat - half, Lon: lon - half},
	}
}
