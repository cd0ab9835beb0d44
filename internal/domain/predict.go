package domain

import (
	"math"
	"time"
)

const (
	// minPredictionSamples is the floor below which the predictor abstains
	// entirely. A policy choice, not an error: two points give a heading
	// but no evidence of a stable trend.
	minPredictionSamples = 3

	// velocityWindow is how many trailing samples feed the velocity
	// estimate. Five hourly samples smooth single-sample jitter without
	// averaging away a genuine turn.
	velocityWindow = 5

	// horizonHours bounds how far ahead the extrapolation is searched.
	horizonHours = 48.0

	// trackStepHours is the sampling resolution along the horizon when a
	// forecast track is available.
	trackStepHours = 0.5

	// convergenceGate is the minimum heading alignment (unit-vector dot
	// product) between balloon velocity and the direction to the nearest
	// track point.
	convergenceGate = 0.9

	// approachRatioGate requires the predicted minimum distance to undercut
	// the current distance by at least 20%, so a trajectory that merely
	// grazes its present separation is suppressed.
	approachRatioGate = 0.8
)

// PredictFutureIntersections extrapolates the trail's recent motion over the
// prediction horizon and reports at most one future intersection with the
// storm.
//
// With a matching forecast track the extrapolated position is tested against
// the track polyline every half hour, and an intersection is emitted only
// when all four conditions hold at the minimum-distance step:
//
//	minDistance ≤ thresholdKm
//	heading alignment with the track exceeds convergenceGate
//	minDistance < current distance (the trajectory is closing)
//	minDistance < approachRatioGate × current distance
//
// Without a track the extrapolation is tested against the cone itself at
// integer hours and the first threshold crossing wins.
//
// Trails with fewer than minPredictionSamples samples abstain and return an
// empty result.
func PredictFutureIntersections(trail BalloonTrail, storm StormPolygon, tracks []StormTrack, thresholdKm float64, now time.Time) ([]Intersection, error) {
	if err := storm.Validate(); err != nil {
		return nil, err
	}
	if len(trail.Samples) < minPredictionSamples {
		return nil, nil
	}

	vLat, vLon, ok := estimateVelocity(trail.Samples)
	if !ok {
		return nil, nil
	}
	last := trail.Samples[len(trail.Samples)-1]

	if track, found := TrackForStorm(tracks, storm.Name); found && len(track.Line) >= 2 {
		if hit, ok := predictAgainstTrack(trail.BalloonID, storm.Name, last, track, vLat, vLon, thresholdKm, now); ok {
			return []Intersection{hit}, nil
		}
		return nil, nil
	}

	if hit, ok := predictAgainstCone(trail.BalloonID, last, storm, vLat, vLon, thresholdKm, now); ok {
		return []Intersection{hit}, nil
	}
	return nil, nil
}

// estimateVelocity derives (vLat, vLon) in degrees per hour as the mean of
// consecutive-pair deltas over the trailing velocityWindow samples. Samples
// are assumed uniformly hourly, so the mean divides by pair count rather
// than elapsed wall time. ok is false with fewer than two usable deltas.
func estimateVelocity(samples []BalloonSample) (vLat, vLon float64, ok bool) {
	window := samples
	if len(window) > velocityWindow {
		window = window[len(window)-velocityWindow:]
	}
	pairs := len(window) - 1
	if pairs < 2 {
		return 0, 0, false
	}

	var sumLat, sumLon float64
	for i := 0; i < pairs; i++ {
		sumLat += window[i+1].Point.Lat - window[i].Point.Lat
		sumLon += window[i+1].Point.Lon - window[i].Point.Lon
	}
	return sumLat / float64(pairs), sumLon / float64(pairs), true
}

// predictAgainstTrack samples the extrapolated position along the horizon,
// finds the minimum distance to the forecast track, and applies the
// four-part convergence gate.
func predictAgainstTrack(balloonID, stormName string, last BalloonSample, track StormTrack, vLat, vLon, thresholdKm float64, now time.Time) (Intersection, bool) {
	currentDistance := DistanceToPolyline(last.Point, track.Line)

	minDistance := math.Inf(1)
	tBest := 0.0
	for t := 1.0; t <= horizonHours; t += trackStepHours {
		pos := extrapolate(last.Point, vLat, vLon, t)
		if d := DistanceToPolyline(pos, track.Line); d < minDistance {
			minDistance, tBest = d, t
		}
	}

	isConverging := minDistance < currentDistance
	alignment := headingAlignment(last.Point, track.Line, vLat, vLon)

	if minDistance > thresholdKm || alignment <= convergenceGate ||
		!isConverging || minDistance >= currentDistance*approachRatioGate {
		return Intersection{}, false
	}

	return Intersection{
		BalloonID:          balloonID,
		StormName:          stormName,
		Kind:               KindFuture,
		DistanceKm:         minDistance,
		Timestamp:          now.Add(time.Duration(tBest * float64(time.Hour))),
		AltitudeM:          last.AltitudeM,
		InsideForecastCone: false,
		HoursFromNow:       tBest,
	}, true
}

// predictAgainstCone is the no-track fallback: extrapolate at integer hours
// and emit on the first step where the position comes within thresholdKm of
// the cone. First crossing, not minimum distance.
func predictAgainstCone(balloonID string, last BalloonSample, storm StormPolygon, vLat, vLon, thresholdKm float64, now time.Time) (Intersection, bool) {
	for t := 1; t <= int(horizonHours); t++ {
		pos := extrapolate(last.Point, vLat, vLon, float64(t))
		d := storm.DistanceTo(pos)
		if d > thresholdKm {
			continue
		}
		return Intersection{
			BalloonID:          balloonID,
			StormName:          storm.Name,
			Kind:               KindFuture,
			DistanceKm:         d,
			Timestamp:          now.Add(time.Duration(t) * time.Hour),
			AltitudeM:          last.AltitudeM,
			InsideForecastCone: true,
			HoursFromNow:       float64(t),
		}, true
	}
	return Intersection{}, false
}

// extrapolate advances a position by t hours of flat-degree dead reckoning.
// No geodesic correction: hourly sampling keeps per-step displacement small
// relative to Earth's radius, which is the stated validity condition for
// this simplification.
func extrapolate(p GeoPoint, vLat, vLon, t float64) GeoPoint {
	return GeoPoint{
		Lat: p.Lat + vLat*t,
		Lon: p.Lon + vLon*t,
	}
}

// headingAlignment is the dot product of the unit velocity vector and the
// unit vector from the balloon's last position to the nearest point on the
// track, both in degree space. Result is in [-1, 1]; positive means the
// balloon is heading toward the track.
func headingAlignment(from GeoPoint, line []GeoPoint, vLat, vLon float64) float64 {
	nearest, _ := NearestPointOnPolyline(from, line)

	toLat := nearest.Lat - from.Lat
	toLon := nearest.Lon - from.Lon

	vNorm := math.Hypot(vLat, vLon)
	toNorm := math.Hypot(toLat, toLon)
	if vNorm == 0 || toNorm == 0 {
		return 0
	}
	return (vLat*toLat + vLon*toLon) / (vNorm * toNorm)
}
