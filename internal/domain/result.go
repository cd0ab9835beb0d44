package domain

import "time"

// DefaultThresholdKm is the proximity radius used when callers do not
// override it.
const DefaultThresholdKm = 100.0

// IntersectionKind partitions intersections by where they sit relative to
// the analysis time.
type IntersectionKind string

const (
	KindPast   IntersectionKind = "past"
	KindFuture IntersectionKind = "future"
)

// ProximityAlert records the single closest approach of a balloon trail to
// a storm cone. Derived per analysis run, never persisted.
type ProximityAlert struct {
	BalloonID          string    `json:"balloon_id"`
	StormName          string    `json:"storm_name"`
	ClosestDistanceKm  float64   `json:"closest_distance_km"`
	Timestamp          time.Time `json:"timestamp"`
	AltitudeM          float64   `json:"altitude_m"`
	InsideForecastCone bool      `json:"inside_forecast_cone"`
}

// Intersection records one qualifying trail point (past) or one predicted
// closest approach (future) against a storm. HoursFromNow is signed;
// negative means the point is behind the analysis time.
type Intersection struct {
	BalloonID          string           `json:"balloon_id"`
	StormName          string           `json:"storm_name"`
	Kind               IntersectionKind `json:"kind"`
	DistanceKm         float64          `json:"distance_km"`
	Timestamp          time.Time        `json:"timestamp"`
	AltitudeM          float64          `json:"altitude_m"`
	InsideForecastCone bool             `json:"inside_forecast_cone"`
	HoursFromNow       float64          `json:"hours_from_now"`
}

// AnalysisResult is one complete engine run, as published to the sink topic
// and served from the HTTP read surface.
type AnalysisResult struct {
	RunID         string           `json:"run_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	ThresholdKm   float64          `json:"threshold_km"`
	BalloonCount  int              `json:"balloon_count"`
	StormCount    int              `json:"storm_count"`
	Alerts        []ProximityAlert `json:"alerts"`
	Intersections []Intersection   `json:"intersections"`
}
