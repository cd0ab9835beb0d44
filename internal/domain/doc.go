// Package domain implements the proximity and intersection analysis engine
// for atmospheric balloon constellations and tropical storm forecasts.
//
// # Data Sources
//
// Balloon trails come from the WindBorne Systems constellation API, which
// serves one JSON snapshot file per hour of history (00.json through
// 23.json). Each file is an array of [lat, lon, altitude_km] triples; a
// balloon's identity is its positional index within a file. The upstream
// adapter assembles per-balloon trails, assigns timestamps, and drops
// out-of-range coordinates before anything reaches this package; the engine
// does not revalidate samples.
//
// Storm geometry comes from the National Hurricane Center:
//
//	Cone:  the forecast-uncertainty polygon for a storm at the current
//	       advisory, taken from the first <Polygon> outer ring of the
//	       advisory's cone KMZ. Multi-polygon advisories contribute only
//	       their first ring.
//	Track: the forecast center-line polyline from the track KMZ. Optional;
//	       a storm may have a cone with no track. Cone/track correlation
//	       is by exact storm name string. A missing or renamed track
//	       silently selects the cone-only prediction fallback; upstream
//	       collaborators own name hygiene.
//
// # Units and Conventions
//
//	Latitude/longitude: decimal degrees, WGS-84.
//	Distances:          kilometers, great-circle (haversine, R = 6371 km).
//	Altitude:           meters above sea level.
//	Velocity:           degrees per hour, estimated from hourly samples.
//	hours_from_now:     signed; negative means in the past.
//
// # Analysis Model
//
// Every operation is a pure function over snapshot inputs with the current
// time passed explicitly, so identical inputs always produce identical
// output and tests can pin "now" to a fixed instant. The engine holds no
// state between calls.
//
//	AnalyzeProximity          closest-point proximity alerts per (trail, storm)
//	ClassifyIntersections     historical per-sample intersections, past/future
//	PredictFutureIntersections velocity extrapolation against the forecast track
//	ByKind / BalloonsHavingKind / RecentTrajectory  result projections
//
// The predictor is intentionally biased toward precision over recall: a
// future intersection is emitted only when the extrapolated trajectory
// closes to within the threshold AND the motion is geometrically converging
// on the track (see [PredictFutureIntersections]). An isolated close pass
// that is not part of a converging trend is suppressed.
//
// # Failure Model
//
// Expected edge cases degrade to empty results: short trails yield no
// alerts or predictions, and a storm without a track falls back to the
// cone-only heuristic. Malformed geometry is different: an empty cone ring
// would make every point "outside" and silently suppress all alerts for
// that storm, which is indistinguishable from "no storms active". That
// case fails fast with a [GeometryError] naming the offending storm.
package domain
