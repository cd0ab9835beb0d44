package domain

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle
// distance calculations (kilometers).
const EarthRadiusKm = 6371.0

// onBoundaryEpsilonDeg is the planar degree-space tolerance within which a
// point is considered to lie on a polygon edge. Roughly one meter at the
// equator.
const onBoundaryEpsilonDeg = 1e-5

// GeoPoint is an immutable WGS-84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeometryError reports malformed storm geometry. It is the engine's only
// hard failure: a degenerate ring would silently classify every point as
// "outside" and suppress all alerts for the storm.
type GeometryError struct {
	Storm  string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("storm %q: invalid geometry: %s", e.Storm, e.Reason)
}

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(a, b GeoPoint) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointInPolygon reports whether p lies inside the closed ring, using a
// ray-casting test in degree space. Points on the boundary count as inside.
func PointInPolygon(p GeoPoint, ring []GeoPoint) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	// Boundary points first: ray casting is unstable exactly on an edge,
	// and an on-cone balloon must read as inside.
	for i := 0; i < n-1; i++ {
		if planarSegmentDistance(p, ring[i], ring[i+1]) <= onBoundaryEpsilonDeg {
			return true
		}
	}

	inside := false
	for i := 0; i < n-1; i++ {
		a, b := ring[i], ring[i+1]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			lonCross := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < lonCross {
				inside = !inside
			}
		}
	}
	return inside
}

// DistanceToPolyline returns the minimum great-circle distance in kilometers
// from p to any segment of the polyline.
func DistanceToPolyline(p GeoPoint, line []GeoPoint) float64 {
	_, d := NearestPointOnPolyline(p, line)
	return d
}

// NearestPointOnPolyline returns the point on the polyline closest to p and
// the great-circle distance to it in kilometers. Single-point polylines
// degenerate to that point. Empty polylines return +Inf.
func NearestPointOnPolyline(p GeoPoint, line []GeoPoint) (GeoPoint, float64) {
	if len(line) == 0 {
		return GeoPoint{}, math.Inf(1)
	}
	if len(line) == 1 {
		return line[0], Haversine(p, line[0])
	}

	best := line[0]
	bestDist := math.Inf(1)
	for i := 0; i < len(line)-1; i++ {
		q := nearestOnSegment(p, line[i], line[i+1])
		if d := Haversine(p, q); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best, bestDist
}

// DistanceToPolygon returns 0 when p is inside the polygon ring, otherwise
// the great-circle distance from p to the nearest boundary edge in
// kilometers. The ring must be closed (first == last) and non-degenerate;
// callers validate via [StormPolygon.Validate].
func DistanceToPolygon(p GeoPoint, ring []GeoPoint) float64 {
	if PointInPolygon(p, ring) {
		return 0
	}
	return DistanceToPolyline(p, ring)
}

// nearestOnSegment projects p onto the segment ab in an equirectangular
// plane about p (longitude scaled by cos latitude), clamps the projection to
// the endpoints, and interpolates the clamped parameter back to geographic
// coordinates. Valid because segment extents here are small relative to
// Earth's radius.
func nearestOnSegment(p, a, b GeoPoint) GeoPoint {
	scale := math.Cos(radians(p.Lat))

	ax := (a.Lon - p.Lon) * scale
	ay := a.Lat - p.Lat
	bx := (b.Lon - p.Lon) * scale
	by := b.Lat - p.Lat

	dx := bx - ax
	dy := by - ay
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return a
	}

	t := -(ax*dx + ay*dy) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return GeoPoint{
		Lat: a.Lat + t*(b.Lat-a.Lat),
		Lon: a.Lon + t*(b.Lon-a.Lon),
	}
}

// planarSegmentDistance is the degree-space distance from p to segment ab,
// used only for the on-boundary tolerance check.
func planarSegmentDistance(p, a, b GeoPoint) float64 {
	q := nearestOnSegment(p, a, b)
	dLat := p.Lat - q.Lat
	dLon := (p.Lon - q.Lon) * math.Cos(radians(p.Lat))
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
