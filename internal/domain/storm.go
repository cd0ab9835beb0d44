package domain

// StormPolygon is a storm's forecast-uncertainty cone at analysis time: one
// closed exterior ring (first == last vertex). When the source advisory
// contains multiple polygons, only the first ring is authoritative for
// distance and containment.
type StormPolygon struct {
	Name string     `json:"name"`
	Ring []GeoPoint `json:"ring"`
}

// StormTrack is a storm's forecast center-line polyline, correlated to its
// cone by exact name match.
type StormTrack struct {
	Name string     `json:"name"`
	Line []GeoPoint `json:"line"`
}

// Validate reports a GeometryError for rings that cannot support distance
// or containment tests. A ring needs at least three distinct vertices plus
// the closing vertex.
func (s StormPolygon) Validate() error {
	if len(s.Ring) == 0 {
		return &GeometryError{Storm: s.Name, Reason: "empty forecast cone ring"}
	}
	if len(s.Ring) < 4 {
		return &GeometryError{Storm: s.Name, Reason: "forecast cone ring has fewer than 3 vertices"}
	}
	if s.Ring[0] != s.Ring[len(s.Ring)-1] {
		return &GeometryError{Storm: s.Name, Reason: "forecast cone ring is not closed"}
	}
	return nil
}

// Contains reports whether p lies inside the cone (boundary inclusive).
func (s StormPolygon) Contains(p GeoPoint) bool {
	return PointInPolygon(p, s.Ring)
}

// DistanceTo returns the distance from p to the cone in kilometers: 0
// inside, otherwise distance to the nearest boundary edge.
func (s StormPolygon) DistanceTo(p GeoPoint) float64 {
	return DistanceToPolygon(p, s.Ring)
}

// TrackForStorm returns the forecast track matching the storm name, if any.
// Matching is by exact string equality; a missing match is the documented
// signal to fall back to cone-only prediction.
func TrackForStorm(tracks []StormTrack, name string) (StormTrack, bool) {
	for _, tr := range tracks {
		if tr.Name == name {
			return tr, true
		}
	}
	return StormTrack{}, false
}

// validateStorms runs Validate over every storm so analysis entry points
// fail fast before touching any trail.
func validateStorms(storms []StormPolygon) error {
	for _, s := range storms {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
