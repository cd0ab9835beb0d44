package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kmPerDegree is the great-circle length of one degree of latitude at the
// mean Earth radius, used for expected values.
const kmPerDegree = 111.1949

// squareRing returns a closed square ring centered on (lat, lon) extending
// half degrees in each direction.
func squareRing(lat, lon, half float64) []GeoPoint {
	return []GeoPoint{
		{Lat: lat - half, Lon: lon - half},
		{Lat: lat - half, Lon: lon + half},
		{Lat: lat + half, Lon: lon + half},
		{Lat: lat + half, Lon: lon - half},
		{Lat: lat - half, Lon: lon - half},
	}
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     GeoPoint
		expected float64
	}{
		{"same point", GeoPoint{Lat: 25, Lon: -80}, GeoPoint{Lat: 25, Lon: -80}, 0},
		{"one degree latitude", GeoPoint{}, GeoPoint{Lat: 1}, kmPerDegree},
		{"one degree longitude at equator", GeoPoint{}, GeoPoint{Lon: 1}, kmPerDegree},
		{"ten degrees latitude", GeoPoint{}, GeoPoint{Lat: 10}, 10 * kmPerDegree},
		{"miami to havana", GeoPoint{Lat: 25.7617, Lon: -80.1918}, GeoPoint{Lat: 23.1136, Lon: -82.3666}, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Haversine(tt.a, tt.b)
			// 0.1% tolerance against reference values.
			assert.InDelta(t, tt.expected, d, tt.expected*0.001+0.01)
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	ring := squareRing(0, 0, 1)

	tests := []struct {
		name   string
		p      GeoPoint
		inside bool
	}{
		{"center", GeoPoint{Lat: 0, Lon: 0}, true},
		{"interior off-center", GeoPoint{Lat: 0.7, Lon: -0.3}, true},
		{"outside east", GeoPoint{Lat: 0, Lon: 2}, false},
		{"outside north", GeoPoint{Lat: 3, Lon: 0}, false},
		{"on edge", GeoPoint{Lat: 0, Lon: 1}, true},
		{"on vertex", GeoPoint{Lat: 1, Lon: 1}, true},
		{"just outside edge", GeoPoint{Lat: 0, Lon: 1.001}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, PointInPolygon(tt.p, ring))
		})
	}
}

func TestPointInPolygon_DegenerateRing(t *testing.T) {
	assert.False(t, PointInPolygon(GeoPoint{}, nil))
	assert.False(t, PointInPolygon(GeoPoint{}, []GeoPoint{{Lat: 1}, {Lat: 2}}))
}

func TestDistanceToPolyline(t *testing.T) {
	// Segment along the equator from lon -1 to lon 1.
	line := []GeoPoint{{Lat: 0, Lon: -1}, {Lat: 0, Lon: 1}}

	t.Run("perpendicular projection", func(t *testing.T) {
		d := DistanceToPolyline(GeoPoint{Lat: 1, Lon: 0}, line)
		assert.InDelta(t, kmPerDegree, d, kmPerDegree*0.001)
	})

	t.Run("clamped to endpoint", func(t *testing.T) {
		d := DistanceToPolyline(GeoPoint{Lat: 0, Lon: 3}, line)
		assert.InDelta(t, 2*kmPerDegree, d, 2*kmPerDegree*0.001)
	})

	t.Run("on the line", func(t *testing.T) {
		d := DistanceToPolyline(GeoPoint{Lat: 0, Lon: 0.5}, line)
		assert.InDelta(t, 0, d, 0.001)
	})

	t.Run("multi segment picks nearest", func(t *testing.T) {
		bent := []GeoPoint{{Lat: 0, Lon: -1}, {Lat: 0, Lon: 1}, {Lat: 5, Lon: 1}}
		d := DistanceToPolyline(GeoPoint{Lat: 4, Lon: 1.5}, bent)
		// Nearest is the vertical segment, half a degree of longitude away.
		assert.InDelta(t, 0.5*kmPerDegree*0.9976, d, 1.0)
	})
}

func TestNearestPointOnPolyline(t *testing.T) {
	line := []GeoPoint{{Lat: -5, Lon: 0}, {Lat: 5, Lon: 0}}

	nearest, d := NearestPointOnPolyline(GeoPoint{Lat: 2, Lon: 3}, line)
	assert.InDelta(t, 2, nearest.Lat, 1e-9)
	assert.InDelta(t, 0, nearest.Lon, 1e-9)
	assert.InDelta(t, Haversine(GeoPoint{Lat: 2, Lon: 3}, nearest), d, 1e-9)
}

func TestNearestPointOnPolyline_Degenerate(t *testing.T) {
	_, d := NearestPointOnPolyline(GeoPoint{}, nil)
	assert.True(t, d > 1e18, "empty polyline should be infinitely far")

	p, d := NearestPointOnPolyline(GeoPoint{Lat: 1, Lon: 0}, []GeoPoint{{Lat: 0, Lon: 0}})
	assert.Equal(t, GeoPoint{}, p)
	assert.InDelta(t, kmPerDegree, d, kmPerDegree*0.001)
}

func TestDistanceToPolygon_InsideIsZero(t *testing.T) {
	ring := squareRing(10, 20, 2)

	for _, p := range []GeoPoint{
		{Lat: 10, Lon: 20},
		{Lat: 11.9, Lon: 21.9},
		{Lat: 8.1, Lon: 18.1},
	} {
		assert.Zero(t, DistanceToPolygon(p, ring), "point %+v should be inside", p)
	}
}

func TestDistanceToPolygon_BoundaryMonotonicity(t *testing.T) {
	// Moving directly away from a convex polygon along a ray from its
	// centroid must never decrease the distance.
	ring := squareRing(0, 0, 1)

	prev := -1.0
	for _, lat := range []float64{1.2, 1.5, 2, 3, 5, 10, 20} {
		d := DistanceToPolygon(GeoPoint{Lat: lat, Lon: 0}, ring)
		assert.GreaterOrEqual(t, d, prev, "distance regressed at lat %v", lat)
		prev = d
	}
}

func TestStormPolygon_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ring    []GeoPoint
		wantErr string
	}{
		{"valid square", squareRing(0, 0, 1), ""},
		{"empty ring", nil, "empty forecast cone ring"},
		{"too few vertices", []GeoPoint{{Lat: 0}, {Lat: 1}, {Lat: 0}}, "fewer than 3 vertices"},
		{"unclosed ring", []GeoPoint{{Lat: 0}, {Lat: 1}, {Lon: 1}, {Lat: 2}}, "not closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StormPolygon{Name: "ALPHA", Ring: tt.ring}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "ALPHA")

			var geoErr *GeometryError
			require.True(t, errors.As(err, &geoErr))
			assert.Equal(t, "ALPHA", geoErr.Storm)
		})
	}
}

func TestTrackForStorm(t *testing.T) {
	tracks := []StormTrack{
		{Name: "ALPHA", Line: []GeoPoint{{Lat: 1}, {Lat: 2}}},
		{Name: "BETA", Line: []GeoPoint{{Lat: 3}, {Lat: 4}}},
	}

	tr, ok := TrackForStorm(tracks, "BETA")
	require.True(t, ok)
	assert.Equal(t, "BETA", tr.Name)

	// Matching is exact: case or rename differences select the fallback.
	_, ok = TrackForStorm(tracks, "beta")
	assert.False(t, ok)
	_, ok = TrackForStorm(tracks, "GAMMA")
	assert.False(t, ok)
}
