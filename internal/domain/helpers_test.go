package domain

import "time"

// analysisNow is the pinned "current time" used across the engine tests.
var analysisNow = time.Date(2025, time.September, 12, 18, 0, 0, 0, time.UTC)

// hourlyTrail builds a trail of n hourly samples ending at the given end
// time, starting from start and moving (vLat, vLon) degrees per hour. The
// last sample lands exactly at start + (n-1) steps.
func hourlyTrail(id string, start GeoPoint, vLat, vLon float64, n int, end time.Time) BalloonTrail {
	samples := make([]BalloonSample, 0, n)
	first := end.Add(-time.Duration(n-1) * time.Hour)
	for i := 0; i < n; i++ {
		samples = append(samples, BalloonSample{
			BalloonID: id,
			Point: GeoPoint{
				Lat: start.Lat + vLat*float64(i),
				Lon: start.Lon + vLon*float64(i),
			},
			AltitudeM: 18000,
			Timestamp: first.Add(time.Duration(i) * time.Hour),
		})
	}
	return NewTrail(id, samples)
}

// stationaryTrail builds a trail of n hourly samples all at the same point.
func stationaryTrail(id string, at GeoPoint, n int, end time.Time) BalloonTrail {
	return hourlyTrail(id, at, 0, 0, n, end)
}

func testCone(name string, lat, lon, half float64) StormPolygon {
	return StormPolygon{Name: name, Ring: squareRing(lat, lon, half)}
}
