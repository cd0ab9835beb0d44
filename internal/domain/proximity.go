package domain

import "sort"

// AnalyzeProximity finds, for every (trail, storm) pair, the single trail
// sample closest to the storm's forecast cone and emits an alert when that
// closest approach is within thresholdKm. Trails with no samples emit
// nothing. Output is sorted ascending by distance; the sort is stable so
// ties keep (trail, storm) input order.
func AnalyzeProximity(trails []BalloonTrail, storms []StormPolygon, thresholdKm float64) ([]ProximityAlert, error) {
	if err := validateStorms(storms); err != nil {
		return nil, err
	}

	var alerts []ProximityAlert
	for _, trail := range trails {
		for _, storm := range storms {
			if alert, ok := closestApproach(trail, storm); ok && alert.ClosestDistanceKm <= thresholdKm {
				alerts = append(alerts, alert)
			}
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ClosestDistanceKm < alerts[j].ClosestDistanceKm
	})
	return alerts, nil
}

// closestApproach scans every sample of the trail against the storm cone
// and returns the minimum-distance sample. ok is false for empty trails.
func closestApproach(trail BalloonTrail, storm StormPolygon) (ProximityAlert, bool) {
	var best BalloonSample
	bestDist := -1.0

	for _, sample := range trail.Samples {
		d := storm.DistanceTo(sample.Point)
		if bestDist < 0 || d < bestDist {
			best, bestDist = sample, d
		}
	}
	if bestDist < 0 {
		return ProximityAlert{}, false
	}

	return ProximityAlert{
		BalloonID:          trail.BalloonID,
		StormName:          storm.Name,
		ClosestDistanceKm:  bestDist,
		Timestamp:          best.Timestamp,
		AltitudeM:          best.AltitudeM,
		InsideForecastCone: storm.Contains(best.Point),
	}, true
}
