package domain

import "time"

// ClassifyIntersections scans every trail sample against every storm cone
// and records one Intersection per sample within thresholdKm. Samples are
// not deduplicated per balloon: a trail that crossed a cone contributes
// every qualifying point. Kind is Past exactly when the sample's signed
// hours-from-now is ≤ 0.
func ClassifyIntersections(trails []BalloonTrail, storms []StormPolygon, now time.Time, thresholdKm float64) ([]Intersection, error) {
	if err := validateStorms(storms); err != nil {
		return nil, err
	}

	var intersections []Intersection
	for _, trail := range trails {
		for _, storm := range storms {
			for _, sample := range trail.Samples {
				d := storm.DistanceTo(sample.Point)
				if d > thresholdKm {
					continue
				}

				hoursFromNow := sample.Timestamp.Sub(now).Hours()
				kind := KindFuture
				if hoursFromNow <= 0 {
					kind = KindPast
				}

				intersections = append(intersections, Intersection{
					BalloonID:          trail.BalloonID,
					StormName:          storm.Name,
					Kind:               kind,
					DistanceKm:         d,
					Timestamp:          sample.Timestamp,
					AltitudeM:          sample.AltitudeM,
					InsideForecastCone: storm.Contains(sample.Point),
					HoursFromNow:       hoursFromNow,
				})
			}
		}
	}
	return intersections, nil
}
