package domain

import "time"

// ByKind returns the intersections matching kind, preserving order.
func ByKind(list []Intersection, kind IntersectionKind) []Intersection {
	var out []Intersection
	for _, x := range list {
		if x.Kind == kind {
			out = append(out, x)
		}
	}
	return out
}

// BalloonsHavingKind returns the subset of trails whose balloon appears in
// at least one intersection of the given kind, preserving trail order.
func BalloonsHavingKind(trails []BalloonTrail, list []Intersection, kind IntersectionKind) []BalloonTrail {
	ids := make(map[string]struct{})
	for _, x := range list {
		if x.Kind == kind {
			ids[x.BalloonID] = struct{}{}
		}
	}

	var out []BalloonTrail
	for _, trail := range trails {
		if _, ok := ids[trail.BalloonID]; ok {
			out = append(out, trail)
		}
	}
	return out
}

// RecentTrajectory returns a copy of the trail restricted to samples with
// timestamp ≥ now − hours. The input trail is not mutated.
func RecentTrajectory(trail BalloonTrail, now time.Time, hours float64) BalloonTrail {
	cutoff := now.Add(-time.Duration(hours * float64(time.Hour)))

	var recent []BalloonSample
	for _, s := range trail.Samples {
		if !s.Timestamp.Before(cutoff) {
			recent = append(recent, s)
		}
	}
	return BalloonTrail{
		BalloonID: trail.BalloonID,
		Samples:   recent,
		Color:     trail.Color,
	}
}
