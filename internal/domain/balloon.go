package domain

import (
	"sort"
	"time"
)

// BalloonSample is a single timestamped position report for one balloon.
// Samples are created by the ingestion adapter, one per balloon per hour,
// and never mutated afterwards.
type BalloonSample struct {
	BalloonID string    `json:"balloon_id"`
	Point     GeoPoint  `json:"point"`
	AltitudeM float64   `json:"altitude_m"`
	Timestamp time.Time `json:"timestamp"`
}

// BalloonTrail is a balloon's ordered position history, ascending by
// timestamp. Color is a derived display attribute for the presentation
// layer; the analysis functions never read it.
type BalloonTrail struct {
	BalloonID string          `json:"balloon_id"`
	Samples   []BalloonSample `json:"samples"`
	Color     string          `json:"color,omitempty"`
}

// trailPalette cycles display colors across balloons.
var trailPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#46f0f0", "#f032e6",
}

// NewTrail builds a trail from samples, sorting them by timestamp if the
// input is not already ordered. The sort is stable so equal-timestamp
// samples keep their input order.
func NewTrail(balloonID string, samples []BalloonSample) BalloonTrail {
	ordered := make([]BalloonSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	return BalloonTrail{
		BalloonID: balloonID,
		Samples:   ordered,
		Color:     trailPalette[hashString(balloonID)%uint32(len(trailPalette))],
	}
}

// LastSample returns the most recent sample, or false for an empty trail.
func (t BalloonTrail) LastSample() (BalloonSample, bool) {
	if len(t.Samples) == 0 {
		return BalloonSample{}, false
	}
	return t.Samples[len(t.Samples)-1], true
}

// hashString is FNV-1a, inlined to keep the palette assignment allocation-free.
func hashString(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
