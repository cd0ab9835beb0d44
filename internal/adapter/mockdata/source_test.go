package mockdata

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

var scenarioNow = time.Date(2025, time.September, 12, 18, 0, 0, 0, time.UTC)

func TestSource_Deterministic(t *testing.T) {
	src := NewSource(clockwork.NewFakeClockAt(scenarioNow))

	first, err := src.FetchTrails(context.Background())
	require.NoError(t, err)
	second, err := src.FetchTrails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	storms, tracks, err := src.FetchStorms(context.Background())
	require.NoError(t, err)
	require.Len(t, storms, 2)
	require.Len(t, tracks, 1)
	for _, storm := range storms {
		require.NoError(t, storm.Validate())
	}
}

func TestScenario_ProducesAlerts(t *testing.T) {
	trails := GenerateTrails(scenarioNow)
	storms, _ := GenerateStorms()

	alerts, err := domain.AnalyzeProximity(trails, storms, domain.DefaultThresholdKm)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	// WB-001 sits inside the BETA cone, so it sorts first at distance zero.
	assert.Equal(t, "WB-001", alerts[0].BalloonID)
	assert.Equal(t, "TROPICAL STORM BETA", alerts[0].StormName)
	assert.Zero(t, alerts[0].ClosestDistanceKm)
	assert.True(t, alerts[0].InsideForecastCone)

	assert.Equal(t, "WB-000", alerts[1].BalloonID)
	assert.Equal(t, "HURRICANE ALPHA", alerts[1].StormName)
	assert.InDelta(t, 50.4, alerts[1].ClosestDistanceKm, 1.0)
	assert.False(t, alerts[1].InsideForecastCone)
}

func TestScenario_ChaserCrossesForecastTrack(t *testing.T) {
	trails := GenerateTrails(scenarioNow)
	storms, tracks := GenerateStorms()

	hits, err := domain.PredictFutureIntersections(trails[0], storms[0], tracks, domain.DefaultThresholdKm, scenarioNow)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Westbound at 0.5 deg/h from -75.0, the trail meets the meridian
	// forecast track at -78.0 six hours out.
	assert.Equal(t, domain.KindFuture, hits[0].Kind)
	assert.InDelta(t, 6.0, hits[0].HoursFromNow, 1e-9)
	assert.False(t, hits[0].InsideForecastCone)
	assert.Less(t, hits[0].DistanceKm, 1.0)
}

func TestScenario_WandererStaysQuiet(t *testing.T) {
	trails := GenerateTrails(scenarioNow)
	storms, tracks := GenerateStorms()

	intersections, err := domain.ClassifyIntersections(trails[2:3], storms, scenarioNow, domain.DefaultThresholdKm)
	require.NoError(t, err)
	assert.Empty(t, intersections)

	for _, storm := range storms {
		hits, err := domain.PredictFutureIntersections(trails[2], storm, tracks, domain.DefaultThresholdKm, scenarioNow)
		require.NoError(t, err)
		assert.Empty(t, hits)
	}
}
