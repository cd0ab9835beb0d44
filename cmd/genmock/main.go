// Command genmock writes the deterministic mock scenario to JSON fixtures,
// plus the analysis result the engine produces from it. It runs the actual
// engine so fixture output always matches current analysis behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/balloon-proximity-service/internal/adapter/mockdata"
	"github.com/couchcryptid/balloon-proximity-service/internal/analysis"
	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// fixtureTime pins the scenario so regenerated fixtures diff cleanly.
var fixtureTime = time.Date(2025, time.September, 12, 18, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "output directory for JSON fixtures")
	at := flag.String("at", "", "scenario time, RFC3339 (default fixed)")
	threshold := flag.Float64("threshold-km", domain.DefaultThresholdKm, "proximity threshold in kilometers")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	now := fixtureTime
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		now = parsed.UTC()
	}

	trails := mockdata.GenerateTrails(now)
	storms, tracks := mockdata.GenerateStorms()

	result, err := analysis.Analyze(context.Background(), trails, storms, tracks, now, *threshold)
	if err != nil {
		return fmt.Errorf("running analysis: %w", err)
	}

	fixtures := map[string]any{
		"trails.json": trails,
		"storms.json": storms,
		"tracks.json": tracks,
		"result.json": result,
	}
	for name, v := range fixtures {
		path := filepath.Join(*outDir, name)
		if err := writeJSON(path, v); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		log.Printf("wrote %s", path)
	}

	printStats(trails, storms, result)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(trails []domain.BalloonTrail, storms []domain.StormPolygon, result domain.AnalysisResult) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Generated at: %s\n", result.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Balloons: %d, Storms: %d\n", len(trails), len(storms))

	fmt.Printf("\nAlerts: %d\n", len(result.Alerts))
	for _, a := range result.Alerts {
		fmt.Printf("  %s vs %s: %.1f km (inside=%t)\n",
			a.BalloonID, a.StormName, a.ClosestDistanceKm, a.InsideForecastCone)
	}

	past := domain.ByKind(result.Intersections, domain.KindPast)
	future := domain.ByKind(result.Intersections, domain.KindFuture)
	fmt.Printf("\nIntersections: %d past, %d future\n", len(past), len(future))
	for _, x := range future {
		fmt.Printf("  %s vs %s in %.1f h: %.1f km (inside=%t)\n",
			x.BalloonID, x.StormName, x.HoursFromNow, x.DistanceKm, x.InsideForecastCone)
	}

	fmt.Printf("\nBalloons with past intersections: %s\n",
		balloonIDs(domain.BalloonsHavingKind(trails, result.Intersections, domain.KindPast)))
	fmt.Printf("Balloons with future intersections: %s\n",
		balloonIDs(domain.BalloonsHavingKind(trails, result.Intersections, domain.KindFuture)))
}

func balloonIDs(trails []domain.BalloonTrail) string {
	if len(trails) == 0 {
		return "none"
	}
	ids := make([]string, len(trails))
	for i, tr := range trails {
		ids[i] = tr.BalloonID
	}
	return strings.Join(ids, ", ")
}
