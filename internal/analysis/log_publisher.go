package analysis

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// LogPublisher writes analysis summaries to the structured log instead of a
// broker. Used when no Kafka brokers are configured; the full result remains
// available over HTTP.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishResult(_ context.Context, result domain.AnalysisResult) error {
	p.logger.Info("analysis result",
		"run_id", result.RunID,
		"generated_at", result.GeneratedAt,
		"alerts", len(result.Alerts),
		"intersections", len(result.Intersections),
	)
	return nil
}
