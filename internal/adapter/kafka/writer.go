package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/balloon-proximity-service/internal/config"
	"github.com/couchcryptid/balloon-proximity-service/internal/domain"
)

// Writer produces analysis results to a Kafka topic.
// It implements analysis.ResultPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishResult serializes one analysis result and publishes it keyed by run
// ID, so replayed runs compact onto the same key.
func (w *Writer) PublishResult(ctx context.Context, result domain.AnalysisResult) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish analysis result: %w", err)
	}
	w.logger.Debug("analysis result published",
		"run_id", result.RunID,
		"bytes", len(msg.Value),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AnalysisResult into a Kafka message.
func serializeToMessage(result domain.AnalysisResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(result.Alerts)))},
			{Key: "intersection_count", Value: []byte(strconv.Itoa(len(result.Intersections)))},
		},
	}, nil
}
