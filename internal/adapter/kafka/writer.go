package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/catalog"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/config"
	"github.com/GeorgJohn/TimeseriesWeatherDataEstimation/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	classRain   = "rain"
	classNoRain = "no_rain"
)

// Writer produces balanced day samples to a Kafka topic.
// It implements pipeline.Sink.
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
		BatchSize:    cfg.PublishBatchSize,
		BatchTimeout: cfg.PublishFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// sampleMessage is the wire form of one published day.
type sampleMessage struct {
	RunID   string `json:"run_id"`
	Catalog string `json:"catalog_version"`
	domain.DaySample
}

// LoadBatch serializes and publishes day samples in a single WriteMessages
// call. Samples are keyed by date.
func (w *Writer) LoadBatch(ctx context.Context, runID string, samples []domain.DaySample) error {
	if len(samples) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(samples))
	for i := range samples {
		msg, err := serializeToMessage(runID, samples[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d samples: %w", len(msgs), err)
	}
	w.logger.Debug("samples published", "topic", w.writer.Topic, "count", len(msgs), "run_id", runID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(runID string, sample domain.DaySample) (kafkago.Message, error) {
	data, err := json.Marshal(sampleMessage{RunID: runID, Catalog: catalog.Version, DaySample: sample})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day sample %s: %w", sample.Date, err)
	}
	return kafkago.Message{
		Key:   []byte(sample.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "class", Value: []byte(className(sample))},
			{Key: "shape", Value: []byte(strconv.Itoa(sample.Steps) + "x" + strconv.Itoa(sample.Features))},
		},
	}, nil
}

func className(s domain.DaySample) string {
	if s.Rainy() {
		return classRain
	}
	return classNoRain
}

// DecodeSample parses a message produced by LoadBatch.
func DecodeSample(msg kafkago.Message) (runID string, sample domain.DaySample, err error) {
	var m sampleMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		return "", domain.DaySample{}, fmt.Errorf("decode day sample: %w", err)
	}
	if m.Catalog != catalog.Version {
		return "", domain.DaySample{}, fmt.Errorf("decode day sample: catalog version %q, want %q", m.Catalog, catalog.Version)
	}
	if len(m.Values) != m.Steps*m.Features {
		return "", domain.DaySample{}, fmt.Errorf("decode day sample %s: %d values for shape %dx%d", m.Date, len(m.Values), m.Steps, m.Features)
	}
	return m.RunID, m.DaySample, nil
}
