package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// ReportPublisher emits each run report as a JSON message keyed by run id.
type ReportPublisher struct {
	writer messageWriter
	topic  string
}

var _ ports.ReportSink = (*ReportPublisher)(nil)

// NewReportPublisher connects a writer to the given brokers and topic.
func NewReportPublisher(brokers []string, topic string) *ReportPublisher {
	w := kafkago.NewWriter(kafkago.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		Balancer:    &kafkago.Hash{},
		MaxAttempts: 3,
	})
	return &ReportPublisher{writer: w, topic: topic}
}

func newPublisherWithWriter(w messageWriter, topic string) *ReportPublisher {
	return &ReportPublisher{writer: w, topic: topic}
}

// PublishReport writes the report to the topic.
func (p *ReportPublisher) PublishReport(ctx context.Context, report domain.RunReport) error {
	msg, err := reportMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending messages.
func (p *ReportPublisher) Close() error {
	return p.writer.Close()
}

func reportMessage(report domain.RunReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "failed_count", Value: []byte(fmt.Sprintf("%d", report.FailedCount))},
			{Key: "timestamp", Value: []byte(report.FinishedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
