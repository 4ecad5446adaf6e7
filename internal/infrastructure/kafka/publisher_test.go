package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"DailyEdition/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishReport(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	pub := newPublisherWithWriter(writer, "edition.runs")

	report := domain.RunReport{
		ID:         "run-7",
		StartedAt:  time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 6, 4, 0, 0, time.UTC),
	}
	report.Add(domain.TaskResult{Name: "Opinions", Success: false, Outcome: domain.OutcomeFailed})

	require.NoError(t, pub.PublishReport(context.Background(), report))
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	require.Equal(t, "run-7", string(msg.Key))

	var decoded domain.RunReport
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, 1, decoded.FailedCount)
	require.Equal(t, "Opinions", decoded.Results[0].Name)
	require.Equal(t, "failed_count", msg.Headers[0].Key)
	require.Equal(t, "1", string(msg.Headers[0].Value))

	require.NoError(t, pub.Close())
	require.True(t, writer.closed)
}

func TestPublishReportWrapsWriterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	pub := newPublisherWithWriter(&recordingWriter{err: boom}, "edition.runs")

	err := pub.PublishReport(context.Background(), domain.RunReport{ID: "x"})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "edition.runs")
}
