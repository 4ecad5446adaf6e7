package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"DailyEdition/internal/config"
)

func TestInitMetricsServesPrometheus(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{ServiceName: "edition-test", Metrics: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	counter, err := p.Meter.Int64Counter("edition_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	p.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), "edition_test_total{"), string(body))
	require.Contains(t, string(body), "go_goroutines")
}

func TestInitWithEverythingOff(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{}, nil)
	require.NoError(t, err)
	require.Nil(t, p.MetricsHandler)
	require.Nil(t, p.TracerProvider)
	require.NotNil(t, p.Tracer)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), config.TelemetryConfig{Tracing: true, TraceExporter: "zipkin"}, nil)
	require.Error(t, err)
}
