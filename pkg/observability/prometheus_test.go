package observability_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locstats/pkg/observability"
)

func TestNewPrometheus_ServesRecordedMetrics(t *testing.T) {
	t.Parallel()

	prom, err := observability.NewPrometheus()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, prom.MeterProvider().Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(prom.Meter)
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "GET /api/summary", observability.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	prom.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "locstats_requests")
	assert.Contains(t, text, "locstats_request_duration_seconds")
	assert.Contains(t, text, "go_goroutines")
}

func TestNewPrometheus_IndependentRegistries(t *testing.T) {
	t.Parallel()

	first, err := observability.NewPrometheus()
	require.NoError(t, err)

	second, err := observability.NewPrometheus()
	require.NoError(t, err)

	assert.NotSame(t, first.MeterProvider(), second.MeterProvider())
}
