package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolatedPerInstance(t *testing.T) {
	a := NewMetrics("test")
	b := NewMetrics("test")

	a.ObserveSessionEvent("created", 3)
	a.ObserveWebhook("", "ok")
	a.ObserveReportCommit("analysis", "call", 12*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(a.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.SessionEvents.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.WebhookEvents.WithLabelValues("unknown", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionEvents.WithLabelValues("created")))
}

func TestMetricsHandlerExposesNamespace(t *testing.T) {
	m := NewMetrics("voiceeval_test")
	m.ObserveSessionEvent("created", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "voiceeval_test_session_events_total")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveSessionEvent("created", 1)
	m.ObserveWebhook("x", "ok")
	m.ObserveReportCommit("empty", "latest", time.Millisecond)
}
