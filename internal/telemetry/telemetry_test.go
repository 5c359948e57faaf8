package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveCrawlerDetection(t *testing.T) {
	t.Parallel()

	ObserveCrawlerDetection("test-signature-unique")
	ObserveCrawlerDetection("test-signature-unique")

	got := testutil.ToFloat64(crawlerDetectionsTotal.WithLabelValues("test-signature-unique"))
	require.Equal(t, 2.0, got)
}

func TestObserveAuditFailure(t *testing.T) {
	t.Parallel()

	ObserveAuditFailure("test-reason-unique")

	got := testutil.ToFloat64(auditFailuresTotal.WithLabelValues("test-reason-unique"))
	require.Equal(t, 1.0, got)
}

func TestObserveHTTPRequest(t *testing.T) {
	t.Parallel()

	ObserveHTTPRequest("PATCH", "/telemetry-test", 299, 10*time.Millisecond)

	got := testutil.ToFloat64(requestsTotal.WithLabelValues("PATCH", "299"))
	require.Equal(t, 1.0, got)
}

func TestHandlerServesMetrics(t *testing.T) {
	t.Parallel()

	ObserveCrawlerDetection("handler-test")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gateway_crawler_detections_total")
}
