package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordPayment(PaymentOutcomeAccepted, 120.5)
	m.RecordPayment(PaymentOutcomeRejected, 0)
	m.RecordPayment(PaymentOutcomeRejected, 0)
	m.RecordTranscript()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues(PaymentOutcomeAccepted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.payments.WithLabelValues(PaymentOutcomeRejected)))
	assert.Equal(t, 120.5, testutil.ToFloat64(m.paymentAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcripts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/me/finance", http.StatusOK, 10*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService

	assert.NotPanics(t, func() {
		m.RecordPayment(PaymentOutcomeAccepted, 1)
		m.RecordTranscript()
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
