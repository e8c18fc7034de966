package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.TokenIssued("access")
	m.TokenIssued("access")
	m.TokenIssued("refresh")
	m.RefreshRejected("revoked")
	m.RecordsSwept(5)
	m.RecordsSwept(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("access")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokensIssued.WithLabelValues("refresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshRejected.WithLabelValues("revoked")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.recordsSwept))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("/auth/login", http.MethodPost, http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `auth_http_requests_total{method="POST",route="/auth/login",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
