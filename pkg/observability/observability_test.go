package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		body   string
	}{
		{"healthy", fakePinger{}, http.StatusOK, `"database":"healthy"`},
		{"unhealthy", fakePinger{err: errors.New("disk I/O error")}, http.StatusServiceUnavailable, "unhealthy: disk I/O error"},
		{"not configured", nil, http.StatusOK, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthChecker(tt.db).HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestMetricsMuxExposesRPCMetrics(t *testing.T) {
	RecordSessionConfirmed(OutcomePendingPayment, 1000)
	RecordSessionsSettled(PathReceipt, 1)

	srv := httptest.NewServer(NewMetricsMux(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `settleup_sessions_confirmed_total{outcome="pending_payment"}`)
	assert.Contains(t, string(body), "settleup_transferred_amount_total")
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, "ok", StatusCode(nil))
	assert.Equal(t, "not_found", StatusCode(connect.NewError(connect.CodeNotFound, errors.New("x"))))
	assert.Equal(t, "unknown", StatusCode(errors.New("plain")))
}
