package metrics_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.ObserveRequest("list", "ok", 20*time.Millisecond)
	m.ObserveRequest("list", "rate_limited", time.Millisecond)
	m.DeletePending(1)
	m.DeletePending(1)
	m.DeletePending(-1)
	m.DeleteOutcome("undone")

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("list", "ok")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.PendingDeletes), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DeleteOutcomes.WithLabelValues("undone")), 0)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("list", "ok", time.Second)
		m.DeletePending(1)
		m.DeleteOutcome("committed")
		m.FormSubmitted("create", "ok")
		m.CommandReceived("/list")
	})
}
