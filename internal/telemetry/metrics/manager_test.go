package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersSessionMetrics(t *testing.T) {
	manager, reg := NewTestManagerAndRegistry()

	manager.CounterSessionsStarted.Inc()
	manager.CounterSessionsStarted.Inc()
	manager.CounterSessionsCompleted.Inc()
	manager.CounterSetsAdded.Add(3)
	manager.CounterRequests.WithLabelValues("POST", "201").Inc()
	manager.HistHistoryQueryDuration.WithLabelValues("rating", "desc").Observe(0.02)

	assert.Equal(t, float64(2), testutil.ToFloat64(manager.CounterSessionsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(manager.CounterSessionsCompleted))
	assert.Equal(t, float64(0), testutil.ToFloat64(manager.CounterSessionsDiscarded))
	assert.Equal(t, float64(3), testutil.ToFloat64(manager.CounterSetsAdded))

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	started, ok := byName["backend_test_server_sessions_started"]
	require.True(t, ok)
	assert.Equal(t, dto.MetricType_COUNTER, started.GetType())

	history, ok := byName["backend_test_server_sessions_history_query_duration_seconds"]
	require.True(t, ok)
	require.Len(t, history.GetMetric(), 1)
	assert.Equal(t, uint64(1), history.GetMetric()[0].GetHistogram().GetSampleCount())

	requests, ok := byName["backend_test_server_request"]
	require.True(t, ok)
	require.Len(t, requests.GetMetric(), 1)
	assert.Len(t, requests.GetMetric()[0].GetLabel(), 2)
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
