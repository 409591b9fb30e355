package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/accessmon/config"
	"github.com/c360/accessmon/metric"
	"github.com/c360/accessmon/record"
)

type discard struct{}

func (discard) WriteLine(string) error { return nil }

func TestEngine_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	cfg := config.DefaultConfig()
	cfg.AlertWindow = 2
	cfg.AlertRate = 1

	eng, err := New(cfg, WithMetrics(registry))
	require.NoError(t, err)

	records := []record.Record{{Timestamp: 100}, {Timestamp: 100}, {Timestamp: 115}}
	res, err := eng.Run(context.Background(), record.NewSliceSource(records), discard{})
	require.NoError(t, err)

	// Chunks [100,110) and [110,120), one alert and one recovery.
	assert.Equal(t, int64(4), res.Lines)
	assert.Equal(t, 3.0, testutil.ToFloat64(eng.metrics.records))
	assert.Equal(t, 115.0, testutil.ToFloat64(eng.metrics.logTime))
	assert.Equal(t, 2.0, testutil.ToFloat64(eng.metrics.lines.WithLabelValues("stats")))
	assert.Equal(t, 2.0, testutil.ToFloat64(eng.metrics.lines.WithLabelValues("alert")))

	core := registry.CoreMetrics()
	assert.Equal(t, float64(metric.StatusCompleted), testutil.ToFloat64(core.RunStatus))
	assert.Equal(t, 1, testutil.CollectAndCount(core.RunDuration))
}

func TestEngine_MetricsConflict(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	_, err := New(config.DefaultConfig(), WithMetrics(registry))
	require.NoError(t, err)

	_, err = New(config.DefaultConfig(), WithMetrics(registry))
	require.Error(t, err)
}

func TestEngine_FailedRunRecordsError(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	cfg := config.DefaultConfig()
	cfg.MaxTimestampError = 0

	eng, err := New(cfg, WithMetrics(registry))
	require.NoError(t, err)

	records := []record.Record{{Timestamp: 100}, {Timestamp: 101}, {Timestamp: 100}}
	_, err = eng.Run(context.Background(), record.NewSliceSource(records), discard{})
	require.Error(t, err)

	core := registry.CoreMetrics()
	assert.Equal(t, float64(metric.StatusFailed), testutil.ToFloat64(core.RunStatus))
	assert.Equal(t, 1.0, testutil.ToFloat64(core.ErrorsTotal.WithLabelValues("engine", "fatal")))
}
