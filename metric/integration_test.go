package metric

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockComponent simulates a pipeline component that registers its own metrics
type mockComponent struct {
	name     string
	observed prometheus.Counter
	depth    prometheus.Gauge
}

func (m *mockComponent) RegisterMetrics(registrar MetricsRegistrar) error {
	m.observed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "mock",
		Name:      "observed_total",
		Help:      "Total number of records observed",
	})
	if err := registrar.RegisterCounter(m.name, "observed_total", m.observed); err != nil {
		return err
	}

	m.depth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "mock",
		Name:      "depth",
		Help:      "Current queue depth",
	})
	return registrar.RegisterGauge(m.name, "depth", m.depth)
}

func TestMetricsIntegration_HTTPExposition(t *testing.T) {
	registry := NewMetricsRegistry()
	registry.CoreMetrics().SetBuildInfo("test")

	comp := &mockComponent{name: "mock"}
	require.NoError(t, comp.RegisterMetrics(registry))
	comp.observed.Add(7)
	comp.depth.Set(3)

	server := NewServer(0, "", registry)
	assert.Equal(t, "http://localhost:9090/metrics", server.Address())

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "accessmon_mock_observed_total 7")
	assert.Contains(t, body.String(), "accessmon_mock_depth 3")
	assert.Contains(t, body.String(), `accessmon_build_info{version="test"} 1`)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestMetricsIntegration_WriteTextfile(t *testing.T) {
	registry := NewMetricsRegistry()

	comp := &mockComponent{name: "mock"}
	require.NoError(t, comp.RegisterMetrics(registry))
	comp.observed.Add(2)

	path := filepath.Join(t.TempDir(), "accessmon.prom")
	require.NoError(t, registry.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE accessmon_mock_observed_total counter")
	assert.Contains(t, string(data), "accessmon_mock_observed_total 2")

	// A second dump replaces the first.
	comp.observed.Inc()
	require.NoError(t, registry.WriteTextfile(path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "accessmon_mock_observed_total 3")
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer(19099, "/metrics", NewMetricsRegistry())
	assert.NoError(t, server.Stop())
}

func TestServer_StartWithoutRegistry(t *testing.T) {
	server := NewServer(19098, "/metrics", nil)
	err := server.Start()
	require.Error(t, err)
}

func TestServer_StartAfterShutdownReturns(t *testing.T) {
	server := NewServer(19097, "/metrics", NewMetricsRegistry())
	require.NoError(t, server.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start after Shutdown should return immediately")
	}
}
