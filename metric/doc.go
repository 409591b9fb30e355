// Package metric provides Prometheus-based metrics collection for accessmon runs.
//
// The package offers a registry holding the core run metrics (status, duration,
// errors, input bytes) alongside component-specific collectors registered by the
// engine, the reorder buffer and the ring buffers. Metrics describe the process
// itself; traffic statistics and alerts are never exported here.
//
// # Architecture
//
//  1. Core Metrics: run-level metrics registered automatically (Metrics type)
//  2. Component Registry: registration of component collectors (MetricsRegistrar interface)
//  3. Exposition: an HTTP endpoint (Server type) and a text dump (WriteText, WriteTextfile)
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	registry.CoreMetrics().SetBuildInfo(Version)
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server", "error", err)
//	    }
//	}()
//	defer server.Shutdown(context.Background())
//
// For batch runs where nothing scrapes the process, dump the registry once at
// the end:
//
//	if err := registry.WriteTextfile("/var/lib/node_exporter/accessmon.prom"); err != nil {
//	    slog.Warn("metrics dump failed", "error", err)
//	}
//
// # Component Metrics
//
// Components register their own collectors under a component name. Names are
// unique per component, and a second registration returns an invalid-class
// error:
//
//	err := registry.RegisterCounter("engine", "records_total", counter)
//
// Core metric helpers are nil-safe so components can be built without a
// registry in tests.
package metric
