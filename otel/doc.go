// Package otel provides an OpenTelemetry-backed hazptr.MetricsCollector.
//
// # Overview
//
// This package implements the hazptr.MetricsCollector interface using
// OpenTelemetry instruments, letting a Reclaimer's scan/retire/abandon/
// adopt activity be exported to any OTEL-compatible backend (Prometheus,
// Jaeger, DataDog, Grafana).
//
// It is a separate module so the hazptr core stays free of OTEL
// dependencies: applications that don't need metrics collection don't pay
// for them.
//
// # Quick start
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, _ := hazptrotel.NewOTelMetricsCollector(provider)
//
//	rec, _ := hazptr.New(hazptr.Config{MetricsCollector: collector})
//
// # Metrics exposed
//
//   - hazptr_scans_started_total: counter of scan-and-reclaim passes started
//   - hazptr_scan_duration_ns: histogram of scan durations
//   - hazptr_scan_protected_addresses: histogram of protected-address counts per scan
//   - hazptr_scan_reclaimed_records: histogram of reclaimed-record counts per scan
//   - hazptr_retired_total: counter of LocalState.Retire calls
//   - hazptr_abandoned_total: counter of records abandoned on LocalState.Close
//   - hazptr_adopted_total: counter of abandoned records adopted by a new LocalState
//   - hazptr_registry_nodes_allocated_total: counter of hazard registry node allocations
//
// All instruments are thread-safe and lock-free.
package otel
