// collector.go: OpenTelemetry-backed MetricsCollector for hazptr
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/hazptr"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements hazptr.MetricsCollector using
// OpenTelemetry instruments.
//
// Thread-safety: safe for concurrent use by multiple goroutines — the
// underlying OTEL instruments are themselves lock-free.
type OTelMetricsCollector struct {
	scansStarted     metric.Int64Counter
	scanDuration     metric.Int64Histogram
	protectedPerScan metric.Int64Histogram
	reclaimedPerScan metric.Int64Histogram
	retired          metric.Int64Counter
	abandoned        metric.Int64Counter
	adopted          metric.Int64Counter
	registryNodes    metric.Int64Counter
}

// Options configures an OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/hazptr"
	MeterName string
}

// Option is a functional option for configuring an OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple Reclaimer instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a collector backed by the given
// MeterProvider. provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/hazptr"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	c.scansStarted, err = meter.Int64Counter(
		"hazptr_scans_started_total",
		metric.WithDescription("Total number of scan-and-reclaim passes started"),
	)
	if err != nil {
		return nil, err
	}

	c.scanDuration, err = meter.Int64Histogram(
		"hazptr_scan_duration_ns",
		metric.WithDescription("Duration of scan-and-reclaim passes in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.protectedPerScan, err = meter.Int64Histogram(
		"hazptr_scan_protected_addresses",
		metric.WithDescription("Number of distinct protected addresses observed per scan"),
	)
	if err != nil {
		return nil, err
	}

	c.reclaimedPerScan, err = meter.Int64Histogram(
		"hazptr_scan_reclaimed_records",
		metric.WithDescription("Number of retired records reclaimed per scan"),
	)
	if err != nil {
		return nil, err
	}

	c.retired, err = meter.Int64Counter(
		"hazptr_retired_total",
		metric.WithDescription("Total number of records handed to LocalState.Retire"),
	)
	if err != nil {
		return nil, err
	}

	c.abandoned, err = meter.Int64Counter(
		"hazptr_abandoned_total",
		metric.WithDescription("Total number of retired records abandoned on LocalState.Close"),
	)
	if err != nil {
		return nil, err
	}

	c.adopted, err = meter.Int64Counter(
		"hazptr_adopted_total",
		metric.WithDescription("Total number of previously abandoned records adopted by a new LocalState"),
	)
	if err != nil {
		return nil, err
	}

	c.registryNodes, err = meter.Int64Counter(
		"hazptr_registry_nodes_allocated_total",
		metric.WithDescription("Total number of hazard registry nodes allocated"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ScanStarted records that a scan-and-reclaim pass began.
func (c *OTelMetricsCollector) ScanStarted() {
	c.scansStarted.Add(context.Background(), 1)
}

// ScanCompleted records a completed scan's protected-address count,
// reclaimed-record count, and duration.
func (c *OTelMetricsCollector) ScanCompleted(protectedCount, reclaimedCount int, durationNanos int64) {
	ctx := context.Background()
	c.protectedPerScan.Record(ctx, int64(protectedCount))
	c.reclaimedPerScan.Record(ctx, int64(reclaimedCount))
	c.scanDuration.Record(ctx, durationNanos)
}

// RecordRetired records one call to LocalState.Retire.
func (c *OTelMetricsCollector) RecordRetired() {
	c.retired.Add(context.Background(), 1)
}

// RecordAbandoned records count retired records handed to the shared
// abandoned store on LocalState.Close.
func (c *OTelMetricsCollector) RecordAbandoned(count int) {
	c.abandoned.Add(context.Background(), int64(count))
}

// RecordAdopted records count previously abandoned records adopted by a
// new LocalState.
func (c *OTelMetricsCollector) RecordAdopted(count int) {
	c.adopted.Add(context.Background(), int64(count))
}

// RegistryNodeAllocated records one hazard registry node allocation.
func (c *OTelMetricsCollector) RegistryNodeAllocated() {
	c.registryNodes.Add(context.Background(), 1)
}

// Compile-time interface check
var _ hazptr.MetricsCollector = (*OTelMetricsCollector)(nil)
