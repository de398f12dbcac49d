// interfaces.go: public interfaces for hazptr
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// Used only to timestamp metrics; never consulted on the protect/retire
// hot path.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	Now() int64
}

// MetricsCollector receives counters and timings from the reclaimer.
// Implementations must be safe for concurrent use and should be cheap
// enough to call from the scan-and-reclaim path of every goroutine-handle.
type MetricsCollector interface {
	// ScanStarted records that a scan-and-reclaim pass began.
	ScanStarted()

	// ScanCompleted records a completed scan: the number of hazard
	// addresses observed as protected, the number of retired records
	// actually reclaimed, and the scan's duration.
	ScanCompleted(protectedCount, reclaimedCount int, durationNanos int64)

	// RecordRetired is called once per call to LocalState.Retire.
	RecordRetired()

	// RecordAbandoned is called when a goroutine-handle hands its
	// remaining retired records to the shared abandoned store on Close.
	RecordAbandoned(count int)

	// RecordAdopted is called when a new goroutine-handle adopts
	// previously abandoned records.
	RecordAdopted(count int)

	// RegistryNodeAllocated is called whenever the hazard registry grows
	// by one node (hazardsPerNode additional slots).
	RegistryNodeAllocated()
}

// NoOpMetricsCollector discards every event. Used as the default so the
// reclaimer never pays for metrics it wasn't asked to record.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) ScanStarted() {}

func (NoOpMetricsCollector) ScanCompleted(protectedCount, reclaimedCount int, durationNanos int64) {}

func (NoOpMetricsCollector) RecordRetired()         {}
func (NoOpMetricsCollector) RecordAbandoned(int)    {}
func (NoOpMetricsCollector) RecordAdopted(int)      {}
func (NoOpMetricsCollector) RegistryNodeAllocated() {}
