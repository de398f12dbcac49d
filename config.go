// config.go: configuration for the hazptr reclaimer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"os"
	"strconv"

	"github.com/agilira/go-timecache"
)

// CountStrategy selects when a LocalState's operation counter advances and
// therefore how often a scan-and-reclaim pass is triggered.
type CountStrategy int

const (
	// CountRetire advances the counter once per LocalState.Retire call.
	CountRetire CountStrategy = iota

	// CountRelease advances the counter once per guard release event instead
	// of once per retire: a Guard.Release call, or a Guard.Close of a guard
	// not already released, each counted at most once per protect cycle.
	// Chosen when retires are rare but protect/release cycles are frequent,
	// so reclamation still happens on a steady cadence.
	CountRelease
)

// Config holds configuration parameters for a Reclaimer.
type Config struct {
	// ScanThreshold is the number of counted events (see CountStrategy)
	// between scan-and-reclaim passes on a single goroutine-handle. Must
	// be > 0. Default: DefaultScanThreshold, or HAZPTR_SCAN_FREQ if set.
	ScanThreshold int

	// MaxReserved bounds the number of hazard slots a single LocalState
	// keeps cached for reuse before returning them to the registry for
	// other goroutine-handles to claim. Must be > 0. Default: DefaultMaxReserved.
	MaxReserved int

	// InitialRetireCacheSize is the starting capacity of a LocalState's
	// retired-records bag (LocalRetire) and, under either strategy, of each
	// LocalState's buffer of protected addresses collected during a scan.
	// Must be >= 0. Default: DefaultRetireCacheSize.
	InitialRetireCacheSize int

	// CountStrategy selects what advances a LocalState's scan counter.
	// Default: CountRetire.
	CountStrategy CountStrategy

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for metrics timestamps.
	// If nil, a cached-clock implementation is used. Default: system time.
	TimeProvider TimeProvider

	// MetricsCollector receives scan/retire/abandon/adopt counters.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

// Validate normalizes a Config in place, applying defaults for zero-valued
// fields, and returns an error for values that have no safe default — a
// negative retire cache size or a negative max-reserved would silently
// disable parts of the protocol rather than merely perform worse, so those
// are rejected instead of normalized.
func (c *Config) Validate() error {
	if c.ScanThreshold == 0 {
		c.ScanThreshold = envScanThreshold()
	}
	if c.ScanThreshold <= 0 {
		return NewErrZeroScanThreshold()
	}

	if c.MaxReserved == 0 {
		c.MaxReserved = DefaultMaxReserved
	}
	if c.MaxReserved < 0 {
		return NewErrInvalidMaxReserved(c.MaxReserved)
	}

	if c.InitialRetireCacheSize == 0 {
		c.InitialRetireCacheSize = DefaultRetireCacheSize
	}
	if c.InitialRetireCacheSize < 0 {
		return NewErrInvalidRetireCache(c.InitialRetireCacheSize)
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ScanThreshold:          envScanThreshold(),
		MaxReserved:            DefaultMaxReserved,
		InitialRetireCacheSize: DefaultRetireCacheSize,
		CountStrategy:          CountRetire,
		Logger:                 NoOpLogger{},
		TimeProvider:           &systemTimeProvider{},
		MetricsCollector:       NoOpMetricsCollector{},
	}
}

// envScanThreshold reads HAZPTR_SCAN_FREQ, the runtime stand-in for what
// upstream hazard-pointer implementations fix at build time. An unset or
// unparsable value falls back to DefaultScanThreshold; an explicitly set
// value of "0" is preserved so Validate rejects it rather than silently
// substituting a default the caller did not ask for.
func envScanThreshold() int {
	raw, ok := os.LookupEnv("HAZPTR_SCAN_FREQ")
	if !ok {
		return DefaultScanThreshold
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultScanThreshold
	}
	return n
}

// systemTimeProvider is the default time provider using go-timecache.
// It provides cached-clock time access with zero allocations, used only to
// timestamp metrics — never consulted on the protect/retire hot path.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
