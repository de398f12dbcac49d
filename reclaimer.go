// reclaimer.go: Reclaimer construction — the entry point into the package
//
// Grounded on default.rs/lib.rs's Hp type (a reclaimer parameterized over a
// retire strategy selected once at construction) but without the process-
// wide lazily-initialized singleton default.rs builds on top: this package
// leaves lifetime and sharing of a *Reclaimer entirely to the caller instead
// of hiding a package-level global behind it.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

// Reclaimer owns the process-wide hazard registry and one retire strategy,
// chosen once at construction. Obtain a per-goroutine-handle view with
// Local; a single Reclaimer is intended to be shared across every goroutine
// that needs hazard-pointer protection for the same set of data structures.
type Reclaimer struct {
	registry *HazardRegistry
	strategy retireStrategy
	config   Config
}

// New constructs a Reclaimer using the LocalRetire strategy: each
// goroutine-handle keeps its own retired-record bag and only hands it to a
// shared abandoned-records stack when the handle is closed. Lowest
// contention for retire-heavy workloads.
func New(config Config) (*Reclaimer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reclaimer{
		registry: newHazardRegistry(config.MetricsCollector),
		strategy: newLocalRetireStrategy(config.InitialRetireCacheSize),
		config:   config,
	}, nil
}

// NewGlobal constructs a Reclaimer using the GlobalRetire strategy: every
// retired record goes onto one shared stack so any goroutine-handle can
// help reclaim records retired by another, including an idle one.
func NewGlobal(config Config) (*Reclaimer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Reclaimer{
		registry: newHazardRegistry(config.MetricsCollector),
		strategy: newGlobalRetireStrategy(config.MetricsCollector),
		config:   config,
	}, nil
}

// Local returns a new per-goroutine-handle view of this Reclaimer. The
// returned LocalState must only ever be used by the calling goroutine, and
// must be closed with LocalState.Close when that goroutine is done
// participating in reclamation — Go has no destructor hook to do this
// automatically the way the source this package is grounded on relies on a
// thread-local's Drop implementation.
func (r *Reclaimer) Local() *LocalState {
	return newLocalState(r.registry, r.strategy.newLocal(r.config.MetricsCollector), r.config)
}
