// Package hazptr implements hazard-pointer based safe memory reclamation
// (SMR) for lock-free data structures.
//
// # Overview
//
// Lock-free data structures unlink nodes from shared state before they can
// safely be freed: another goroutine may still hold a raw pointer to a node
// that has just been removed. hazptr solves this by having every reader
// publish, for the duration of an access, the address it is about to
// dereference into a globally visible "hazard slot". A retired node is only
// physically freed once a scan of every hazard slot in the process confirms
// no slot still holds its address.
//
// # Core concepts
//
//   - Reclaimer owns the hazard registry and a retire strategy
//     (LocalRetire or GlobalRetire), chosen once at construction.
//   - LocalState is the per-goroutine-handle view of the reclaimer: a
//     bounded cache of hazard slots, a bag of retired-but-not-yet-freed
//     records, and the operation counter that drives periodic scans.
//   - Guard borrows one hazard slot from a LocalState for the lifetime of
//     a single protect/verify sequence, following the classical
//     publish-then-revalidate hazard pointer protocol.
//
// # Quick start
//
//	rec, _ := hazptr.New(hazptr.DefaultConfig())
//	local := rec.Local()
//	defer local.Close()
//
//	guard := hazptr.NewGuard(local)
//	defer guard.Close()
//
//	if ptr, ok := guard.Protect(&atomicHead); ok {
//	    // ptr.Pointer() is guaranteed not to be reclaimed while guard is alive.
//	}
//
// # Retire strategies
//
// LocalRetire keeps each goroutine-handle's retired records in its own bag
// and only hands them to a shared abandoned-records stack when the handle
// is closed — lowest contention for retire-heavy workloads. GlobalRetire
// places every retired record on one shared stack so any goroutine-handle
// can help reclaim records retired by another, including idle ones.
//
// # Observability
//
// A MetricsCollector may be supplied via Config to record scan counts and
// durations, protected and reclaimed counts per scan, retire/abandon/adopt
// counts, and registry growth; the separate hazptr/otel module
// implements this interface backed by OpenTelemetry instruments. Config
// also accepts a Logger (zero-overhead no-op by default) and a
// TimeProvider for cheap timestamps used by metrics.
//
// # Out of scope
//
// hazptr does not provide a typed atomic-pointer wrapper layer (callers
// load/CAS their own unsafe.Pointer fields and call Guard.Protect /
// LocalState.Retire directly), nor does it ship lock-free data structures:
// the Treiber-stack and ordered-set workloads in cmd/hazptr-bench exist
// purely to exercise and stress-test the reclaimer.
package hazptr
