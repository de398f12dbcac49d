// local.go: per-goroutine-handle reclaimer state
//
// Grounded on local/inner.rs's LocalInner: a bounded hazard-slot cache, a
// strategy-dependent retired-record store, an operation counter driving
// periodic scans, and a scan-and-reclaim driver. Go goroutines have no
// thread-local storage or destructor hook, so where the original relies on
// Drop running automatically at thread exit, this package requires the
// caller to explicitly call Close when a goroutine-handle is done.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import "sort"

// LocalState is the per-goroutine-handle view of a Reclaimer. It must not
// be shared across goroutines: the hazard-pointer protocol requires a
// single-writer, single-reader relationship between a LocalState and the
// goroutine using it. Obtain one with Reclaimer.Local and release it with
// Close when the goroutine is done participating in reclamation.
type LocalState struct {
	registry    *HazardRegistry
	retireState localRetireState
	config      Config
	hazardCache []*hazardSlot
	scanBuf     []uintptr
	opsCount    int
	closed      bool
}

func newLocalState(registry *HazardRegistry, retireState localRetireState, config Config) *LocalState {
	return &LocalState{
		registry:    registry,
		retireState: retireState,
		config:      config,
		hazardCache: make([]*hazardSlot, 0, config.MaxReserved),
		scanBuf:     make([]uintptr, 0, config.InitialRetireCacheSize),
	}
}

// getHazard returns a hazard slot initialized per strategy, preferring a
// reuse from the local cache over a registry allocation.
func (l *LocalState) getHazard(strategy protectStrategy) *hazardSlot {
	if n := len(l.hazardCache); n > 0 {
		slot := l.hazardCache[n-1]
		l.hazardCache = l.hazardCache[:n-1]
		if !strategy.reserveOnly {
			slot.setProtected(strategy.addr)
		}
		return slot
	}
	return l.registry.getOrInsert(strategy)
}

// tryRecycleHazard attempts to return slot to the local cache instead of
// releasing it to FREE for any goroutine-handle to claim. Reports whether
// the cache had room.
func (l *LocalState) tryRecycleHazard(slot *hazardSlot) bool {
	if len(l.hazardCache) >= l.config.MaxReserved {
		return false
	}
	slot.setThreadReserved()
	l.hazardCache = append(l.hazardCache, slot)
	return true
}

// Retire hands record to this handle's retire strategy. Depending on
// Config.CountStrategy this may advance the scan counter and trigger a
// scan-and-reclaim pass.
func (l *LocalState) Retire(record RetiredRecord) {
	l.retireState.retire(record)
	if l.config.MetricsCollector != nil {
		l.config.MetricsCollector.RecordRetired()
	}
	if l.config.CountStrategy == CountRetire {
		l.increaseOpsCount()
	}
}

// onGuardRelease is the hook Guard.Release calls; it only does work under
// the CountRelease counting strategy.
func (l *LocalState) onGuardRelease() {
	if l.config.CountStrategy == CountRelease {
		l.increaseOpsCount()
	}
}

func (l *LocalState) increaseOpsCount() {
	l.opsCount++
	if l.opsCount >= l.config.ScanThreshold {
		l.opsCount = 0
		l.scanAndReclaim()
	}
}

// scanAndReclaim is the reclamation driver described in §4.3:
//  1. Skip entirely if nothing is retired.
//  2. Issue a full seq-cst fence so every hazard-slot publish that
//     happened-before this call is visible to the relaxed reads that
//     follow it.
//  3. Collect every slot's protected address and sort it, enabling binary
//     search in the strategy's reclaim pass.
//  4. Delegate to the strategy to drop every retired record absent from
//     that set.
func (l *LocalState) scanAndReclaim() {
	if !l.retireState.hasRetired() {
		return
	}

	metrics := l.config.MetricsCollector
	var start int64
	if metrics != nil {
		metrics.ScanStarted()
		start = l.config.TimeProvider.Now()
	}

	l.scanBuf = l.scanBuf[:0]
	scanFence()
	l.scanBuf = l.registry.collectProtected(l.scanBuf)
	sort.Slice(l.scanBuf, func(i, j int) bool { return l.scanBuf[i] < l.scanBuf[j] })

	reclaimed := l.retireState.reclaimAllUnprotected(l.scanBuf)

	if metrics != nil {
		end := l.config.TimeProvider.Now()
		metrics.ScanCompleted(len(l.scanBuf), reclaimed, end-start)
	}
}

// Close releases this LocalState's cached hazard slots, performs one final
// scan-and-reclaim attempt, and hands any records it could not reclaim to
// its strategy's shared store so other goroutine-handles can continue
// trying. A LocalState must not be used after Close, and Close must not be
// called more than once.
func (l *LocalState) Close() {
	if l.closed {
		mustNotHappen(NewErrInternal("LocalState.Close", nil))
	}
	l.closed = true

	for _, slot := range l.hazardCache {
		slot.setFree()
	}
	l.hazardCache = nil

	l.scanAndReclaim()
	l.retireState.onExit()
}
