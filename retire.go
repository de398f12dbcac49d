// retire.go: type-erased retired records and the retire strategy contract
//
// Grounded on retired.rs / RetiredPtr's fat-pointer design: a pair of the
// record's address and its drop function, carried without the record's
// concrete type. Go has no vtable-pointer trick available to safe code, so
// the second half of the pair is a closure instead of a raw function
// pointer + type-descriptor pair; the effect (type-erased, single-shot
// reclaim callback) is the same.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import "unsafe"

// RetiredRecord is an opaque handle owning a logically-unlinked record.
// It is created once, at retirement, by (*LocalState).Retire, and consumed
// exactly once at reclamation.
type RetiredRecord struct {
	addr    unsafe.Pointer
	reclaim func()
}

// NewRetiredRecord packages ptr together with the callback that must run
// exactly once to reclaim the record it points to — e.g. returning it to a
// sync.Pool, closing a resource it owns, or simply letting it become
// garbage by not holding any further reference to it. ptr is used only to
// compare against the hazard-protected address set during a scan; it is
// never dereferenced by this package.
func NewRetiredRecord(ptr unsafe.Pointer, reclaim func()) RetiredRecord {
	if reclaim == nil {
		mustNotHappen(NewErrInternal("NewRetiredRecord", nil))
	}
	return RetiredRecord{addr: ptr, reclaim: reclaim}
}

// address returns the record's address for scan comparison.
func (r RetiredRecord) address() uintptr {
	return uintptr(r.addr)
}

// doReclaim invokes the record's reclaim callback. Must be called at most
// once per RetiredRecord.
func (r RetiredRecord) doReclaim() {
	r.reclaim()
}

// retireStrategy is the contract shared by LocalRetire and GlobalRetire:
// identical external behavior, different placement of retired records.
type retireStrategy interface {
	// newLocal creates the per-goroutine-handle retire state for this
	// strategy, adopting any abandoned records left by previously exited
	// handles along the way.
	newLocal(metrics MetricsCollector) localRetireState
}

// localRetireState is the per-goroutine-handle view of a retire strategy.
type localRetireState interface {
	// retire hands record to this handle's bag/queue.
	retire(record RetiredRecord)

	// hasRetired reports whether any records are currently held.
	hasRetired() bool

	// reclaimAllUnprotected drops every held record whose address is
	// absent from sortedProtected (must be sorted ascending) and returns
	// how many records were reclaimed.
	reclaimAllUnprotected(sortedProtected []uintptr) int

	// onExit is called exactly once, when the owning LocalState is
	// closed, after a final reclaimAllUnprotected attempt. Any records
	// still held must be made reclaimable by other goroutine-handles.
	onExit()
}
