// guard.go: a scoped hazard-slot handle
//
// Grounded on guard.rs's Guard: a single hazard slot bound to one
// goroutine-handle for the duration of one or more protect attempts,
// following the classical publish-then-revalidate hazard pointer protocol.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"sync/atomic"
	"unsafe"
)

// ProtectedPtr is an untyped pointer protected from reclamation because its
// address currently appears in some hazard slot. The type information is
// deliberately stripped: nothing about protection depends on it.
type ProtectedPtr struct {
	addr unsafe.Pointer
}

// Pointer returns the protected address.
func (p ProtectedPtr) Pointer() unsafe.Pointer { return p.addr }

// IsNil reports whether the protected value was a nil pointer.
func (p ProtectedPtr) IsNil() bool { return p.addr == nil }

// Guard borrows one hazard slot from a LocalState for the lifetime of a
// single protect/verify sequence. It is not safe for concurrent use: like
// its owning LocalState, a Guard belongs to one goroutine.
type Guard struct {
	slot  *hazardSlot
	local *LocalState

	// released tracks whether this guard has already counted a release
	// event since its last successful Protect/ProtectIfEqual. Under
	// CountRelease, a release event must be counted exactly once — not
	// once in Release and again in Close — so Close only counts one if
	// the guard wasn't already released.
	released bool
}

// NewGuard acquires a hazard slot from local, reserved but not yet
// protecting anything.
func NewGuard(local *LocalState) *Guard {
	slot := local.getHazard(reserveOnlyStrategy())
	return &Guard{slot: slot, local: local}
}

// Clone acquires an independent slot from the same LocalState and, if g
// currently protects an address, publishes that same address into the new
// slot — both guards then independently protect it; releasing one does not
// unprotect it in the other.
func (g *Guard) Clone() *Guard {
	var strategy protectStrategy
	if addr, ok := g.slot.protectedAddr(); ok {
		strategy = protectStrategyFor(addr)
	} else {
		strategy = reserveOnlyStrategy()
	}
	slot := g.local.getHazard(strategy)
	return &Guard{slot: slot, local: g.local}
}

// Protect publishes and validates src per the hazard-pointer protocol:
// read src, publish the value into the slot with a sequentially consistent
// store, then re-read src. If the re-read matches, the value is protected
// and returned; if not, the slot is updated to the new value and the loop
// repeats. A nil value releases the slot and reports false.
func (g *Guard) Protect(src *unsafe.Pointer) (ProtectedPtr, bool) {
	ptr := atomic.LoadPointer(src)
	for {
		if ptr == nil {
			g.Release()
			return ProtectedPtr{}, false
		}
		g.slot.setProtected(uintptr(ptr))
		reread := atomic.LoadPointer(src)
		if reread == ptr {
			g.released = false
			return ProtectedPtr{addr: ptr}, true
		}
		ptr = reread
	}
}

// ProtectIfEqual behaves like Protect but first checks src against expected
// without touching the slot; if they already differ it returns false
// immediately (the NotEqual signal from §7, represented here as a plain
// boolean since it is a routine, expected outcome on a CAS-retry loop, not
// an error). Unlike Protect, a nil src that matches a nil expected is a
// success: the slot is released and a nil ProtectedPtr is returned with
// true. If the values matched but then diverge after publishing, the slot
// is released back to THREAD_RESERVED and false is returned.
func (g *Guard) ProtectIfEqual(src *unsafe.Pointer, expected unsafe.Pointer) (ProtectedPtr, bool) {
	ptr := atomic.LoadPointer(src)
	if ptr != expected {
		return ProtectedPtr{}, false
	}
	if ptr == nil {
		g.Release()
		return ProtectedPtr{}, true
	}
	g.slot.setProtected(uintptr(ptr))
	if atomic.LoadPointer(src) == ptr {
		g.released = false
		return ProtectedPtr{addr: ptr}, true
	}
	g.Release()
	return ProtectedPtr{}, false
}

// Release transitions the guard's slot to THREAD_RESERVED, keeping it owned
// by this goroutine-handle's cache but no longer protecting any address.
// Safe to call multiple times in a row; per §9's count_strategy=Release
// note, a logical release is only counted once — Release sets the flag so
// a subsequent Close on the same guard does not count a second time.
func (g *Guard) Release() {
	g.slot.setThreadReserved()
	if !g.released {
		g.released = true
		g.local.onGuardRelease()
	}
}

// Close returns the guard's slot to the owning LocalState, recycling it
// into the local cache if there is room and otherwise releasing it to FREE
// for any goroutine-handle to claim. A Guard must not be used after Close.
// Closing a guard that is still protecting something counts as its release
// event.
func (g *Guard) Close() {
	if !g.released {
		g.released = true
		g.local.onGuardRelease()
	}
	g.slot.setThreadReserved()
	if !g.local.tryRecycleHazard(g.slot) {
		g.slot.setFree()
	}
}
