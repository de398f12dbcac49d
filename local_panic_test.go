// local_panic_test.go: exception-safety (P6) — abandon_on_panic
//
// Models spec scenario 3: goroutine A protects R1 and R2; goroutine B
// retires R1, R2, and R3, then panics. hazptr has no way to intercept a
// panic on a goroutine it does not own, so the expected idiom — exercised
// here — is a deferred recover that calls LocalState.Close, which performs
// one final scan (reclaiming whatever isn't protected, here just R3) and
// abandons the rest for another handle to pick up later.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"sync/atomic"
	"testing"
	"unsafe"
)

func TestAbandonOnPanic(t *testing.T) {
	rec, err := New(Config{ScanThreshold: 1000})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r1, r2, r3 := &dropNode{1}, &dropNode{2}, &dropNode{3}
	var reclaimed int32
	onRetire := func() { atomic.AddInt32(&reclaimed, 1) }

	var src1, src2 unsafe.Pointer
	atomic.StorePointer(&src1, unsafe.Pointer(r1))
	atomic.StorePointer(&src2, unsafe.Pointer(r2))

	// Goroutine A: protects R1 and R2 and keeps them protected for the
	// duration of the test.
	localA := rec.Local()
	defer localA.Close()
	guard1 := NewGuard(localA)
	guard2 := NewGuard(localA)
	defer guard1.Close()
	defer guard2.Close()
	if _, ok := guard1.Protect(&src1); !ok {
		t.Fatal("guard1.Protect should succeed")
	}
	if _, ok := guard2.Protect(&src2); !ok {
		t.Fatal("guard2.Protect should succeed")
	}

	// Goroutine B: retires R1, R2, R3 and then panics; a deferred recover
	// closes its LocalState so the abandon path runs instead of leaking it.
	func() {
		localB := rec.Local()
		defer func() {
			if recover() != nil {
				localB.Close()
			}
		}()

		localB.Retire(NewRetiredRecord(unsafe.Pointer(r1), onRetire))
		localB.Retire(NewRetiredRecord(unsafe.Pointer(r2), onRetire))
		localB.Retire(NewRetiredRecord(unsafe.Pointer(r3), onRetire))

		panic("simulated worker panic")
	}()

	// Only R3 was unprotected, so only it should have been reclaimed by
	// localB.Close()'s final scan.
	if got := atomic.LoadInt32(&reclaimed); got != 1 {
		t.Fatalf("reclaimed = %d before A releases, want 1 (only R3)", got)
	}

	// A releases its protections. R1 and R2 sit in B's abandoned bag, not
	// A's own; a new handle adopts that bag on construction and can now
	// reclaim both, since nothing protects them any longer.
	guard1.Release()
	guard2.Release()

	adopter := rec.Local()
	defer adopter.Close()
	adopter.scanAndReclaim()

	if got := atomic.LoadInt32(&reclaimed); got != 3 {
		t.Fatalf("reclaimed = %d after A releases and a new handle scans, want 3", got)
	}
}
