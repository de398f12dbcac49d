// strategy_global.go: GlobalRetire — one shared stack of retired records
//
// Grounded on strategy/global_retire.rs's Header/RetiredQueue: every retire
// pushes directly onto one process-wide stack so any goroutine-handle can
// help reclaim records retired by another, including an idle one.
//
// The original colocates a Header{next, retired} at offset 0 of the
// record's own allocation — the record type itself is generic over the
// strategy and reserves that space. Go gives a caller an arbitrary
// unsafe.Pointer to an allocation it does not control the layout of, so
// this package cannot prepend a header to it. Instead, retire allocates a
// small headerNode carrying only the record's address and chains those
// nodes through the shared stack; a sync.Map keyed by address holds the
// RetiredRecord itself from retire until reclaim looks it up and deletes
// the entry. This preserves the push / take-all / relink-survivors
// algorithm exactly; it trades one header allocation (already required,
// since Header.next needs somewhere to live) for one map entry per
// in-flight retired record instead of struct embedding.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"sort"
	"sync"
	"sync/atomic"
)

type headerNode struct {
	addr uintptr
	next atomic.Pointer[headerNode]
}

func (h *headerNode) nextPtr() *atomic.Pointer[headerNode] { return &h.next }

type retiredQueue = rawQueue[headerNode, *headerNode]

// globalRetireStrategy implements retireStrategy. All LocalStates created
// from the same Reclaimer share the same queue and side-table.
type globalRetireStrategy struct {
	queue   retiredQueue
	pending sync.Map // uintptr address -> RetiredRecord
	metrics MetricsCollector
}

func newGlobalRetireStrategy(metrics MetricsCollector) *globalRetireStrategy {
	return &globalRetireStrategy{metrics: metrics}
}

func (s *globalRetireStrategy) newLocal(metrics MetricsCollector) localRetireState {
	return &globalRetireLocalState{strategy: s}
}

func (s *globalRetireStrategy) retire(record RetiredRecord) {
	addr := record.address()
	s.pending.Store(addr, record)
	s.queue.push(&headerNode{addr: addr})
}

// reclaimAllUnprotected takes the whole stack, walks the taken chain, and
// relinks every still-protected header into a keep sublist which is pushed
// back in bulk at the end; unprotected headers have their record looked up
// in the side-table, reclaimed, and the table entry removed.
func (s *globalRetireStrategy) reclaimAllUnprotected(sortedProtected []uintptr) int {
	curr := s.queue.takeAll()
	var first, last *headerNode
	reclaimed := 0

	for curr != nil {
		next := curr.next.Load()
		idx := sort.Search(len(sortedProtected), func(i int) bool { return sortedProtected[i] >= curr.addr })
		if idx < len(sortedProtected) && sortedProtected[idx] == curr.addr {
			curr.next.Store(nil)
			if first == nil {
				first = curr
				last = curr
			} else {
				last.next.Store(curr)
				last = curr
			}
		} else {
			v, ok := s.pending.LoadAndDelete(curr.addr)
			if !ok {
				mustNotHappen(NewErrMissingRetiredRecord(curr.addr))
			}
			v.(RetiredRecord).doReclaim()
			reclaimed++
		}
		curr = next
	}

	if first != nil {
		s.queue.pushMany(first, last)
	}
	return reclaimed
}

type globalRetireLocalState struct {
	strategy *globalRetireStrategy
}

func (g *globalRetireLocalState) retire(record RetiredRecord) {
	g.strategy.retire(record)
}

func (g *globalRetireLocalState) hasRetired() bool {
	return !g.strategy.queue.isEmpty()
}

func (g *globalRetireLocalState) reclaimAllUnprotected(sortedProtected []uintptr) int {
	return g.strategy.reclaimAllUnprotected(sortedProtected)
}

// onExit is a no-op: retired records already live in the shared stack, not
// in anything owned by this handle.
func (g *globalRetireLocalState) onExit() {}
