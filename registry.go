// registry.go: the global append-only hazard slot registry
//
// Grounded on the page-sized hazard array nodes of hazard/list.rs (31 slots
// of 128 bytes plus one 128-byte-aligned next pointer, fitting one 4 KiB
// page) combined with the three-state NOT_YET_USED/FREE/THREAD_RESERVED slot
// semantics of hazard/mod.rs: a freshly appended node's first slot starts
// already claimed with the inserting goroutine-handle's requested strategy,
// its remaining slots start NOT_YET_USED.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import "sync/atomic"

// registryNode is one page-sized block of hazard slots in the append-only
// list. Every slot and the next pointer occupy their own cache line to
// avoid false sharing between goroutine-handles publishing to neighboring
// slots: hazardsPerNode*cacheLineSize + cacheLineSize == 4096 bytes.
type registryNode struct {
	slots [hazardsPerNode]hazardSlot
	next  atomic.Pointer[registryNode]
	_     [cacheLineSize - 8]byte
}

func newRegistryNode(strategy protectStrategy) *registryNode {
	node := &registryNode{}
	node.slots[0].protected.Store(strategy.initialValue())
	for i := 1; i < hazardsPerNode; i++ {
		node.slots[i].protected.Store(slotNotYetUsed)
	}
	return node
}

// HazardRegistry is the process-wide, append-only list of hazard slots.
// Any goroutine may traverse the full list; nodes are never removed or
// relocated once linked, so a *hazardSlot handed out by getOrInsert remains
// valid for the remaining lifetime of the process.
type HazardRegistry struct {
	head    atomic.Pointer[registryNode]
	metrics MetricsCollector
}

func newHazardRegistry(metrics MetricsCollector) *HazardRegistry {
	return &HazardRegistry{metrics: metrics}
}

// getOrInsert claims a slot for the calling goroutine-handle according to
// strategy, traversing existing nodes first and only appending a new node
// when every slot seen so far is owned by another handle. This path is
// marked cold in the algorithm it's grounded on: the common case is a hit in
// LocalState's own bounded hazard cache, so allocating a fresh registry node
// should be rare.
func (r *HazardRegistry) getOrInsert(strategy protectStrategy) *hazardSlot {
	want := strategy.initialValue()

	prev := &r.head
	curr := prev.Load()
	for curr != nil {
		if slot := tryClaimInNode(curr, want); slot != nil {
			return slot
		}
		prev = &curr.next
		curr = prev.Load()
	}
	return r.insertBack(prev, strategy)
}

// tryClaimInNode attempts to CAS any unclaimed slot in node (skipping slot 0,
// which was assigned at node-construction time to whichever handle caused
// the node to be appended) from either FREE or NOT_YET_USED to want.
func tryClaimInNode(node *registryNode, want uintptr) *hazardSlot {
	for i := 1; i < hazardsPerNode; i++ {
		slot := &node.slots[i]
		cur := slot.protected.Load()
		if cur != slotFree && cur != slotNotYetUsed {
			continue
		}
		if slot.protected.CompareAndSwap(cur, want) {
			return slot
		}
	}
	return nil
}

// insertBack appends a new node starting at tail, retrying against whatever
// node wins the race rather than rolling back to head: a thread that loses
// the CAS on the expected tail pointer tries its candidate slot against the
// winning node first, only allocating a fresh node if that also fails.
func (r *HazardRegistry) insertBack(tail *atomic.Pointer[registryNode], strategy protectStrategy) *hazardSlot {
	node := newRegistryNode(strategy)
	for {
		if tail.CompareAndSwap(nil, node) {
			if r.metrics != nil {
				r.metrics.RegistryNodeAllocated()
			}
			return &node.slots[0]
		}
		existing := tail.Load()
		if existing == nil {
			// Lost the CAS to a concurrent Store observed as nil; retry.
			continue
		}
		if slot := tryClaimInNode(existing, strategy.initialValue()); slot != nil {
			return slot
		}
		tail = &existing.next
	}
}

// collectProtected appends the address of every slot currently holding a
// protection to dst, which must already reflect any prior full seq-cst
// fence required by the scan-and-reclaim protocol (§5.2): the fence is the
// caller's responsibility (see scanFence in fence.go), this method only
// performs the relaxed slot reads that follow it.
func (r *HazardRegistry) collectProtected(dst []uintptr) []uintptr {
	curr := r.head.Load()
	for curr != nil {
		for i := range curr.slots {
			if addr, ok := curr.slots[i].protectedAddr(); ok {
				dst = append(dst, addr)
			}
		}
		curr = curr.next.Load()
	}
	return dst
}
