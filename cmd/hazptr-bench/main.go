// Command hazptr-bench runs the Treiber-stack and ordered-set stress
// scenarios against a configurable thread count and retire strategy,
// reporting reclaim throughput.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/hazptr"
)

func main() {
	fs := flashflags.New("hazptr-bench")
	scenario := fs.String("scenario", "treiber", "scenario to run: treiber or orderedset")
	strategy := fs.String("strategy", "local", "retire strategy: local or global")
	threads := fs.Int("threads", 8, "number of worker goroutines")
	duration := fs.Duration("duration", 3*time.Second, "how long to run the benchmark")
	scanThreshold := fs.Int("scan-threshold", 128, "Config.ScanThreshold for the reclaimer under test")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	config := hazptr.Config{ScanThreshold: *scanThreshold}

	var rec *hazptr.Reclaimer
	var err error
	switch *strategy {
	case "local":
		rec, err = hazptr.New(config)
	case "global":
		rec, err = hazptr.NewGlobal(config)
	default:
		fmt.Fprintf(os.Stderr, "unknown strategy %q: must be \"local\" or \"global\"\n", *strategy)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create reclaimer: %v\n", err)
		os.Exit(1)
	}

	var result benchResult
	switch *scenario {
	case "treiber":
		result = runTreiberBench(rec, *threads, *duration)
	case "orderedset":
		result = runOrderedSetBench(rec, *threads, *duration)
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q: must be \"treiber\" or \"orderedset\"\n", *scenario)
		os.Exit(1)
	}

	opsPerSec := float64(result.ops) / duration.Seconds()
	fmt.Printf("scenario=%s strategy=%s threads=%d duration=%s\n", *scenario, *strategy, *threads, *duration)
	fmt.Printf("  total ops:       %d (%.0f ops/sec)\n", result.ops, opsPerSec)
	reclaimsPerSec := float64(result.retires) / duration.Seconds()
	fmt.Printf("  total reclaims:  %d (%.0f reclaims/sec)\n", result.retires, reclaimsPerSec)
}

type benchResult struct {
	ops     int64
	retires int64
}

// --- Treiber stack scenario ---

type benchNode struct {
	value int
	next  unsafe.Pointer
}

func runTreiberBench(rec *hazptr.Reclaimer, threads int, duration time.Duration) benchResult {
	var head unsafe.Pointer
	var ops, retires int64

	push := func(local *hazptr.LocalState, value int) {
		n := &benchNode{value: value}
		for {
			h := atomic.LoadPointer(&head)
			n.next = h
			if atomic.CompareAndSwapPointer(&head, h, unsafe.Pointer(n)) {
				return
			}
		}
	}
	pop := func(local *hazptr.LocalState) bool {
		guard := hazptr.NewGuard(local)
		defer guard.Close()
		for {
			protected, ok := guard.Protect(&head)
			if !ok {
				return false
			}
			n := (*benchNode)(protected.Pointer())
			if atomic.CompareAndSwapPointer(&head, protected.Pointer(), n.next) {
				local.Retire(hazptr.NewRetiredRecord(protected.Pointer(), func() {
					atomic.AddInt64(&retires, 1)
				}))
				return true
			}
		}
	}

	deadline := time.Now().Add(duration)
	var wg sync.WaitGroup
	wg.Add(threads)
	for id := 0; id < threads; id++ {
		go func(id int) {
			defer wg.Done()
			local := rec.Local()
			defer local.Close()
			rng := rand.New(rand.NewSource(int64(id) + 1))
			for time.Now().Before(deadline) {
				if rng.Float64() < 0.5 {
					push(local, rng.Int())
				} else {
					pop(local)
				}
				atomic.AddInt64(&ops, 1)
			}
		}(id)
	}
	wg.Wait()

	return benchResult{ops: atomic.LoadInt64(&ops), retires: atomic.LoadInt64(&retires)}
}

// --- Ordered set scenario ---

type benchSetNode struct {
	value int
	next  unsafe.Pointer
}

func runOrderedSetBench(rec *hazptr.Reclaimer, threads int, duration time.Duration) benchResult {
	var mu sync.Mutex
	var head unsafe.Pointer
	var ops, retires int64
	const valueRange = 4096

	insert := func(value int) bool {
		mu.Lock()
		defer mu.Unlock()
		link := &head
		curr := (*benchSetNode)(atomic.LoadPointer(link))
		for curr != nil && curr.value < value {
			link = &curr.next
			curr = (*benchSetNode)(atomic.LoadPointer(link))
		}
		if curr != nil && curr.value == value {
			return false
		}
		n := &benchSetNode{value: value, next: unsafe.Pointer(curr)}
		atomic.StorePointer(link, unsafe.Pointer(n))
		return true
	}
	remove := func(local *hazptr.LocalState, value int) bool {
		mu.Lock()
		defer mu.Unlock()
		link := &head
		curr := (*benchSetNode)(atomic.LoadPointer(link))
		for curr != nil && curr.value < value {
			link = &curr.next
			curr = (*benchSetNode)(atomic.LoadPointer(link))
		}
		if curr == nil || curr.value != value {
			return false
		}
		next := atomic.LoadPointer(&curr.next)
		atomic.StorePointer(link, next)
		local.Retire(hazptr.NewRetiredRecord(unsafe.Pointer(curr), func() {
			atomic.AddInt64(&retires, 1)
		}))
		return true
	}
	contains := func(local *hazptr.LocalState, value int) bool {
		guard := hazptr.NewGuard(local)
		defer guard.Close()
		link := &head
		for {
			protected, ok := guard.Protect(link)
			if !ok {
				return false
			}
			curr := (*benchSetNode)(protected.Pointer())
			switch {
			case curr.value == value:
				return true
			case curr.value > value:
				return false
			default:
				link = &curr.next
			}
		}
	}

	deadline := time.Now().Add(duration)
	var wg sync.WaitGroup
	wg.Add(threads)
	for id := 0; id < threads; id++ {
		go func(id int) {
			defer wg.Done()
			local := rec.Local()
			defer local.Close()
			rng := rand.New(rand.NewSource(int64(id) + 1))
			for time.Now().Before(deadline) {
				value := rng.Intn(valueRange)
				if contains(local, value) {
					remove(local, value)
				} else {
					insert(value)
				}
				atomic.AddInt64(&ops, 1)
			}
		}(id)
	}
	wg.Wait()

	return benchResult{ops: atomic.LoadInt64(&ops), retires: atomic.LoadInt64(&retires)}
}
