// hazptr.go: package identity and version constants for hazptr
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hazptr

const (
	// Version of the hazptr reclamation library.
	Version = "v0.1.0-dev"

	// DefaultScanThreshold is the number of retire/release events between
	// reclamation scans, unless overridden by Config or HAZPTR_SCAN_FREQ.
	DefaultScanThreshold = 128

	// DefaultMaxReserved is the size of a LocalState's bounded hazard cache.
	DefaultMaxReserved = 16

	// DefaultRetireCacheSize is the initial capacity of a LocalRetire bag.
	DefaultRetireCacheSize = 128

	// hazardsPerNode is the number of slots per registry node. Sized,
	// together with one cache-line-aligned next pointer, to fit one 4KiB
	// page when each slot and the next pointer occupy their own 128-byte
	// line: 31*128 + 128 = 4096.
	hazardsPerNode = 31

	// cacheLineSize is the padding applied to each hazard slot and to the
	// registry node's next pointer to avoid false sharing between threads
	// publishing to neighboring slots.
	cacheLineSize = 128
)
