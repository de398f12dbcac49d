// errors.go: structured fatal-path error handling for hazptr
//
// This file provides structured error types using the go-errors library for
// configuration, registry, invariant and internal failures (NewHotConfig's
// own argument and watcher errors are returned as they are). Per the
// reclamation protocol, almost
// all of these are fatal: a misconfigured reclaimer or a hazard-slot
// invariant violation leaves no safe continuation, so callers are expected
// to abort rather than retry. Recoverable signals (NotEqual from
// ProtectIfEqual, capacity-exceeded from the local hazard cache) are plain
// boolean returns on the hot path and never allocate a go-errors value.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package hazptr

import (
	goerrors "errors"
	"fmt"

	"github.com/agilira/go-errors"
)

// Error codes for hazptr configuration and invariant failures.
const (
	// Configuration errors (1xxx)
	ErrCodeInvalidConfig      errors.ErrorCode = "HAZPTR_INVALID_CONFIG"
	ErrCodeZeroScanThreshold  errors.ErrorCode = "HAZPTR_ZERO_SCAN_THRESHOLD"
	ErrCodeInvalidMaxReserved errors.ErrorCode = "HAZPTR_INVALID_MAX_RESERVED"
	ErrCodeInvalidRetireCache errors.ErrorCode = "HAZPTR_INVALID_RETIRE_CACHE_SIZE"

	// Registry errors (2xxx)
	ErrCodeRegistryAllocFailed errors.ErrorCode = "HAZPTR_REGISTRY_ALLOC_FAILED"

	// Invariant violations (3xxx) - always fatal, always a bug if hit
	ErrCodeInvariantViolation errors.ErrorCode = "HAZPTR_INVARIANT_VIOLATION"
	ErrCodeImpossibleSlot     errors.ErrorCode = "HAZPTR_IMPOSSIBLE_SLOT_STATE"
	ErrCodeMissingRetired     errors.ErrorCode = "HAZPTR_MISSING_RETIRED_RECORD"

	// Hot-reload errors (4xxx)
	ErrCodeHotReloadConfig errors.ErrorCode = "HAZPTR_HOT_RELOAD_CONFIG"

	// Internal errors (5xxx)
	ErrCodeInternalError  errors.ErrorCode = "HAZPTR_INTERNAL_ERROR"
	ErrCodePanicRecovered errors.ErrorCode = "HAZPTR_PANIC_RECOVERED"
)

const (
	msgZeroScanThreshold  = "scan threshold must be >= 1"
	msgInvalidMaxReserved = "max reserved hazards must be >= 1"
	msgInvalidRetireCache = "initial retire cache size must be >= 0"
	msgRegistryAllocFail  = "failed to allocate a new hazard registry node"
	msgImpossibleSlot     = "hazard slot observed in an impossible state"
	msgMissingRetired     = "taken header had no retired record attached"
	msgHotReloadConfig    = "failed to apply hot-reloaded configuration"
	msgInternalError      = "internal reclaimer error"
	msgPanicRecovered     = "panic recovered while a goroutine-handle held hazard pointers"
)

// =============================================================================
// CONFIGURATION ERRORS
// =============================================================================

// NewErrZeroScanThreshold creates a fatal error for a zero scan threshold.
// A zero threshold would trigger a scan-and-reclaim on every counted event,
// and — per HAZPTR_SCAN_FREQ's build-time contract — is rejected outright
// rather than silently clamped to a default.
func NewErrZeroScanThreshold() error {
	return errors.NewWithField(ErrCodeZeroScanThreshold, msgZeroScanThreshold, "provided_value", 0).
		WithSeverity("critical")
}

// NewErrInvalidMaxReserved creates an error for an invalid hazard cache cap.
func NewErrInvalidMaxReserved(got int) error {
	return errors.NewWithContext(ErrCodeInvalidMaxReserved, msgInvalidMaxReserved, map[string]interface{}{
		"provided_value":   got,
		"minimum_required": 1,
	})
}

// NewErrInvalidRetireCache creates an error for a negative retire cache size.
func NewErrInvalidRetireCache(got int) error {
	return errors.NewWithField(ErrCodeInvalidRetireCache, msgInvalidRetireCache, "provided_value", got)
}

// =============================================================================
// REGISTRY / INVARIANT ERRORS
// =============================================================================

// NewErrRegistryAllocFailed wraps an allocation failure while growing the
// hazard registry. Always fatal: there is no reduced-capacity fallback
// that would preserve the safety protocol.
func NewErrRegistryAllocFailed(cause error) error {
	return errors.Wrap(cause, ErrCodeRegistryAllocFailed, msgRegistryAllocFail).WithSeverity("critical")
}

// NewErrImpossibleSlotState reports a hazard slot observed holding a value
// the finite-state-machine in spec §8 (P3) forbids at that point, e.g. a
// NOT_YET_USED slot encountered after the append-only-iteration guarantee
// said it could not be.
func NewErrImpossibleSlotState(observed uintptr) error {
	return errors.NewWithField(ErrCodeImpossibleSlot, msgImpossibleSlot, "observed_state", observed).
		WithSeverity("critical")
}

// NewErrMissingRetiredRecord reports a GlobalRetire header taken off the
// shared stack with no RetiredRecord attached. Per the design notes this is
// treated as an assertion failure, never silently skipped.
func NewErrMissingRetiredRecord(addr uintptr) error {
	return errors.NewWithField(ErrCodeMissingRetired, msgMissingRetired, "address", fmt.Sprintf("%#x", addr)).
		WithSeverity("critical")
}

// =============================================================================
// HOT-RELOAD / INTERNAL ERRORS
// =============================================================================

// NewErrHotReloadConfig wraps a failure to apply a reloaded configuration.
// Recoverable: the previous configuration remains in effect.
func NewErrHotReloadConfig(cause error) error {
	return errors.Wrap(cause, ErrCodeHotReloadConfig, msgHotReloadConfig).AsRetryable()
}

// NewErrInternal creates a generic internal error.
func NewErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternalError, msgInternalError).
			WithContext("operation", operation).
			WithSeverity("warning")
	}
	return errors.NewWithField(ErrCodeInternalError, msgInternalError, "operation", operation).
		WithSeverity("warning")
}

// NewErrPanicRecovered creates an error describing a recovered panic that
// triggered abandon-on-panic cleanup of a goroutine-handle's state.
func NewErrPanicRecovered(operation string, panicValue interface{}) error {
	return errors.NewWithContext(ErrCodePanicRecovered, msgPanicRecovered, map[string]interface{}{
		"operation":   operation,
		"panic_value": fmt.Sprintf("%v", panicValue),
	}).WithSeverity("critical")
}

// =============================================================================
// ERROR CHECKING HELPERS
// =============================================================================

// IsConfigError reports whether err is a configuration validation error.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvalidConfig || code == ErrCodeZeroScanThreshold ||
			code == ErrCodeInvalidMaxReserved || code == ErrCodeInvalidRetireCache
	}
	return false
}

// IsInvariantViolation reports whether err indicates an impossible internal
// state was observed — a library bug, never a caller misuse.
func IsInvariantViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		code := coder.ErrorCode()
		return code == ErrCodeInvariantViolation || code == ErrCodeImpossibleSlot ||
			code == ErrCodeMissingRetired
	}
	return false
}

// IsRetryable reports whether the error can be retried, e.g. a transient
// hot-reload config parse failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var retryable errors.Retryable
	if goerrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code from an error, if any.
func GetErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}

// GetErrorContext extracts structured context from an error, if any.
func GetErrorContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	var hazErr *errors.Error
	if goerrors.As(err, &hazErr) {
		return hazErr.Context
	}
	return nil
}

// mustNotHappen panics with a fatal, coded error. It is the package's only
// panic site reachable from invariant checks performed outside the explicit
// configuration-validation path, matching spec.md §7: internal invariant
// violations "must terminate the process".
func mustNotHappen(err error) {
	panic(err)
}
