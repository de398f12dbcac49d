// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a configuration file and tracks the latest validated
// Config derived from it. A Reclaimer's registry and retire strategy are
// fixed at construction and cannot be swapped in place, so HotConfig does
// not reach into a running Reclaimer itself — OnReload is the hook a
// caller uses to decide what to do with a changed Config, typically
// constructing a replacement Reclaimer and atomically swapping a pointer
// to it.
type HotConfig struct {
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after a configuration file change parses into a
	// validated Config. Must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations. If nil, NoOpLogger is used.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration and starts
// watching the configuration file immediately.
//
// Example configuration file (YAML):
//
//	hazptr:
//	  scan_threshold: 128
//	  max_reserved: 16
//	  initial_retire_cache_size: 128
//	  count_strategy: "retire"
//
// Supported configuration keys:
//   - hazptr.scan_threshold (int): events between scan-and-reclaim passes
//   - hazptr.max_reserved (int): per-goroutine-handle hazard cache cap
//   - hazptr.initial_retire_cache_size (int): initial retired-bag capacity
//   - hazptr.count_strategy (string): "retire" or "release"
func NewHotConfig(opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	hc := &HotConfig{
		OnReload: opts.OnReload,
		config:   DefaultConfig(),
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the latest validated configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when the watched file changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseCountStrategy extracts a CountStrategy from a string value.
func parseCountStrategy(value interface{}) (CountStrategy, bool) {
	str, ok := value.(string)
	if !ok {
		return 0, false
	}
	switch str {
	case "retire":
		return CountRetire, true
	case "release":
		return CountRelease, true
	default:
		return 0, false
	}
}

// parseConfig extracts a hazptr Config from Argus config data. Unknown or
// malformed fields are left at their DefaultConfig value rather than
// rejected outright — a hot-reload parse failure should never block the
// watcher loop.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := DefaultConfig()

	section, ok := data["hazptr"].(map[string]interface{})
	if !ok {
		if _, hasThreshold := data["scan_threshold"]; hasThreshold {
			section = data
		} else {
			return config
		}
	}

	if v, ok := parsePositiveInt(section["scan_threshold"]); ok {
		config.ScanThreshold = v
	}
	if v, ok := parsePositiveInt(section["max_reserved"]); ok {
		config.MaxReserved = v
	}
	if v, ok := parsePositiveInt(section["initial_retire_cache_size"]); ok {
		config.InitialRetireCacheSize = v
	}
	if v, ok := parseCountStrategy(section["count_strategy"]); ok {
		config.CountStrategy = v
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig()
	}
	return config
}
