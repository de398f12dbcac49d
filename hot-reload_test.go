// hot-reload_test.go: tests for dynamic configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package hazptr

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewHotConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	initialConfig := `hazptr:
  scan_threshold: 64
  max_reserved: 8
  count_strategy: "retire"
`
	if err := os.WriteFile(configPath, []byte(initialConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	if hc == nil {
		t.Fatal("Expected non-nil HotConfig")
	}
	if hc.watcher == nil {
		t.Error("Expected non-nil watcher")
	}
}

func TestNewHotConfigEmptyPath(t *testing.T) {
	_, err := NewHotConfig(HotConfigOptions{ConfigPath: ""})
	if err == nil {
		t.Error("Expected error for empty config path")
	}
}

func TestHotConfigStartStop(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	config := `hazptr:
  scan_threshold: 32
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if err := hc.Stop(); err != nil {
		t.Errorf("Failed to stop: %v", err)
	}
}

func TestHotConfigConfigReload(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	initialConfig := `hazptr:
  scan_threshold: 64
  max_reserved: 8
`
	if err := os.WriteFile(configPath, []byte(initialConfig), 0644); err != nil {
		t.Fatalf("Failed to write initial config: %v", err)
	}

	var mu sync.Mutex
	reloadCount := 0
	reloadCh := make(chan Config, 2)

	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 50 * time.Millisecond,
		OnReload: func(oldConfig, newConfig Config) {
			mu.Lock()
			reloadCount++
			mu.Unlock()
			select {
			case reloadCh <- newConfig:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !hc.watcher.IsRunning() {
		t.Fatal("Watcher is not running after Start()")
	}

	select {
	case initialCfg := <-reloadCh:
		if initialCfg.ScanThreshold != 64 {
			t.Fatalf("Initial config wrong: ScanThreshold=%d, expected 64", initialCfg.ScanThreshold)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Timeout waiting for initial config load")
	}

	time.Sleep(1500 * time.Millisecond)

	updatedConfig := `hazptr:
  scan_threshold: 256
  max_reserved: 32
  count_strategy: "release"
`
	tempPath := configPath + ".tmp"
	if err := os.WriteFile(tempPath, []byte(updatedConfig), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		t.Fatalf("Failed to rename config: %v", err)
	}
	if file, err := os.Open(configPath); err == nil {
		_ = file.Sync()
		_ = file.Close()
	}

	select {
	case newConfig := <-reloadCh:
		if newConfig.ScanThreshold != 256 {
			t.Errorf("Expected ScanThreshold=256, got %d", newConfig.ScanThreshold)
		}
		if newConfig.MaxReserved != 32 {
			t.Errorf("Expected MaxReserved=32, got %d", newConfig.MaxReserved)
		}
		if newConfig.CountStrategy != CountRelease {
			t.Errorf("Expected CountStrategy=CountRelease, got %v", newConfig.CountStrategy)
		}
	case <-time.After(3 * time.Second):
		mu.Lock()
		count := reloadCount
		mu.Unlock()
		t.Fatalf("Timeout waiting for config reload. reloadCount=%d (expected at least 2)", count)
	}

	mu.Lock()
	finalCount := reloadCount
	mu.Unlock()
	if finalCount < 2 {
		t.Errorf("Expected at least 2 reload events (initial + update), got %d", finalCount)
	}
}

func TestHotConfigGetConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	config := `hazptr:
  scan_threshold: 77
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	cfg := hc.GetConfig()
	if cfg.ScanThreshold == 0 {
		t.Error("Expected default config before start")
	}

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)

	cfg = hc.GetConfig()
	if cfg.ScanThreshold != 77 {
		t.Errorf("Expected ScanThreshold=77, got %d", cfg.ScanThreshold)
	}
}

func TestHotConfigParseConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dummy.yaml")

	if err := os.WriteFile(configPath, []byte("hazptr: {}"), 0644); err != nil {
		t.Fatalf("Failed to write dummy config: %v", err)
	}

	hc, err := NewHotConfig(HotConfigOptions{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	tests := []struct {
		name   string
		data   map[string]interface{}
		expect func(*testing.T, Config)
	}{
		{
			name: "valid config with all fields",
			data: map[string]interface{}{
				"hazptr": map[string]interface{}{
					"scan_threshold":            float64(200),
					"max_reserved":              float64(24),
					"initial_retire_cache_size": float64(64),
					"count_strategy":            "release",
				},
			},
			expect: func(t *testing.T, cfg Config) {
				if cfg.ScanThreshold != 200 {
					t.Errorf("ScanThreshold: expected 200, got %d", cfg.ScanThreshold)
				}
				if cfg.MaxReserved != 24 {
					t.Errorf("MaxReserved: expected 24, got %d", cfg.MaxReserved)
				}
				if cfg.InitialRetireCacheSize != 64 {
					t.Errorf("InitialRetireCacheSize: expected 64, got %d", cfg.InitialRetireCacheSize)
				}
				if cfg.CountStrategy != CountRelease {
					t.Errorf("CountStrategy: expected CountRelease, got %v", cfg.CountStrategy)
				}
			},
		},
		{
			name: "missing hazptr section returns defaults",
			data: map[string]interface{}{
				"other": "value",
			},
			expect: func(t *testing.T, cfg Config) {
				if cfg.ScanThreshold != DefaultScanThreshold {
					t.Errorf("Expected default ScanThreshold=%d, got %d", DefaultScanThreshold, cfg.ScanThreshold)
				}
			},
		},
		{
			name: "invalid count_strategy ignored",
			data: map[string]interface{}{
				"hazptr": map[string]interface{}{
					"count_strategy": "bogus",
				},
			},
			expect: func(t *testing.T, cfg Config) {
				if cfg.CountStrategy != CountRetire {
					t.Errorf("Expected CountStrategy=CountRetire for invalid value, got %v", cfg.CountStrategy)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := hc.parseConfig(tt.data)
			tt.expect(t, cfg)
		})
	}
}

func TestHotConfigJSONFormat(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.json")

	jsonConfig := `{
  "hazptr": {
    "scan_threshold": 150,
    "max_reserved": 20
  }
}`
	if err := os.WriteFile(configPath, []byte(jsonConfig), 0644); err != nil {
		t.Fatalf("Failed to write JSON config: %v", err)
	}

	reloadCh := make(chan Config, 1)
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
		OnReload: func(oldConfig, newConfig Config) {
			select {
			case reloadCh <- newConfig:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case cfg := <-reloadCh:
		if cfg.ScanThreshold != 150 {
			t.Errorf("Expected ScanThreshold=150, got %d", cfg.ScanThreshold)
		}
		if cfg.MaxReserved != 20 {
			t.Errorf("Expected MaxReserved=20, got %d", cfg.MaxReserved)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timeout waiting for JSON config load")
	}
}

func BenchmarkHotConfigGetConfig(b *testing.B) {
	tempDir := b.TempDir()
	configPath := filepath.Join(tempDir, "bench-config.yaml")

	if err := os.WriteFile(configPath, []byte("hazptr: {scan_threshold: 100}"), 0644); err != nil {
		b.Fatalf("Failed to write config: %v", err)
	}

	hc, err := NewHotConfig(HotConfigOptions{ConfigPath: configPath})
	if err != nil {
		b.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hc.GetConfig()
	}
}
