package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the defaults are valid and carry the
// expected flagging parameters
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
	if got := cfg.Flagging.ChannelFlagThreshold; got != 0.6 {
		t.Errorf("Expected channelFlagThreshold=0.6, got %v", got)
	}
	if got := cfg.Flagging.TimeDumpFlagThreshold; got != 0.6 {
		t.Errorf("Expected timeDumpFlagThreshold=0.6, got %v", got)
	}
	se := cfg.StructElem()
	if se == nil || se.Time != 2 || se.Freq != 2 {
		t.Errorf("Expected default structuring element (2, 2), got %v", se)
	}
	if cfg.Processing.NumCores < 1 {
		t.Errorf("Expected at least one core, got %d", cfg.Processing.NumCores)
	}
}

// TestLoadConfigMissingFile verifies that a missing config file falls
// back to defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/rfiflagger.yaml")
	if err != nil {
		t.Fatalf("Expected defaults for a missing file, got %v", err)
	}
	if cfg.Output.ReportFile != "flag_report.md" {
		t.Errorf("Expected default report file, got %s", cfg.Output.ReportFile)
	}
}

// TestLoadConfigFromFile verifies YAML parsing and the disable-dilation
// signal
func TestLoadConfigFromFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "rfiflagger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
flagging:
  structSize: []
  channelFlagThreshold: 0.25
  timeDumpFlagThreshold: 0.75
processing:
  numCores: 3
receivers: [m012h, m012v]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.StructElem() != nil {
		t.Errorf("Expected dilation disabled, got %v", cfg.StructElem())
	}
	if cfg.Flagging.ChannelFlagThreshold != 0.25 || cfg.Flagging.TimeDumpFlagThreshold != 0.75 {
		t.Errorf("Thresholds not loaded: %+v", cfg.Flagging)
	}
	if cfg.Processing.NumCores != 3 {
		t.Errorf("Expected numCores=3, got %d", cfg.Processing.NumCores)
	}
	if len(cfg.Receivers) != 2 || cfg.Receivers[0] != "m012h" {
		t.Errorf("Receivers not loaded: %v", cfg.Receivers)
	}
	// Unset fields keep their defaults
	if cfg.Output.ReportFile != "flag_report.md" {
		t.Errorf("Expected default report file, got %s", cfg.Output.ReportFile)
	}
}

// TestValidate verifies that configuration defects are rejected rather
// than clamped
func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ChannelThresholdAboveOne", func(c *Config) { c.Flagging.ChannelFlagThreshold = 1.2 }},
		{"ChannelThresholdNegative", func(c *Config) { c.Flagging.ChannelFlagThreshold = -0.1 }},
		{"TimeDumpThresholdAboveOne", func(c *Config) { c.Flagging.TimeDumpFlagThreshold = 2 }},
		{"StructSizeOneEntry", func(c *Config) { c.Flagging.StructSize = []int{3} }},
		{"StructSizeZeroEntry", func(c *Config) { c.Flagging.StructSize = []int{0, 2} }},
		{"NegativeLowerThreshold", func(c *Config) { c.Rawdata.FlagLowerThreshold = -1 }},
		{"ZeroCores", func(c *Config) { c.Processing.NumCores = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected a validation error")
			}
		})
	}
}

// TestLoadConfigRejectsInvalid verifies that an invalid file fails to
// load instead of being silently corrected
func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir, err := os.MkdirTemp("", "rfiflagger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
flagging:
  channelFlagThreshold: 7.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected an error for an out-of-range threshold")
	}
}

// TestSaveAndReloadConfig verifies the round trip through SaveConfig
func TestSaveAndReloadConfig(t *testing.T) {
	dir, err := os.MkdirTemp("", "rfiflagger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := DefaultConfig()
	cfg.Flagging.StructSize = []int{4, 1}
	cfg.Output.Verbose = false

	path := filepath.Join(dir, "saved", "config.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	se := loaded.StructElem()
	if se == nil || se.Time != 4 || se.Freq != 1 {
		t.Errorf("Expected structuring element (4, 1), got %v", se)
	}
	if loaded.Output.Verbose {
		t.Errorf("Expected verbose=false after reload")
	}
}
