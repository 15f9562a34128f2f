// Package config provides configuration loading and management for
// rfiflagger. It handles loading configuration from YAML files, provides
// default values and validates the flagging parameters at setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"rfiflagger/pkg/morphology"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Flagging parameters for the RFI post-processing stage
	Flagging struct {
		// StructSize is the structuring element extent [time, freq] for
		// binary dilation and closing. An empty list disables dilation;
		// closing then runs with its default element.
		StructSize []int `yaml:"structSize"`

		// ChannelFlagThreshold escalates a time dump to fully flagged when
		// its flagged-channel fraction strictly exceeds this value
		ChannelFlagThreshold float64 `yaml:"channelFlagThreshold"`

		// TimeDumpFlagThreshold escalates a channel to fully flagged when
		// its flagged-dump fraction strictly exceeds this value
		TimeDumpFlagThreshold float64 `yaml:"timeDumpFlagThreshold"`
	} `yaml:"flagging"`

	// Rawdata parameters for the built-in lower-threshold flagger
	Rawdata struct {
		// FlagLowerThreshold flags raw visibility samples below this value,
		// in raw correlator units without any normalisation
		FlagLowerThreshold float64 `yaml:"flagLowerThreshold"`
	} `yaml:"rawdata"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many receivers to post-process concurrently
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// ReportFile is the markdown flag report the summaries are appended to
		ReportFile string `yaml:"reportFile"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Receivers optionally names the receivers in axis order; generated
	// names are used when absent
	Receivers []string `yaml:"receivers"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default flagging parameters
	cfg.Flagging.StructSize = []int{2, 2}
	cfg.Flagging.ChannelFlagThreshold = 0.6
	cfg.Flagging.TimeDumpFlagThreshold = 0.6

	// Set default rawdata parameters
	cfg.Rawdata.FlagLowerThreshold = 0.0

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default output parameters
	cfg.Output.ReportFile = "flag_report.md"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate rejects configuration defects at setup rather than deep inside
// a computation. Thresholds outside [0, 1] are an error, never clamped; an
// absent structuring element is the valid "disable dilation" signal.
func (cfg *Config) Validate() error {
	if t := cfg.Flagging.ChannelFlagThreshold; t < 0 || t > 1 {
		return fmt.Errorf("channelFlagThreshold %v outside [0, 1]", t)
	}
	if t := cfg.Flagging.TimeDumpFlagThreshold; t < 0 || t > 1 {
		return fmt.Errorf("timeDumpFlagThreshold %v outside [0, 1]", t)
	}
	if ss := cfg.Flagging.StructSize; len(ss) != 0 {
		if len(ss) != 2 {
			return fmt.Errorf("structSize must have exactly two entries [time, freq], got %d", len(ss))
		}
		if ss[0] < 1 || ss[1] < 1 {
			return fmt.Errorf("structSize entries must be positive, got %v", ss)
		}
	}
	if cfg.Rawdata.FlagLowerThreshold < 0 {
		return fmt.Errorf("flagLowerThreshold must be non-negative, got %v", cfg.Rawdata.FlagLowerThreshold)
	}
	if cfg.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be positive, got %d", cfg.Processing.NumCores)
	}
	return nil
}

// StructElem returns the configured structuring element, or nil when
// dilation is disabled.
func (cfg *Config) StructElem() *morphology.StructElem {
	if len(cfg.Flagging.StructSize) != 2 {
		return nil
	}
	return &morphology.StructElem{
		Time: cfg.Flagging.StructSize[0],
		Freq: cfg.Flagging.StructSize[1],
	}
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
