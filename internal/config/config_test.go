package config

import (
	"strings"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.EdgeLower != 50 || cfg.EdgeUpper != 150 {
		t.Errorf("default thresholds: got %d/%d, want 50/150", cfg.EdgeLower, cfg.EdgeUpper)
	}
	if cfg.ChainEdits {
		t.Error("chaining should be off by default")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"level", func(c *Config) { c.LogLevel = "chatty" }, "log level"},
		{"format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"color", func(c *Config) { c.EdgeColor = "#XYZ" }, "highlight color"},
		{"lower", func(c *Config) { c.EdgeLower = -1 }, "lower threshold"},
		{"upper", func(c *Config) { c.EdgeUpper = 256 }, "upper threshold"},
		{"quality", func(c *Config) { c.JPEGQuality = 0 }, "jpeg quality"},
		{"preview", func(c *Config) { c.PreviewHeight = 0 }, "preview size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.EdgeLower = 999
	cfg.JPEGQuality = 500

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	if !strings.Contains(err.Error(), "lower threshold") || !strings.Contains(err.Error(), "jpeg quality") {
		t.Errorf("all problems should be reported: %v", err)
	}
}

func TestValidate_ReversedThresholdsAllowed(t *testing.T) {
	// Reversed thresholds are a defined edge-detection mode, not a config error.
	cfg := Default()
	cfg.EdgeLower, cfg.EdgeUpper = 200, 100
	if err := cfg.Validate(); err != nil {
		t.Errorf("reversed thresholds should validate: %v", err)
	}
}
