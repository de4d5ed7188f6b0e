// Package models defines data structures for configuration and scoring.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWorkers  = 4
	DefaultCSVPath  = "teds_scores.csv"
	DefaultWorst    = 10
	DefaultCacheTTL = 24 * time.Hour
)

// EvalConfig holds runtime configuration for an evaluation run.
// Values come from CLI flags, optionally seeded from a YAML file.
type EvalConfig struct {
	PredPath    string        `yaml:"pred_path"`
	GTPath      string        `yaml:"gt_path"`
	OutputCSV   string        `yaml:"output_csv"`
	ReportPath  string        `yaml:"report"`
	WorkerCount int           `yaml:"workers"`
	Clamp       bool          `yaml:"clamp"`
	Worst       int           `yaml:"worst"`
	DBPath      string        `yaml:"db"`
	NoDB        bool          `yaml:"no_db"`
	CacheDir    string        `yaml:"cache_dir"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// LoadConfig reads a YAML config file. A missing path is an error; callers
// only invoke it when --config was given.
func LoadConfig(path string) (*EvalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &EvalConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills zero values with built-in defaults.
func (c *EvalConfig) ApplyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkers
	}
	if c.Worst < 0 {
		c.Worst = 0
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
}

// Validate checks the fields every evaluation needs.
func (c *EvalConfig) Validate() error {
	if c.PredPath == "" {
		return fmt.Errorf("prediction path is required")
	}
	if c.GTPath == "" {
		return fmt.Errorf("ground truth path is required")
	}
	return nil
}
