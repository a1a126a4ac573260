// Package config centralizes the argument validation rules shared by
// the CLI and the optional YAML overlay, so both paths enforce the
// same invariants from spec.md §4.5/§6.
package config

import (
	"fmt"
	"os"

	"github.com/chalkan3-sloth/joinbench/internal/barrier"
	"gopkg.in/yaml.v3"
)

// Config is the fully-resolved, validated set of parameters a run is
// executed with.
type Config struct {
	InputCount   int          `yaml:"input_count"`
	Complexity   int          `yaml:"complexity"`
	ThreadCount  int          `yaml:"thread_count"`
	JoinType     barrier.JoinType `yaml:"join_type"`
	MwaitxCycles uint64       `yaml:"mwaitx_cycle_count"`
	MetricsAddr  string       `yaml:"metrics_addr"`
	HistoryDB    string       `yaml:"history_db"`

	// threadCountSet/mwaitxCyclesSet track whether the CLI explicitly
	// set these optional values, so a YAML overlay default doesn't get
	// silently clobbered by a flag's zero value.
	ThreadCountSet  bool
	MwaitxCyclesSet bool
}

// Overlay merges file-provided defaults into cfg for any field the
// caller did not explicitly set on the command line. Flags always win.
func Overlay(cfg Config, path string) (Config, error) {
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if !cfg.ThreadCountSet && fileCfg.ThreadCount > 0 {
		cfg.ThreadCount = fileCfg.ThreadCount
		cfg.ThreadCountSet = true
	}
	if cfg.JoinType == 0 && fileCfg.JoinType != 0 {
		cfg.JoinType = fileCfg.JoinType
	}
	if !cfg.MwaitxCyclesSet && fileCfg.MwaitxCycles > 0 {
		cfg.MwaitxCycles = fileCfg.MwaitxCycles
		cfg.MwaitxCyclesSet = true
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = fileCfg.MetricsAddr
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = fileCfg.HistoryDB
	}
	return cfg, nil
}

// Validate enforces spec.md §4.5/§6's argument rules: input_count and
// complexity are mandatory (checked by the caller having parsed them),
// join_type must be in [1,7], and mwaitx_cycle_count is required iff
// join_type needs it.
func (c Config) Validate() error {
	if c.InputCount <= 0 {
		return fmt.Errorf("--input_count is required and must be > 0")
	}
	if c.ThreadCount <= 0 {
		return fmt.Errorf("--thread_count must be > 0")
	}
	if c.JoinType < barrier.JoinDefault || c.JoinType > barrier.JoinHardOnly {
		return fmt.Errorf("--join_type must be between 1 and 7, got %d", int(c.JoinType))
	}
	if c.JoinType.RequiresMwaitxCycles() && c.MwaitxCycles == 0 {
		return fmt.Errorf("--mwaitx_cycle_count is required for join_type %d", int(c.JoinType))
	}
	return nil
}

// NormalizeComplexity folds complexity modulo 32, per spec.md §6.
func NormalizeComplexity(complexity int) int {
	m := complexity % 32
	if m < 0 {
		m += 32
	}
	return m
}
