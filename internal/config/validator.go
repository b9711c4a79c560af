package config

import (
	"fmt"
	"runtime"

	"github.com/standardbeagle/vfind/internal/query"
)

// Validator validates a loaded Config and applies smart defaults for any
// field the user left at its zero value.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// ValidateAndSetDefaults validates cfg and fills in auto-detected defaults
// (thread count, sort key). Returns an error naming the offending field.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProject(&cfg.Project); err != nil {
		return fmt.Errorf("project: %w", err)
	}
	if err := v.validateDefaults(&cfg.Defaults); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(p *Project) error {
	if p.Root == "" {
		return fmt.Errorf("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateDefaults(d *Defaults) error {
	if d.Threads < 0 {
		return fmt.Errorf("threads cannot be negative, got %d", d.Threads)
	}
	if d.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative, got %d", d.MaxDepth)
	}
	if _, err := query.ParseSortKey(d.SortKey); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	return nil
}

// setSmartDefaults fills in auto-detected values for fields left at zero.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Defaults.Threads == 0 {
		cfg.Defaults.Threads = max(1, runtime.NumCPU()-1)
	}
	if cfg.Defaults.SortKey == "" {
		cfg.Defaults.SortKey = "none"
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = "."
	}
}

// ValidateConfig is a convenience wrapper around Validator for callers that
// don't need to reuse a Validator instance.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
