package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndSetDefaultsFillsThreads(t *testing.T) {
	cfg := &Config{Project: Project{Root: "/test/root"}}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Greater(t, cfg.Defaults.Threads, 0)
	assert.Equal(t, "none", cfg.Defaults.SortKey)
	assert.Equal(t, ".", cfg.Project.Name)
}

func TestValidateAndSetDefaultsRejectsEmptyRoot(t *testing.T) {
	cfg := &Config{}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsNegativeThreads(t *testing.T) {
	cfg := &Config{Project: Project{Root: "/test/root"}, Defaults: Defaults{Threads: -1}}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestValidateAndSetDefaultsRejectsBadSortKey(t *testing.T) {
	cfg := &Config{Project: Project{Root: "/test/root"}, Defaults: Defaults{SortKey: "bogus"}}
	err := NewValidator().ValidateAndSetDefaults(cfg)
	require.Error(t, err)
}

func TestValidateConfigPreservesExplicitThreads(t *testing.T) {
	cfg := &Config{Project: Project{Root: "/test/root"}, Defaults: Defaults{Threads: 4}}
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, 4, cfg.Defaults.Threads)
}
