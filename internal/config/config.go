// Package config loads the ambient, project-scoped settings that seed a
// query.Query's defaults: project root, traversal/matching defaults, and the
// include/exclude pattern lists (spec §4.C/§9, AMBIENT STACK).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config is the on-disk settings record loaded from a project's .vfind.kdl
// plus an optional global ~/.vfind.kdl, merged project-over-global.
type Config struct {
	Project  Project
	Defaults Defaults
	Include  []string
	Exclude  []string
}

// Project identifies the root directory a Config applies to.
type Project struct {
	Root string
	Name string
}

// Defaults seeds query.TraversalFlags / query.MatchingFlags / Threads /
// Output.SortKey when a CLI invocation does not override them explicitly.
type Defaults struct {
	Threads              int
	IncludeHidden        bool
	FollowSymlinks       bool
	RespectVCSIgnores    bool
	RespectGlobalIgnores bool
	StayOnOneFilesystem  bool
	MaxDepth             int
	CaseSensitivePath    bool
	SortKey              string // "none", "name", "path", "size", "mtime"
}

// DefaultConfig returns the built-in defaults applied when no config file is
// found, mirroring fd/ripgrep's own built-in ignore conventions.
func DefaultConfig(projectRoot string) *Config {
	cfg := &Config{
		Project: Project{Root: projectRoot, Name: filepath.Base(projectRoot)},
		Defaults: Defaults{
			Threads:              0, // 0 = auto-detect via runtime.NumCPU()
			IncludeHidden:        false,
			FollowSymlinks:       false,
			RespectVCSIgnores:    true,
			RespectGlobalIgnores: true,
			StayOnOneFilesystem:  false,
			MaxDepth:             0,
			CaseSensitivePath:    true,
			SortKey:              "none",
		},
		Include: []string{},
		Exclude: defaultExclusions(),
	}
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg
}

// Load reads the global config (~/.vfind.kdl), the project config
// (<root>/.vfind.kdl), and merges them, project settings taking precedence
// but exclusions from both being combined. Either file may be absent.
func Load(projectRoot string) (*Config, error) {
	return LoadWithRoot(projectRoot, projectRoot)
}

// LoadWithRoot loads a project config from root and merges it against the
// global config, but stamps the result's Project.Root with projectRoot
// (useful when the config file itself lives above the directory being
// searched).
func LoadWithRoot(root, projectRoot string) (*Config, error) {
	project := DefaultConfig(projectRoot)

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".vfind.kdl")
		if _, statErr := os.Stat(globalPath); statErr == nil {
			globalCfg, loadErr := LoadKDL(globalPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading global config %s: %w", globalPath, loadErr)
			}
			globalCfg.Project = project.Project
			project = mergeConfigs(project, globalCfg)
		}
	}

	projectPath := filepath.Join(root, ".vfind.kdl")
	if _, statErr := os.Stat(projectPath); statErr == nil {
		fileCfg, loadErr := LoadKDL(projectPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading project config %s: %w", projectPath, loadErr)
		}
		fileCfg.Project.Root = projectRoot
		if fileCfg.Project.Name == "" {
			fileCfg.Project.Name = filepath.Base(projectRoot)
		}
		project = mergeConfigs(project, fileCfg)
	}

	project.EnrichExclusionsWithBuildArtifacts()
	return project, nil
}

// mergeConfigs merges base under project: project's settings win, but the
// two Exclude lists are unioned (deduplicated) rather than one replacing the
// other, and Include falls back to base only when project left it empty.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool, len(base.Exclude)+len(project.Exclude))
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts detects build output directories from
// language-specific project manifests (package.json, Cargo.toml, ...) and
// folds them into Exclude.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}
	detector := NewBuildArtifactDetector(c.Project.Root)
	detected := detector.DetectOutputDirectories()
	if len(detected) == 0 {
		return
	}
	c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
}

// ResolvedThreads returns Defaults.Threads, auto-detecting from available
// CPUs when it is left at its zero value.
func (d Defaults) ResolvedThreads() int {
	if d.Threads > 0 {
		return d.Threads
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.hg/**",
		"**/.svn/**",

		"**/node_modules/**",
		"**/vendor/**",
		"**/bower_components/**",
		"**/jspm_packages/**",

		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
		"**/bin/**",
		"**/obj/**",
		"**/*.min.js",
		"**/*.min.css",
		"**/*.bundle.js",
		"**/*.chunk.js",
		"**/*.min.map",

		"**/__pycache__/**",
		"**/*.pyc",

		"**/*.avif",
		"**/*.webp",
		"**/*.wasm",
		"**/*.woff",
		"**/*.woff2",
		"**/*.ttf",
		"**/*.eot",
		"**/*.otf",

		"**/*.mp4", "**/*.avi", "**/*.mov", "**/*.wmv", "**/*.flv",
		"**/*.mkv", "**/*.webm", "**/*.m4v", "**/*.mpg", "**/*.mpeg",
		"**/*.3gp", "**/*.ogv", "**/*.mp3", "**/*.wav", "**/*.flac",
		"**/*.aac", "**/*.ogg", "**/*.wma", "**/*.m4a", "**/*.aiff", "**/*.ape",

		"**/*.doc", "**/*.docx", "**/*.docm",
		"**/*.xls", "**/*.xlsx", "**/*.xlsm", "**/*.xlsb",
		"**/*.ppt", "**/*.pptx", "**/*.pptm",
		"**/*.odt", "**/*.ods", "**/*.odp",
		"**/*.rtf", "**/*.pages", "**/*.numbers", "**/*.key",

		"**/*.swp", "**/*.swo", "**/*~",

		"**/Thumbs.db",
		"**/desktop.ini",

		"**/logs/**",
		"**/*.log",
	}
}
