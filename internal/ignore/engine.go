package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// sourceKind orders the five ignore sources from lowest to highest
// precedence per spec §4.C: a later source overrides an earlier one for the
// same path, including via negation.
type sourceKind int

const (
	sourceGlobal sourceKind = iota
	sourceVCS
	sourceDotIgnore
	sourceFdIgnore
	sourceExtra
)

type compiledSource struct {
	kind     sourceKind
	baseDir  string
	patterns []Pattern
}

// Engine evaluates the full precedence stack against discovered paths.
// One Engine instance is built per walk root and reused across the walk;
// directory-level sources (VCS ignores, .ignore files) accumulate as the
// walker descends, mirroring how git itself layers .gitignore files.
type Engine struct {
	root       string
	regexCache *sync.Map

	mu      sync.RWMutex
	sources []compiledSource
}

// New builds an Engine for a walk rooted at root. It loads the global ignore
// file and any explicit extra ignore files up front; VCS and .ignore/.fdignore
// sources are added incrementally via AddDirectory as the walker visits each
// directory, since they are only discovered by being walked into.
func New(root string, respectGlobal bool, extraFiles []string) *Engine {
	e := &Engine{
		root:       root,
		regexCache: &sync.Map{},
	}

	if respectGlobal {
		if home, err := os.UserHomeDir(); err == nil {
			e.loadFile(filepath.Join(home, ".vfindignore"), sourceGlobal, home)
			e.loadFile(filepath.Join(home, ".config", "vfind", "ignore"), sourceGlobal, home)
		}
	}

	for _, f := range extraFiles {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		e.loadFile(f, sourceExtra, filepath.Dir(f))
	}

	return e
}

// AddDirectory registers the VCS ignore, .ignore, and .fdignore sources
// found directly inside dir. The walker calls this once per directory before
// evaluating entries within it. .fdignore is only read at the root and only
// when respectVCS is set.
func (e *Engine) AddDirectory(dir string, respectVCS bool) {
	if respectVCS {
		e.loadFile(filepath.Join(dir, ".gitignore"), sourceVCS, dir)
		e.loadFile(filepath.Join(dir, ".git", "info", "exclude"), sourceVCS, dir)
	}
	e.loadFile(filepath.Join(dir, ".ignore"), sourceDotIgnore, dir)
	if respectVCS && dir == e.root {
		e.loadFile(filepath.Join(dir, ".fdignore"), sourceFdIgnore, dir)
	}
}

func (e *Engine) loadFile(path string, kind sourceKind, baseDir string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	var patterns []Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParsePattern(line, e.regexCache))
	}
	if len(patterns) == 0 {
		return
	}

	e.mu.Lock()
	e.sources = append(e.sources, compiledSource{kind: kind, baseDir: baseDir, patterns: patterns})
	// Re-sort by kind (stable, so within a kind the discovery order — e.g.
	// a parent directory's .gitignore before a child's — is preserved) so
	// Ignored's last-match-wins scan always evaluates higher-precedence
	// kinds last, regardless of when each source happened to load. Without
	// this, sourceExtra (loaded eagerly in New, before the walk visits any
	// directory) would be evaluated first and get silently overridden by a
	// sourceVCS/.ignore rule discovered later for the same path — the
	// inverse of spec §4.C's documented precedence.
	sort.SliceStable(e.sources, func(i, j int) bool {
		return e.sources[i].kind < e.sources[j].kind
	})
	e.mu.Unlock()
}

// Ignored evaluates path (absolute) against every loaded source in
// precedence order, returning the verdict of the last matching pattern
// across all sources — a later source's match, including a negation,
// overrides an earlier one for the same path.
func (e *Engine) Ignored(path string, isDir bool) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ignored := false
	for _, src := range e.sources {
		rel, err := filepath.Rel(src.baseDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)

		for _, p := range src.patterns {
			if p.Matches(rel, isDir) {
				ignored = !p.Negate
			}
		}
	}
	return ignored
}
