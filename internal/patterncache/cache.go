// Package patterncache is a process-wide, thread-safe LRU of compiled glob
// matchers (spec §4.A), generalised from the teacher's semantic.LRUCache
// (container/list + map + sync.RWMutex) and pre-warmed the way vexy-glob's
// PatternCache pre-warms its COMMON_PATTERNS list.
package patterncache

import (
	"container/list"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	vferrors "github.com/standardbeagle/vfind/internal/errors"
)

// DefaultCapacity is the maximum number of distinct (pattern, case) entries
// the cache retains before evicting the least-recently-used one.
const DefaultCapacity = 1000

// Entry is a compiled pattern ready for repeated matching.
type Entry struct {
	Pattern       string
	CaseSensitive bool
	IsLiteral     bool
	literalIsPath bool // pattern contains a separator: compare full path, not basename
}

// Match reports whether candidate (a forward-slash relative path) matches
// this entry.
func (e Entry) Match(candidate string) bool {
	cand := candidate
	pat := e.Pattern
	if !e.CaseSensitive {
		cand = strings.ToLower(cand)
		pat = strings.ToLower(pat)
	}
	if e.IsLiteral {
		if e.literalIsPath {
			return strings.HasSuffix(cand, pat)
		}
		return baseName(cand) == pat
	}
	ok, _ := doublestar.Match(pat, cand)
	return ok
}

type cacheKey struct {
	hash uint64
	cs   bool
}

type node struct {
	key     cacheKey
	pattern string
	entry   Entry
}

// Cache is a bounded, thread-safe store of compiled patterns.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	items    map[cacheKey]*list.Element
	order    *list.List
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity: capacity,
		items:    make(map[cacheKey]*list.Element, capacity),
		order:    list.New(),
	}
	return c
}

// Stats reports the cache's current occupancy.
type Stats struct {
	Size        int
	Capacity    int
	Precompiled int
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Size: len(c.items), Capacity: c.capacity, Precompiled: len(commonPatterns) * 2}
}

func normalisePattern(pattern string) string {
	if !strings.ContainsAny(pattern, "/\\") {
		return "**/" + pattern
	}
	return pattern
}

func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[]{}")
}

// GetOrCompile returns the compiled Entry for (pattern, caseSensitive),
// promoting it to most-recently-used on hit and inserting (evicting the LRU
// entry if at capacity) on miss.
func (c *Cache) GetOrCompile(pattern string, caseSensitive bool) (Entry, error) {
	key := cacheKey{hash: xxhash.Sum64String(pattern), cs: caseSensitive}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		n := el.Value.(*node)
		if n.pattern == pattern {
			c.order.MoveToFront(el)
			return n.entry, nil
		}
		// hash collision: compile without caching, so the unrelated entry
		// that owns this key is neither evicted nor overwritten.
		return compile(pattern, caseSensitive)
	}

	entry, err := compile(pattern, caseSensitive)
	if err != nil {
		return Entry{}, err
	}

	if el, ok := c.items[key]; ok && el.Value.(*node).pattern == pattern {
		el.Value.(*node).entry = entry
		c.order.MoveToFront(el)
		return entry, nil
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	n := &node{key: key, pattern: pattern, entry: entry}
	el := c.order.PushFront(n)
	c.items[key] = el

	return entry, nil
}

func (c *Cache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*node).key)
}

func compile(pattern string, caseSensitive bool) (Entry, error) {
	if isLiteral(pattern) {
		p := pattern
		if !caseSensitive {
			p = strings.ToLower(p)
		}
		return Entry{
			Pattern:       p,
			CaseSensitive: caseSensitive,
			IsLiteral:     true,
			literalIsPath: strings.ContainsAny(p, "/\\"),
		}, nil
	}

	normalised := normalisePattern(pattern)
	// Validate compilability eagerly so a bad pattern fails at construction
	// time rather than silently matching nothing on every call.
	if _, err := doublestar.Match(normalised, ""); err != nil {
		return Entry{}, vferrors.NewInvalidPatternError(pattern, err)
	}

	p := normalised
	if !caseSensitive {
		p = strings.ToLower(p)
	}
	return Entry{Pattern: p, CaseSensitive: caseSensitive}, nil
}

// ValidatePattern reports whether pattern compiles as a glob, without
// inserting it into any cache. Compilability doesn't depend on case
// sensitivity (only the later match comparison lowercases), so callers that
// only need a construction-time syntax check can call this once regardless
// of which case mode the query ultimately uses.
func ValidatePattern(pattern string) error {
	_, err := compile(pattern, true)
	return err
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// commonPatterns mirrors vexy-glob's COMMON_PATTERNS pre-warm list, extended
// with a handful of Go-specific entries.
var commonPatterns = []string{
	"*.go", "*.py", "*.js", "*.ts", "*.jsx", "*.tsx", "*.rs", "*.java", "*.c", "*.cpp",
	"*.h", "*.hpp", "*.cs", "*.rb", "*.php", "*.swift", "*.kt", "*.scala", "*.sh",
	"*.json", "*.yaml", "*.yml", "*.toml", "*.xml", "*.html", "*.css", "*.scss",
	"*.md", "*.txt", "*.sql", "*.proto", "*.graphql",
	"**/*.go", "**/*.py", "**/*.js", "**/*.ts",
	"**/node_modules/**", "**/.git/**", "**/target/**", "**/dist/**", "**/build/**",
	"**/vendor/**", "**/__pycache__/**", "**/*.test.*", "**/*_test.go", "**/testdata/**",
	"*.lock", "go.mod", "go.sum", "package.json", "Cargo.toml", "Makefile",
	"*.log", "*.tmp", "*.bak", "*.swp", "*.min.js", "*.min.css",
	"README*", "LICENSE*", "Dockerfile*",
}

// Prewarm compiles every commonPatterns entry in both case modes into c,
// the Go rendition of vexy-glob's pattern_cache.rs pre-warming the cache at
// process init.
func Prewarm(c *Cache) {
	for _, p := range commonPatterns {
		_, _ = c.GetOrCompile(p, true)
		_, _ = c.GetOrCompile(p, false)
	}
}
