// Package ignore implements gitignore-style pattern parsing and matching,
// adapted from the teacher's config.GitignoreParser, and a multi-source
// precedence stack (spec §4.C) generalising "one .gitignore at the project
// root" into the documented source order: global ignore file, VCS-discovered
// .gitignore/.git/info/exclude, per-directory .ignore, per-root .fdignore,
// and explicit extra files.
package ignore

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// PatternType classifies a pattern for fast matching, exactly as the
// teacher's PatternType optimizes gitignore pattern matching.
type PatternType int

const (
	PatternExact PatternType = iota
	PatternPrefix
	PatternSuffix
	PatternWildcard
	PatternComplex
)

// Pattern is one parsed line of an ignore file.
type Pattern struct {
	Text      string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType PatternType
	compiled    *regexp.Regexp
	prefix      string
	suffix      string
}

// ParsePattern parses a single ignore-file line (already trimmed, non-empty,
// non-comment) into a Pattern.
func ParsePattern(line string, regexCache *sync.Map) Pattern {
	p := Pattern{}

	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}

	p.Text = line
	p.patternType, p.prefix, p.suffix, p.compiled = analyzePattern(line, regexCache)
	return p
}

func analyzePattern(pattern string, regexCache *sync.Map) (PatternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return PatternExact, pattern, pattern, nil
	}

	if isSimpleAsteriskPattern(pattern) {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return PatternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return PatternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}

	return compileComplex(pattern, regexCache)
}

func isSimpleAsteriskPattern(pattern string) bool {
	return strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[")
}

func compileComplex(pattern string, regexCache *sync.Map) (PatternType, string, string, *regexp.Regexp) {
	regexPattern := globToRegex(pattern)

	if regexCache != nil {
		if cached, ok := regexCache.Load(regexPattern); ok {
			return PatternComplex, "", "", cached.(*regexp.Regexp)
		}
	}

	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return PatternWildcard, "", "", nil
	}
	if regexCache != nil {
		regexCache.Store(regexPattern, compiled)
	}
	return PatternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// Matches reports whether p matches path (forward-slash, relative to the
// source's base directory).
func (p Pattern) Matches(path string, isDir bool) bool {
	if p.Directory {
		if isDir {
			return p.matchDirectory(path)
		}
		return p.matchInsideDirectory(path)
	}

	if p.Absolute {
		return p.fastMatch(path)
	}

	if p.fastMatch(path) {
		return true
	}

	parts := strings.Split(path, "/")
	for i := 0; i < len(parts); i++ {
		if p.fastMatch(strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (p Pattern) fastMatch(path string) bool {
	switch p.patternType {
	case PatternExact:
		return p.Text == path
	case PatternPrefix:
		return strings.HasPrefix(path, p.prefix)
	case PatternSuffix:
		return strings.HasSuffix(path, p.suffix)
	case PatternComplex:
		return p.compiled != nil && p.compiled.MatchString(path)
	case PatternWildcard:
		matched, _ := filepath.Match(p.Text, path)
		return matched
	default:
		return p.Text == path
	}
}

func (p Pattern) matchDirectory(path string) bool {
	if p.fastMatch(path) {
		return true
	}
	if strings.HasSuffix(p.Text, "/**") {
		base := strings.TrimSuffix(p.Text, "/**")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

// matchInsideDirectory reports whether path names something nested inside
// the directory this pattern targets. A directory-only pattern never
// matches a file whose own name happens to equal the pattern text.
func (p Pattern) matchInsideDirectory(path string) bool {
	for _, prefix := range []string{p.prefix, p.Text} {
		if prefix != "" && strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return false
	}
	return p.fastMatch(path[:idx])
}
