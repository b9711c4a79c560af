// Package query defines the Query data model: the immutable configuration
// record that describes a single find or search call (spec §3).
package query

import (
	"context"
	"regexp"
	"strings"

	vferrors "github.com/standardbeagle/vfind/internal/errors"
	"github.com/standardbeagle/vfind/internal/patterncache"
)

// FileType restricts which kinds of entries a query accepts.
type FileType int

const (
	FileTypeAny FileType = iota
	FileTypeFile
	FileTypeDirectory
	FileTypeSymlink
)

// ParseFileType maps the single-letter codes used by the CLI ("f", "d", "l")
// onto a FileType, the same convention vexy-glob's file_type_filter used.
func ParseFileType(code string) (FileType, error) {
	switch code {
	case "", "a":
		return FileTypeAny, nil
	case "f":
		return FileTypeFile, nil
	case "d":
		return FileTypeDirectory, nil
	case "l":
		return FileTypeSymlink, nil
	default:
		return FileTypeAny, vferrors.NewInvalidArgumentError("type", code, nil)
	}
}

// SortKey selects the ordering applied by collected-mode results.
type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortPath
	SortSize
	SortMTime
)

func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "", "none":
		return SortNone, nil
	case "name":
		return SortName, nil
	case "path":
		return SortPath, nil
	case "size":
		return SortSize, nil
	case "mtime":
		return SortMTime, nil
	default:
		return SortNone, vferrors.NewInvalidArgumentError("sort", s, nil)
	}
}

// SizeRange bounds a regular file's byte size. Either endpoint may be nil.
type SizeRange struct {
	Min *int64
	Max *int64
}

// TimeRange bounds a timestamp as seconds since the Unix epoch. Either
// endpoint may be nil. The interval is half-open: [After, Before).
type TimeRange struct {
	After  *float64
	Before *float64
}

// IsZero reports whether neither endpoint of the range is set.
func (r TimeRange) IsZero() bool { return r.After == nil && r.Before == nil }

// TraversalFlags controls how the walker descends the tree.
type TraversalFlags struct {
	IncludeHidden        bool
	FollowSymlinks       bool
	RespectVCSIgnores    bool
	RespectGlobalIgnores bool
	StayOnOneFilesystem  bool
	MaxDepth             int // 0 = unlimited
	ExtraIgnoreFiles     []string
}

// MatchingFlags controls case sensitivity of path and content matching.
type MatchingFlags struct {
	CaseSensitivePath    bool
	CaseSensitiveContent bool
	Multiline            bool // reserved, unused
}

// Output controls how results are delivered to the consumer.
type Output struct {
	Streaming     bool
	SortKey       SortKey
	AsPathObjects bool
}

// PathValue is the Go rendition of a boxed path object: a string with
// lazily-computed accessors. Go has no pathlib.Path equivalent, so this is a
// formatting helper, not a type swap every consumer is forced to unwrap.
// Output.AsPathObjects is not read by any package in this module; results
// are always delivered as plain strings.
type PathValue string

func (p PathValue) String() string { return string(p) }
func (p PathValue) Base() string   { return baseName(string(p)) }
func (p PathValue) Ext() string    { return extName(string(p)) }

// Query is the immutable configuration for a single Find or Search call.
type Query struct {
	Roots           []string
	PathPattern     *string
	PathRegex       *regexp.Regexp
	ExcludePatterns []string
	FileType        FileType
	Extensions      map[string]struct{}
	SizeRange       SizeRange
	MTime           TimeRange
	ATime           TimeRange
	CTime           TimeRange

	Traversal TraversalFlags
	Matching  MatchingFlags

	ContentRegex *regexp.Regexp

	Output  Output
	Threads int

	// ctx is an optional context attached via WithContext and returned by
	// Context(); engine.Find/Search do not read it and take their own ctx.
	ctx context.Context
}

// Context returns the query's bound context, or context.Background if none
// was attached via WithContext.
func (q *Query) Context() context.Context {
	if q.ctx == nil {
		return context.Background()
	}
	return q.ctx
}

// WithContext returns a shallow copy of q bound to ctx.
func (q *Query) WithContext(ctx context.Context) *Query {
	cp := *q
	cp.ctx = ctx
	return &cp
}

// New validates its arguments and returns a ready-to-use Query, or an
// InvalidPatternError / InvalidArgumentError if construction-time validation
// fails (spec §7).
func New(roots []string, opts ...Option) (*Query, error) {
	if len(roots) == 0 {
		return nil, vferrors.NewInvalidArgumentError("roots", "", errEmptyRoots)
	}

	q := &Query{
		Roots:    roots,
		FileType: FileTypeAny,
		Traversal: TraversalFlags{
			RespectVCSIgnores:    true,
			RespectGlobalIgnores: true,
		},
		Matching: MatchingFlags{CaseSensitivePath: true, CaseSensitiveContent: true},
		Output:   Output{Streaming: true, SortKey: SortNone},
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	return q, nil
}

var errEmptyRoots = errEmptyRootsErr{}

type errEmptyRootsErr struct{}

func (errEmptyRootsErr) Error() string { return "at least one root is required" }

// Option mutates a Query during construction; each Option validates its own
// input and returns an error instead of panicking on bad input.
type Option func(*Query) error

func WithPathGlob(pattern string) Option {
	return func(q *Query) error {
		if err := patterncache.ValidatePattern(pattern); err != nil {
			return err
		}
		q.PathPattern = &pattern
		return nil
	}
}

func WithPathRegex(re *regexp.Regexp) Option {
	return func(q *Query) error {
		q.PathRegex = re
		return nil
	}
}

func WithExcludePatterns(patterns ...string) Option {
	return func(q *Query) error {
		for _, p := range patterns {
			if err := patterncache.ValidatePattern(p); err != nil {
				return err
			}
		}
		q.ExcludePatterns = append(q.ExcludePatterns, patterns...)
		return nil
	}
}

func WithFileType(t FileType) Option {
	return func(q *Query) error {
		q.FileType = t
		return nil
	}
}

func WithExtensions(exts ...string) Option {
	return func(q *Query) error {
		if q.Extensions == nil {
			q.Extensions = make(map[string]struct{}, len(exts))
		}
		for _, e := range exts {
			q.Extensions[strings.TrimPrefix(e, ".")] = struct{}{}
		}
		return nil
	}
}

func WithSizeRange(min, max *int64) Option {
	return func(q *Query) error {
		q.SizeRange = SizeRange{Min: min, Max: max}
		return nil
	}
}

func WithMTime(r TimeRange) Option {
	return func(q *Query) error { q.MTime = r; return nil }
}

func WithATime(r TimeRange) Option {
	return func(q *Query) error { q.ATime = r; return nil }
}

func WithCTime(r TimeRange) Option {
	return func(q *Query) error { q.CTime = r; return nil }
}

func WithTraversal(f TraversalFlags) Option {
	return func(q *Query) error { q.Traversal = f; return nil }
}

func WithMatching(f MatchingFlags) Option {
	return func(q *Query) error { q.Matching = f; return nil }
}

func WithContentPattern(pattern string, caseSensitive bool) Option {
	return func(q *Query) error {
		expr := pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return vferrors.NewInvalidPatternError(pattern, err)
		}
		q.ContentRegex = re
		q.Matching.CaseSensitiveContent = caseSensitive
		return nil
	}
}

func WithOutput(o Output) Option {
	return func(q *Query) error {
		q.Output = o
		return nil
	}
}

func WithSortKeyName(name string) Option {
	return func(q *Query) error {
		k, err := ParseSortKey(name)
		if err != nil {
			return err
		}
		q.Output.SortKey = k
		return nil
	}
}

func WithThreads(n int) Option {
	return func(q *Query) error {
		if n < 0 {
			return vferrors.NewInvalidArgumentError("threads", "negative", nil)
		}
		q.Threads = n
		return nil
	}
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func extName(p string) string {
	b := baseName(p)
	if i := strings.LastIndex(b, "."); i > 0 {
		return b[i:]
	}
	return ""
}
