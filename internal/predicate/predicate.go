// Package predicate implements the composite entry-acceptance test (spec
// §4.B): cheapest checks first, short-circuiting, metadata stat'd at most
// once per entry. Grounded in the teacher's FileScanner.shouldExcludeFast /
// shouldIncludeFast (cheap glob checks before any stat) and in vexy-glob's
// should_include_entry (the same ordering, minus the metadata caching Go's
// os.FileInfo already gives us for free from ReadDir).
package predicate

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/vfind/internal/patterncache"
	"github.com/standardbeagle/vfind/internal/query"
)

// Entry bundles the information the evaluator needs about one directory
// entry: its path relative to the query root, its DirEntry/FileInfo, and a
// lazily-fetched extended stat for atime/ctime.
type Entry struct {
	RelPath string // forward-slash, relative to the query root
	Name    string
	Info    os.FileInfo

	once  sync.Once
	atime time.Time
	ctime time.Time
}

func NewEntry(relPath string, info os.FileInfo) *Entry {
	return &Entry{RelPath: filepath.ToSlash(relPath), Name: info.Name(), Info: info}
}

func (e *Entry) statOnce() {
	e.once.Do(func() {
		e.atime, e.ctime = extraTimes(e.Info)
	})
}

func (e *Entry) fileType() query.FileType {
	switch {
	case e.Info.Mode()&os.ModeSymlink != 0:
		return query.FileTypeSymlink
	case e.Info.IsDir():
		return query.FileTypeDirectory
	default:
		return query.FileTypeFile
	}
}

// Evaluator holds the compiled state shared read-only by every walker
// worker: the pattern cache and pre-resolved glob entries for the query's
// path pattern and exclude list.
type Evaluator struct {
	cache           *patterncache.Cache
	pathEntry       *patterncache.Entry
	excludeEntries  []patterncache.Entry
	caseSensitive   bool
}

// NewEvaluator compiles q's path pattern and exclude patterns against cache,
// returning an Evaluator ready to share across walker goroutines.
func NewEvaluator(cache *patterncache.Cache, q *query.Query) (*Evaluator, error) {
	ev := &Evaluator{cache: cache, caseSensitive: q.Matching.CaseSensitivePath}

	if q.PathPattern != nil {
		e, err := cache.GetOrCompile(*q.PathPattern, q.Matching.CaseSensitivePath)
		if err != nil {
			return nil, err
		}
		ev.pathEntry = &e
	}

	for _, p := range q.ExcludePatterns {
		e, err := cache.GetOrCompile(p, q.Matching.CaseSensitivePath)
		if err != nil {
			return nil, err
		}
		ev.excludeEntries = append(ev.excludeEntries, e)
	}

	return ev, nil
}

// Accept applies every predicate in q against entry, cheapest first,
// short-circuiting on the first rejection.
func (ev *Evaluator) Accept(entry *Entry, q *query.Query) bool {
	if ev.pathEntry != nil && !ev.pathEntry.Match(entry.RelPath) {
		return false
	}

	for _, ex := range ev.excludeEntries {
		if ex.Match(entry.RelPath) {
			return false
		}
	}

	if q.PathRegex != nil && !q.PathRegex.MatchString(entry.RelPath) {
		return false
	}

	if q.FileType != query.FileTypeAny && entry.fileType() != q.FileType {
		return false
	}

	if len(q.Extensions) > 0 {
		ext := strings.TrimPrefix(filepath.Ext(entry.Name), ".")
		if _, ok := q.Extensions[ext]; !ok {
			return false
		}
	}

	if entry.fileType() == query.FileTypeFile {
		if !sizeInRange(entry.Info.Size(), q.SizeRange) {
			return false
		}
	}

	if !q.MTime.IsZero() {
		if !timeInRange(float64(entry.Info.ModTime().Unix()), q.MTime) {
			return false
		}
	}

	needsExtraStat := !q.ATime.IsZero() || !q.CTime.IsZero()
	if needsExtraStat {
		entry.statOnce()
		if !q.ATime.IsZero() && !timeInRange(float64(entry.atime.Unix()), q.ATime) {
			return false
		}
		if !q.CTime.IsZero() && !timeInRange(float64(entry.ctime.Unix()), q.CTime) {
			return false
		}
	}

	return true
}

func sizeInRange(size int64, r query.SizeRange) bool {
	if r.Min != nil && size < *r.Min {
		return false
	}
	if r.Max != nil && size > *r.Max {
		return false
	}
	return true
}

func timeInRange(t float64, r query.TimeRange) bool {
	if r.After != nil && t < *r.After {
		return false
	}
	if r.Before != nil && t >= *r.Before {
		return false
	}
	return true
}
