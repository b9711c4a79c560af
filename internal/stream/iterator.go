package stream

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/standardbeagle/vfind/internal/query"
)

// Iterator is the lazy pull interface handed back by engine.Find/Search
// (spec §4.G). Next() filters out Error-kind results after surfacing them
// to an error sink (stderr by default); NextRaw() exposes every kind.
type Iterator struct {
	ch        *Channel
	cancel    context.CancelFunc
	errSink   io.Writer
	closeOnce sync.Once
}

func NewIterator(ch *Channel, cancel context.CancelFunc) *Iterator {
	return &Iterator{ch: ch, cancel: cancel, errSink: os.Stderr}
}

// SetErrorSink redirects non-fatal Error-kind results observed by Next();
// pass nil to silence them entirely.
func (it *Iterator) SetErrorSink(w io.Writer) { it.errSink = w }

// NextRaw returns the next Result of any kind, or false at end of stream.
func (it *Iterator) NextRaw() (Result, bool) {
	r, ok := <-it.ch.Recv()
	return r, ok
}

// Next returns the next Path or SearchMatch result, transparently advancing
// past and reporting Error-kind results.
func (it *Iterator) Next() (Result, bool) {
	for {
		r, ok := it.NextRaw()
		if !ok {
			return Result{}, false
		}
		if r.Kind == KindError {
			if it.errSink != nil {
				fmt.Fprintln(it.errSink, r.ErrText)
			}
			continue
		}
		return r, true
	}
}

// Close cancels the context shared with the producing walker, which
// unblocks any producer currently blocked in Channel.Send (spec §4.G: no
// separate cancel token is required).
func (it *Iterator) Close() {
	it.closeOnce.Do(func() {
		if it.cancel != nil {
			it.cancel()
		}
	})
}

// Collect drains an Iterator to completion and returns every Path/SearchMatch
// result (Error-kind results are reported via the error sink and dropped),
// sorted per sortKey. It returns once the channel is closed, which the engine
// does after the walk has finished; engine.FindAll/SearchAll build the
// iterator and call Collect.
func Collect(it *Iterator, sortKey query.SortKey) []Result {
	var out []Result
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	sortResults(out, sortKey)
	return out
}

func sortResults(results []Result, key query.SortKey) {
	switch key {
	case query.SortNone:
		return
	case query.SortName:
		sort.SliceStable(results, func(i, j int) bool {
			return filepath.Base(results[i].Path) < filepath.Base(results[j].Path)
		})
	case query.SortPath:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Path < results[j].Path
		})
	case query.SortSize:
		sort.SliceStable(results, func(i, j int) bool {
			return statSize(results[i].Path) < statSize(results[j].Path)
		})
	case query.SortMTime:
		sort.SliceStable(results, func(i, j int) bool {
			return statMTime(results[i].Path).Before(statMTime(results[j].Path))
		})
	}
}

func statSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func statMTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
