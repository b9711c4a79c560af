// Package walker implements the parallel directory traversal that drives
// both find and search queries (spec §4.D): N worker goroutines, without
// recursion or per-worker stacks, draining one shared deque of pending
// subdirectories, filtering entries through internal/predicate and
// internal/ignore, and emitting accepted entries onto a stream.Channel.
package walker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	vferrors "github.com/standardbeagle/vfind/internal/errors"
	"github.com/standardbeagle/vfind/internal/ignore"
	"github.com/standardbeagle/vfind/internal/patterncache"
	"github.com/standardbeagle/vfind/internal/predicate"
	"github.com/standardbeagle/vfind/internal/query"
	"github.com/standardbeagle/vfind/internal/search"
	"github.com/standardbeagle/vfind/internal/stream"
)

// pollInterval is how long an idle worker backs off before re-checking the
// deque once it has found no work but other workers might still be busy
// (and about to push more). Short enough to stay responsive, long enough
// not to spin the CPU across GOMAXPROCS idle goroutines.
const pollInterval = 500 * time.Microsecond

// dirTask is one pending directory, paired with the ignore engine that
// already knows about every ancestor directory's ignore files along the
// path from its root.
type dirTask struct {
	path   string // absolute
	root   string // the query root this task descends from
	depth  int
	engine *ignore.Engine
}

// deque is the shared, mutex-protected work-stealing pool every worker both
// feeds (when it discovers a subdirectory) and drains (whenever it needs its
// next directory) — the Go rendition of the teacher's scanner/processor
// channel handoff in pipeline.go, generalised so every goroutine is both
// scanner and processor since there is no separate CPU-heavy parse stage to
// offload here.
//
// Termination needs more than "deque empty": a worker that pops the very
// last root still has to ReadDir it and push its subdirectories before any
// other worker has something to drain. busy counts workers currently holding
// a popped task (from pop() until markIdle()); the walk is only truly
// exhausted once the deque is empty AND no worker is busy — otherwise an
// idle worker backs off and polls again instead of exiting, per spec §4.D/§5.
type deque struct {
	mu    sync.Mutex
	items []dirTask
	busy  int32
}

func (d *deque) push(t dirTask) {
	d.mu.Lock()
	d.items = append(d.items, t)
	d.mu.Unlock()
}

func (d *deque) pop() (dirTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return dirTask{}, false
	}
	n := len(d.items) - 1
	t := d.items[n]
	d.items = d.items[:n]
	atomic.AddInt32(&d.busy, 1)
	return t, true
}

// markIdle releases the busy slot a successful pop() acquired, once the
// worker is done processing that task (including any subtasks it pushed).
func (d *deque) markIdle() {
	atomic.AddInt32(&d.busy, -1)
}

// exhausted reports whether the deque is empty and no worker currently holds
// a task — the only condition under which an idle worker may terminate.
func (d *deque) exhausted() bool {
	d.mu.Lock()
	empty := len(d.items) == 0
	d.mu.Unlock()
	return empty && atomic.LoadInt32(&d.busy) == 0
}

// Walk traverses q.Roots and sends one stream.Result per accepted entry (or
// per per-entry error) onto ch. It blocks until every worker goroutine has
// finished or ctx is cancelled.
func Walk(ctx context.Context, q *query.Query, ch *stream.Channel, cache *patterncache.Cache) error {
	ev, err := predicate.NewEvaluator(cache, q)
	if err != nil {
		return err
	}

	engines := make(map[string]*ignore.Engine, len(q.Roots))
	for _, root := range q.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			absRoot = root
		}
		engines[root] = ignore.New(absRoot, q.Traversal.RespectGlobalIgnores, q.Traversal.ExtraIgnoreFiles)
	}

	work := &deque{}
	for _, root := range q.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = root
		}
		work.push(dirTask{path: abs, root: abs, depth: 0, engine: engines[root]})
	}

	threads := q.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	visited := &visitedDirs{seen: make(map[string]bool)}
	searcher := search.New()

	for i := 0; i < threads; i++ {
		g.Go(func() error {
			return runWorker(gctx, q, ch, ev, work, visited, searcher)
		})
	}

	return g.Wait()
}

// visitedDirs guards against symlink cycles, grounded in the teacher's
// pipeline.go visitedDirs map (filepath.EvalSymlinks keyed).
type visitedDirs struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (v *visitedDirs) markIfNew(path string) bool {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = path
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[real] {
		return false
	}
	v.seen[real] = true
	return true
}

// runWorker is one goroutine's Idle->Visiting->Filtering->Emitting/reject
// loop (spec §4.D). Idle is simply "about to pop"; Terminating is simply
// "loop exits" — Go's goroutine return makes both states implicit rather
// than explicit, unlike the teacher's ReportingError label which the
// per-entry error path below models directly.
//
// A pop miss is not itself a termination signal: with only len(q.Roots)
// seed tasks, most of the N spawned workers would otherwise race to an
// empty deque and exit before the worker(s) that grabbed a root have had a
// chance to ReadDir it and push its children, collapsing what should be a
// parallel walk to a single effectively-serial worker. Instead an idle
// worker backs off and re-polls until work.exhausted() confirms the deque
// is empty AND no other worker is still busy discovering more of it.
func runWorker(ctx context.Context, q *query.Query, ch *stream.Channel, ev *predicate.Evaluator, work *deque, visited *visitedDirs, searcher *search.Searcher) error {
	for {
		task, ok := work.pop()
		if !ok {
			if work.exhausted() {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollInterval):
			}
			continue
		}

		cancelled := processTask(ctx, q, ch, ev, work, visited, searcher, task)
		work.markIdle()
		if cancelled {
			return nil
		}
	}
}

// processTask handles one popped directory: it is always responsible for
// calling work.markIdle() via its caller once it returns, regardless of
// which of its several early-return paths was taken. It reports whether the
// worker observed cancellation and should stop entirely.
func processTask(ctx context.Context, q *query.Query, ch *stream.Channel, ev *predicate.Evaluator, work *deque, visited *visitedDirs, searcher *search.Searcher, task dirTask) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}

	if !visited.markIfNew(task.path) {
		return false
	}

	entries, err := os.ReadDir(task.path)
	if err != nil {
		msg := vferrors.NewEntryError("ReadDir", task.path, err).Error()
		return ch.Send(ctx, stream.ErrorResult(msg)) != nil
	}

	task.engine.AddDirectory(task.path, q.Traversal.RespectVCSIgnores)

	// With StayOnOneFilesystem, a subdirectory on a different device than
	// this directory crosses a filesystem boundary and is pruned below.
	var parentDev uint64
	checkDev := false
	if q.Traversal.StayOnOneFilesystem {
		if pinfo, err := os.Stat(task.path); err == nil {
			parentDev, checkDev = deviceID(pinfo)
		}
	}

	for _, de := range entries {
		entryPath := filepath.Join(task.path, de.Name())

		if !q.Traversal.IncludeHidden && isHidden(de.Name()) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			msg := vferrors.NewEntryError("Lstat", entryPath, err).Error()
			if sendErr := ch.Send(ctx, stream.ErrorResult(msg)); sendErr != nil {
				return true
			}
			continue
		}

		rel, err := filepath.Rel(task.root, entryPath)
		if err != nil {
			rel = entryPath
		}
		rel = filepath.ToSlash(rel)

		isDir := de.IsDir()
		if !isDir && q.Traversal.FollowSymlinks && info.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(entryPath); err == nil && target.IsDir() {
				isDir = true
			}
		}

		if task.engine.Ignored(entryPath, isDir) {
			continue
		}

		if isDir {
			if checkDev {
				if dev, ok := deviceID(info); ok && dev != parentDev {
					continue
				}
			}
			descend := info.Mode()&os.ModeSymlink == 0 || q.Traversal.FollowSymlinks
			withinDepth := q.Traversal.MaxDepth <= 0 || task.depth+1 <= q.Traversal.MaxDepth
			if descend && withinDepth {
				work.push(dirTask{path: entryPath, root: task.root, depth: task.depth + 1, engine: task.engine})
			}
			if q.ContentRegex != nil || !acceptDirectoryItself(q, ev, rel, info) {
				continue
			}
			if sendErr := ch.Send(ctx, stream.PathResult(entryPath)); sendErr != nil {
				return true
			}
			continue
		}

		// An unfollowed symlink is still reported as its own entry, just
		// never descended into — only directory symlinks need the
		// FollowSymlinks gate above.
		entry := predicate.NewEntry(rel, info)
		if !ev.Accept(entry, q) {
			continue
		}

		if q.ContentRegex != nil {
			if _, sendErr := searcher.SearchFile(ctx, entryPath, q, ch); sendErr != nil {
				if sendErr == stream.ErrCancelled {
					return true
				}
				if perr := ch.Send(ctx, stream.ErrorResult(sendErr.Error())); perr != nil {
					return true
				}
			}
			continue
		}

		if sendErr := ch.Send(ctx, stream.PathResult(entryPath)); sendErr != nil {
			return true
		}
	}

	return false
}

// acceptDirectoryItself runs the full predicate.Evaluator.Accept on a
// directory entry. Accept skips the size check for anything that is not a
// regular file; the path, exclude, file-type, extension and time predicates
// all still apply to the directory.
func acceptDirectoryItself(q *query.Query, ev *predicate.Evaluator, rel string, info os.FileInfo) bool {
	entry := predicate.NewEntry(rel, info)
	return ev.Accept(entry, q)
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
