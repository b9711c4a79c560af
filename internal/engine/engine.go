// Package engine exposes the two public entry points, Find and Search, and
// the process-wide lifecycle they share (spec §4.H): a pre-warmed pattern
// cache and a one-time goroutine-pool warm-up, both paid for once regardless
// of how many queries run afterward.
package engine

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/vfind/internal/patterncache"
	"github.com/standardbeagle/vfind/internal/predicate"
	"github.com/standardbeagle/vfind/internal/query"
	"github.com/standardbeagle/vfind/internal/stream"
	"github.com/standardbeagle/vfind/internal/walker"
)

var (
	initOnce   sync.Once
	cache      *patterncache.Cache
	poolReady  bool
	capacities sync.Map // capacityKey -> int, memoised per spec §4.H(3)
)

// Metrics reports the state of the process-wide lifecycle, the Go rendition
// of the original implementation's get_init_metrics.
type Metrics struct {
	PoolReady       bool
	CacheSize       int
	ChannelPoolSize int
}

// ensureInitialised runs the one-time warm-up described in spec §4.H. It is
// idempotent and safe to call from every Find/Search invocation.
func ensureInitialised() {
	initOnce.Do(func() {
		cache = patterncache.New(patterncache.DefaultCapacity)
		patterncache.Prewarm(cache)

		g := new(errgroup.Group)
		for i := 0; i < runtime.GOMAXPROCS(0); i++ {
			g.Go(func() error { return nil })
		}
		_ = g.Wait()
		poolReady = true
	})
}

// InitMetrics reports the lifecycle's current state; safe to call before any
// query has run (triggers ensureInitialised itself).
func InitMetrics() Metrics {
	ensureInitialised()
	size := 0
	if cache != nil {
		size = cache.Stats().Size
	}
	n := 0
	capacities.Range(func(_, _ any) bool { n++; return true })
	return Metrics{PoolReady: poolReady, CacheSize: size, ChannelPoolSize: n}
}

type capacityKey struct {
	workload stream.Workload
	threads  int
}

func channelFor(q *query.Query, workload stream.Workload) *stream.Channel {
	threads := q.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	key := capacityKey{workload: workload, threads: threads}
	capacities.LoadOrStore(key, stream.Capacity(workload, threads))
	return stream.NewChannel(workload, threads)
}

// Find runs a path-discovery query and returns a pull iterator over its
// results. ctx governs cancellation; the returned Iterator.Close() also
// cancels the underlying walk.
func Find(ctx context.Context, q *query.Query) (*stream.Iterator, error) {
	ensureInitialised()

	workload := stream.WorkloadFindStreaming
	if q.Output.SortKey != query.SortNone {
		workload = stream.WorkloadFindSorted
	}
	return run(ctx, q, workload)
}

// Search runs a content-search query and returns a pull iterator over its
// SearchMatch results.
func Search(ctx context.Context, q *query.Query) (*stream.Iterator, error) {
	ensureInitialised()
	return run(ctx, q, stream.WorkloadContentSearch)
}

func run(ctx context.Context, q *query.Query, workload stream.Workload) (*stream.Iterator, error) {
	// §7: pattern compile errors are InvalidPattern failures raised
	// synchronously at query construction, "no traversal performed" — so the
	// evaluator (and the glob/regex compilation it drives) is built here,
	// before the iterator is ever handed back, rather than left to surface
	// only once walker.Walk's background goroutine gets around to it.
	if _, err := predicate.NewEvaluator(cache, q); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	ch := channelFor(q, workload)

	go func() {
		defer ch.Close()
		if err := walker.Walk(runCtx, q, ch, cache); err != nil {
			_ = ch.Send(runCtx, stream.ErrorResult(err.Error()))
		}
	}()

	return stream.NewIterator(ch, cancel), nil
}

// FindAll runs Find to completion and returns every result sorted per
// q.Output.SortKey, for callers that want a collected slice instead of a
// pull iterator.
func FindAll(ctx context.Context, q *query.Query) ([]stream.Result, error) {
	it, err := Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return stream.Collect(it, q.Output.SortKey), nil
}

// SearchAll runs Search to completion and returns every matched line.
func SearchAll(ctx context.Context, q *query.Query) ([]stream.Result, error) {
	it, err := Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return stream.Collect(it, q.Output.SortKey), nil
}
