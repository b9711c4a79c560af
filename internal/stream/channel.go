package stream

import (
	"context"
)

// Workload selects which capacity rule from SPEC_FULL.md §4.F applies.
type Workload int

const (
	WorkloadContentSearch Workload = iota
	WorkloadFindSorted
	WorkloadFindStreaming
)

// Capacity computes the buffered-channel capacity for a workload, grounded
// in the teacher's calculateOptimalChannelBuffers and in vexy-glob's
// ChannelPool (small=500/medium=5000/large=10000), adjusted to the exact
// numbers this specification calls for.
func Capacity(workload Workload, threads int) int {
	switch workload {
	case WorkloadContentSearch:
		return 500
	case WorkloadFindSorted:
		return 10000
	case WorkloadFindStreaming:
		n := threads
		if n < 1 {
			n = 1
		}
		if n > 8 {
			n = 8
		}
		return 1000 * n
	default:
		return 1000
	}
}

// Channel wraps a buffered Go channel of Result with a Send that respects
// context cancellation instead of an artificial per-send timeout: spec §5
// states that blocking on a full channel IS the intended backpressure
// mechanism, not a failure mode to retry around (contrast with the
// teacher's pipeline.go, which treats a full channel as a retry-with-backoff
// condition because its channel also serves as an overload signal for a much
// heavier per-task payload).
type Channel struct {
	c chan Result
}

func NewChannel(workload Workload, threads int) *Channel {
	return &Channel{c: make(chan Result, Capacity(workload, threads))}
}

// Send blocks until the value is buffered or ctx is done. Returns
// ErrCancelled when ctx ends first. Sending after Close panics, as with any
// Go channel.
func (ch *Channel) Send(ctx context.Context, r Result) error {
	select {
	case ch.c <- r:
		return nil
	case <-ctx.Done():
		return ErrCancelled
	}
}

// Close closes the underlying channel. Callers must ensure no further Send
// calls are in flight (the walker's errgroup join guarantees this).
func (ch *Channel) Close() { close(ch.c) }

// Recv exposes the receive-only view for the iterator.
func (ch *Channel) Recv() <-chan Result { return ch.c }

// ErrCancelled is returned by Send when ctx ends before the value is queued.
var ErrCancelled = cancelledSentinel{}

type cancelledSentinel struct{}

func (cancelledSentinel) Error() string { return "stream: send cancelled" }
