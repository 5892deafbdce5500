// Package blockingqueue lifts the non-blocking rings in
// github.com/arcentrix/concurrentqueue/pkg/ringbuffer into a blocking
// queue contract: put/take, timed offer/poll, drain_to, add/element, and
// remaining_capacity, coordinated by a pair of not-full/not-empty
// conditions from github.com/arcentrix/concurrentqueue/pkg/waitcond.
package blockingqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/arcentrix/concurrentqueue/pkg/ringbuffer"
	"github.com/arcentrix/concurrentqueue/pkg/waitcond"
)

// Algorithm selects which non-blocking ring backs a Queue.
type Algorithm int

const (
	// AlgorithmDisruptor selects the split-cursor ring (ringbuffer.Disruptor).
	AlgorithmDisruptor Algorithm = iota
	// AlgorithmVyukov selects the per-slot-sequence ring (ringbuffer.Vyukov).
	AlgorithmVyukov
)

// ring is the non-blocking contract both ringbuffer.Disruptor[E] and
// ringbuffer.Vyukov[E] satisfy.
type ring[E any] interface {
	Offer(E) bool
	Poll() (E, bool)
	Peek() (E, bool)
	Size() int
	Capacity() int
	IsEmpty() bool
	Clear()
	Remove([]E) int
	Contains(func(E) bool) bool
}

// Logger is the minimal structured-logging surface the adapter needs;
// pkg/qlog.Logger satisfies it.
type Logger interface {
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

// MetricsRecorder is the minimal metrics surface the adapter needs;
// pkg/qmetrics.QueueMetrics satisfies it.
type MetricsRecorder interface {
	RecordOffer(accepted bool)
	RecordPoll(hit bool)
	ObserveWait(d time.Duration)
	SetDepth(n int)
}

// Config carries a Queue's construction parameters.
type Config[E any] struct {
	// Capacity is rounded up to the next power of two, minimum 2.
	Capacity uint
	// Algorithm selects the backing ring. Zero value is AlgorithmDisruptor.
	Algorithm Algorithm
	// UseWaitingLocking selects the park-based condition (true, lower
	// latency, higher CPU) over the mutex-backed one (false).
	UseWaitingLocking bool
	// Seed is appended via a forced offer at construction; once the ring
	// is full, further seed elements evict the oldest by wraparound.
	Seed []E
	// Logger and Metrics are optional collaborators; nil disables them.
	Logger  Logger
	Metrics MetricsRecorder
}

// Queue is the blocking queue adapter (C7): a non-blocking ring plus two
// wait conditions, notFull and notEmpty.
type Queue[E any] struct {
	ring     ring[E]
	notFull  waitcond.Condition
	notEmpty waitcond.Condition
	logger   Logger
	metrics  MetricsRecorder
}

// New builds a Queue per cfg.
func New[E any](cfg Config[E]) *Queue[E] {
	capacity := int(cfg.Capacity)

	var r ring[E]
	switch cfg.Algorithm {
	case AlgorithmVyukov:
		r = ringbuffer.NewVyukov[E](capacity)
	default:
		r = ringbuffer.NewDisruptor[E](capacity)
	}

	q := &Queue[E]{ring: r, logger: cfg.Logger, metrics: cfg.Metrics}

	notFullTest := func() bool { return r.Size() >= r.Capacity() }
	notEmptyTest := func() bool { return r.Size() == 0 }
	if cfg.UseWaitingLocking {
		q.notFull = waitcond.NewPark(notFullTest)
		q.notEmpty = waitcond.NewPark(notEmptyTest)
	} else {
		q.notFull = waitcond.NewMutex(notFullTest)
		q.notEmpty = waitcond.NewMutex(notEmptyTest)
	}

	for _, e := range cfg.Seed {
		for r.Size() >= r.Capacity() {
			r.Poll()
		}
		r.Offer(e)
	}
	if q.metrics != nil {
		q.metrics.SetDepth(r.Size())
	}
	return q
}

// Offer is the non-blocking producer op. It always signals notEmpty, even
// on failure: the signal is idempotent, so signalling unconditionally is
// harmless and saves a branch on the hot path.
func (q *Queue[E]) Offer(e E) bool {
	ok := q.ring.Offer(e)
	q.notEmpty.Signal()
	q.recordOffer(ok)
	return ok
}

// Poll is the non-blocking consumer op. It always signals notFull.
func (q *Queue[E]) Poll() (E, bool) {
	v, ok := q.ring.Poll()
	q.notFull.Signal()
	q.recordPoll(ok)
	return v, ok
}

// Peek returns the oldest element without removing it.
func (q *Queue[E]) Peek() (E, bool) { return q.ring.Peek() }

// Size returns the current occupancy.
func (q *Queue[E]) Size() int { return q.ring.Size() }

// Capacity returns the fixed slot count (already rounded to a power of two).
func (q *Queue[E]) Capacity() int { return q.ring.Capacity() }

// IsEmpty reports whether Size is currently zero.
func (q *Queue[E]) IsEmpty() bool { return q.ring.IsEmpty() }

// RemainingCapacity returns how many more elements Offer could currently accept.
func (q *Queue[E]) RemainingCapacity() int { return q.ring.Capacity() - q.ring.Size() }

// Contains performs a weakly-consistent snapshot scan.
func (q *Queue[E]) Contains(match func(E) bool) bool { return q.ring.Contains(match) }

// Clear drains the queue and signals notFull once.
func (q *Queue[E]) Clear() {
	q.ring.Clear()
	q.notFull.Signal()
	if q.metrics != nil {
		q.metrics.SetDepth(q.ring.Size())
	}
}

// Remove moves up to len(dst) elements into dst via the ring's Remove (one
// batch claim on the Disruptor ring, one Poll per element on the Vyukov
// ring) and signals notFull.
func (q *Queue[E]) Remove(dst []E) int {
	n := q.ring.Remove(dst)
	q.notFull.Signal()
	if q.metrics != nil {
		q.metrics.SetDepth(q.ring.Size())
	}
	return n
}

// Add offers e, returning ErrCapacityExhausted instead of false on failure.
func (q *Queue[E]) Add(e E) error {
	if q.Offer(e) {
		return nil
	}
	return ErrCapacityExhausted
}

// Element peeks, returning ErrEmpty instead of ok=false when empty.
func (q *Queue[E]) Element() (E, error) {
	v, ok := q.Peek()
	if !ok {
		var zero E
		return zero, ErrEmpty
	}
	return v, nil
}

// Put blocks until Offer succeeds or ctx is done.
func (q *Queue[E]) Put(ctx context.Context, e E) error {
	start := time.Now()
	for {
		if q.ring.Offer(e) {
			q.notEmpty.Signal()
			q.recordOffer(true)
			q.observeWaitSince(start)
			return nil
		}
		q.recordOffer(false)
		if err := q.notFull.Await(ctx); err != nil {
			return q.interruptError(err)
		}
	}
}

// Take blocks until Poll succeeds or ctx is done.
func (q *Queue[E]) Take(ctx context.Context) (E, error) {
	start := time.Now()
	for {
		if v, ok := q.ring.Poll(); ok {
			q.notFull.Signal()
			q.recordPoll(true)
			q.observeWaitSince(start)
			return v, nil
		}
		q.recordPoll(false)
		if err := q.notEmpty.Await(ctx); err != nil {
			var zero E
			return zero, q.interruptError(err)
		}
	}
}

// OfferTimed tries Offer, waiting on notFull for up to timeout if the
// ring is currently full. It returns (false, nil) on timeout and
// (false, ErrInterrupted) if ctx itself is cancelled.
func (q *Queue[E]) OfferTimed(ctx context.Context, e E, timeout time.Duration) (bool, error) {
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if q.ring.Offer(e) {
			q.notEmpty.Signal()
			q.recordOffer(true)
			return true, nil
		}
		q.recordOffer(false)
		err := q.notFull.Await(deadline)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return false, q.interruptError(ctx.Err())
		}
		return false, nil
	}
}

// PollTimed tries Poll, waiting on notEmpty for up to timeout if the ring
// is currently empty. It returns (zero, false, nil) on timeout and
// (zero, false, ErrInterrupted) if ctx itself is cancelled.
func (q *Queue[E]) PollTimed(ctx context.Context, timeout time.Duration) (E, bool, error) {
	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if v, ok := q.ring.Poll(); ok {
			q.notFull.Signal()
			q.recordPoll(true)
			return v, true, nil
		}
		q.recordPoll(false)
		err := q.notEmpty.Await(deadline)
		if err == nil {
			continue
		}
		var zero E
		if ctx.Err() != nil {
			return zero, false, q.interruptError(ctx.Err())
		}
		return zero, false, nil
	}
}

// DrainTo moves every currently available element into dst, up to max
// (max <= 0 means unbounded), returning the count moved. Passing the
// queue itself as dst is a caller error.
func (q *Queue[E]) DrainTo(dst *Queue[E], max int) (int, error) {
	if dst == q {
		return 0, ErrIllegalArgument
	}
	moved := 0
	for max <= 0 || moved < max {
		v, ok := q.Poll()
		if !ok {
			break
		}
		dst.Offer(v)
		moved++
	}
	return moved, nil
}

func (q *Queue[E]) recordOffer(accepted bool) {
	if q.metrics != nil {
		q.metrics.RecordOffer(accepted)
		q.metrics.SetDepth(q.ring.Size())
	}
	if !accepted && q.logger != nil {
		q.logger.Warnw("queue offer rejected: capacity exhausted", "depth", q.ring.Size(), "capacity", q.ring.Capacity())
	}
}

func (q *Queue[E]) recordPoll(hit bool) {
	if q.metrics != nil {
		q.metrics.RecordPoll(hit)
		q.metrics.SetDepth(q.ring.Size())
	}
}

func (q *Queue[E]) observeWaitSince(start time.Time) {
	if q.metrics != nil {
		q.metrics.ObserveWait(time.Since(start))
	}
}

// interruptError wraps a Condition's ctx.Err() as ErrInterrupted.
func (q *Queue[E]) interruptError(err error) error {
	if q.logger != nil {
		q.logger.Errorw("blocking queue operation interrupted", "cause", err)
	}
	return fmt.Errorf("%w: %v", ErrInterrupted, err)
}
