package ringbuffer

import (
	"github.com/arcentrix/concurrentqueue/pkg/atomicx"
	"github.com/arcentrix/concurrentqueue/pkg/spin"
)

// Disruptor is a split-cursor MPMC ring buffer: producers and consumers
// each run a claim-then-commit CAS protocol over their own pair of
// cursors (tailCursor claims ahead of tail, headCursor claims ahead of
// head), with a producer-side headCache short-circuiting the full check
// without touching the consumer's cursor on every offer.
type Disruptor[E any] struct {
	mask  int64
	slots []E

	tail       atomicx.PaddedInt64
	tailCursor atomicx.PaddedInt64
	head       atomicx.PaddedInt64
	headCursor atomicx.PaddedInt64
	headCache  atomicx.PaddedInt64
}

// NewDisruptor allocates a ring whose capacity is the next power of two
// at or above requested, with a floor of 2.
func NewDisruptor[E any](requested int) *Disruptor[E] {
	n := nextPow2(requested)
	return &Disruptor[E]{
		mask:  int64(n - 1),
		slots: make([]E, n),
	}
}

// Capacity returns the ring's fixed slot count.
func (d *Disruptor[E]) Capacity() int { return int(d.mask + 1) }

// Size returns the current occupancy, saturating at zero for any
// transient negative reading caused by reading tail/head mid-claim.
func (d *Disruptor[E]) Size() int {
	n := d.tail.Load() - d.head.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// IsEmpty reports whether Size is currently zero.
func (d *Disruptor[E]) IsEmpty() bool { return d.Size() == 0 }

// Offer publishes e if the ring is not full, via a six-step claim-then-
// commit protocol. It returns false iff the ring was observed full.
func (d *Disruptor[E]) Offer(e E) bool {
	n := d.mask + 1
	var sp spin.Policy
	for {
		tail := d.tail.Load()
		queueStart := tail - n

		hc := d.headCache.Load()
		if hc == queueStart {
			hc = d.head.Load()
			d.headCache.Store(hc)
			if hc == queueStart {
				return false
			}
		}

		if d.tailCursor.CompareAndSwap(tail, tail+1) {
			d.slots[tail&d.mask] = e
			d.tail.LazyStore(tail + 1)
			return true
		}
		sp.Once()
	}
}

// Poll removes and returns the oldest element, or the zero value and
// false if the ring was observed empty.
func (d *Disruptor[E]) Poll() (E, bool) {
	var sp spin.Policy
	for {
		head := d.head.Load()
		tail := d.tail.Load()
		if tail == head {
			var zero E
			return zero, false
		}

		if !d.headCursor.CompareAndSwap(head, head+1) {
			sp.Once()
			continue
		}

		var waitSp spin.Policy
		for d.tail.Load() < head+1 {
			waitSp.Once()
		}

		idx := head & d.mask
		e := d.slots[idx]
		var zero E
		d.slots[idx] = zero
		d.head.LazyStore(head + 1)
		return e, true
	}
}

// Peek returns the oldest element without claiming it. It may transiently
// return false while an offer is mid-claim even though a commit is about
// to land, and while a poll is mid-claim it may return the zero value with
// true once that poll has cleared the slot.
func (d *Disruptor[E]) Peek() (E, bool) {
	head := d.head.Load()
	tail := d.tail.Load()
	if tail == head {
		var zero E
		return zero, false
	}
	return d.slots[head&d.mask], true
}

// Clear drains the ring via repeated Poll.
func (d *Disruptor[E]) Clear() {
	for {
		if _, ok := d.Poll(); !ok {
			return
		}
	}
}

// Remove claims and copies up to len(dst) elements in one batch, returning
// the count copied.
func (d *Disruptor[E]) Remove(dst []E) int {
	if len(dst) == 0 {
		return 0
	}
	var sp spin.Policy
	for {
		head := d.head.Load()
		size := d.Size()
		k := int64(len(dst))
		if int64(size) < k {
			k = int64(size)
		}
		if k == 0 {
			return 0
		}

		if !d.headCursor.CompareAndSwap(head, head+k) {
			sp.Once()
			continue
		}

		var waitSp spin.Policy
		for d.tail.Load() < head+k {
			waitSp.Once()
		}

		var zero E
		for i := int64(0); i < k; i++ {
			idx := (head + i) & d.mask
			dst[i] = d.slots[idx]
			d.slots[idx] = zero
		}
		d.head.LazyStore(head + k)
		return int(k)
	}
}

// Contains performs a weakly-consistent snapshot scan for an element
// satisfying match.
func (d *Disruptor[E]) Contains(match func(E) bool) bool {
	head := d.head.Load()
	tail := d.tail.Load()
	for i := head; i < tail; i++ {
		if match(d.slots[i&d.mask]) {
			return true
		}
	}
	return false
}
