package ringbuffer

import (
	"sync/atomic"

	"github.com/arcentrix/concurrentqueue/pkg/atomicx"
	"github.com/arcentrix/concurrentqueue/pkg/spin"
)

// vyukovSlot pairs a value with the per-slot sequence number that gates
// whether the slot is currently writable, readable, or stale. The
// sequence is not cache-line padded: false-sharing discipline here is
// limited to the shared head/tail counters, not per-slot state.
type vyukovSlot[E any] struct {
	seq   atomic.Int64
	value E
}

// Vyukov is a bounded MPMC ring buffer where each slot's own sequence
// number — rather than a second claim cursor — tells a producer or
// consumer whether it currently owns that slot.
type Vyukov[E any] struct {
	mask  int64
	n     int64
	slots []vyukovSlot[E]

	head atomicx.PaddedInt64
	tail atomicx.PaddedInt64
}

// NewVyukov allocates a ring whose capacity is the next power of two at
// or above requested, with a floor of 2. Slot i starts with sequence i.
func NewVyukov[E any](requested int) *Vyukov[E] {
	n := nextPow2(requested)
	v := &Vyukov[E]{
		mask:  int64(n - 1),
		n:     int64(n),
		slots: make([]vyukovSlot[E], n),
	}
	for i := range v.slots {
		v.slots[i].seq.Store(int64(i))
	}
	return v
}

// Capacity returns the ring's fixed slot count.
func (v *Vyukov[E]) Capacity() int { return int(v.n) }

// Size returns the current occupancy, saturating at zero.
func (v *Vyukov[E]) Size() int {
	n := v.tail.Load() - v.head.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}

// IsEmpty reports whether Size is currently zero.
func (v *Vyukov[E]) IsEmpty() bool { return v.Size() == 0 }

// Offer publishes e into the slot currently sequenced for tail, via a
// three-way sequence-diff dispatch.
func (v *Vyukov[E]) Offer(e E) bool {
	var sp spin.Policy
	for {
		tail := v.tail.Load()
		slot := &v.slots[tail&v.mask]
		diff := slot.seq.Load() - tail

		switch {
		case diff == 0:
			if v.tail.CompareAndSwap(tail, tail+1) {
				slot.value = e
				slot.seq.Store(tail + 1)
				return true
			}
			sp.Once()
		case diff < 0:
			return false
		default:
			sp.Once()
		}
	}
}

// Poll consumes the slot currently sequenced for head+1, returning the
// zero value and false if the ring was observed empty.
func (v *Vyukov[E]) Poll() (E, bool) {
	var sp spin.Policy
	for {
		head := v.head.Load()
		slot := &v.slots[head&v.mask]
		diff := slot.seq.Load() - (head + 1)

		switch {
		case diff == 0:
			if v.head.CompareAndSwap(head, head+1) {
				e := slot.value
				var zero E
				slot.value = zero
				slot.seq.Store(head + v.n)
				return e, true
			}
			sp.Once()
		case diff < 0:
			var zero E
			return zero, false
		default:
			sp.Once()
		}
	}
}

// Peek returns the value currently sequenced for head+1 without claiming
// it; it may observe a transient empty state during a concurrent poll.
func (v *Vyukov[E]) Peek() (E, bool) {
	head := v.head.Load()
	slot := &v.slots[head&v.mask]
	if slot.seq.Load()-(head+1) == 0 {
		return slot.value, true
	}
	var zero E
	return zero, false
}

// Clear drains the ring via repeated Poll.
func (v *Vyukov[E]) Clear() {
	for {
		if _, ok := v.Poll(); !ok {
			return
		}
	}
}

// Remove claims and copies up to len(dst) elements one at a time (the
// per-slot-sequence protocol has no single-CAS batch claim the way the
// Disruptor ring does), returning the count copied.
func (v *Vyukov[E]) Remove(dst []E) int {
	for i := range dst {
		e, ok := v.Poll()
		if !ok {
			return i
		}
		dst[i] = e
	}
	return len(dst)
}

// Contains performs a weakly-consistent snapshot scan for an element
// satisfying match.
func (v *Vyukov[E]) Contains(match func(E) bool) bool {
	head := v.head.Load()
	tail := v.tail.Load()
	for i := head; i < tail; i++ {
		slot := &v.slots[i&v.mask]
		if slot.seq.Load()-(i+1) == 0 && match(slot.value) {
			return true
		}
	}
	return false
}
