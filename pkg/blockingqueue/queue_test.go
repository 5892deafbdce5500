package blockingqueue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestQueue(capacity uint, algo Algorithm, park bool) *Queue[int] {
	return New[int](Config[int]{
		Capacity:          capacity,
		Algorithm:         algo,
		UseWaitingLocking: park,
	})
}

func allQueues(capacity uint) map[string]*Queue[int] {
	return map[string]*Queue[int]{
		"disruptor/mutex": newTestQueue(capacity, AlgorithmDisruptor, false),
		"disruptor/park":  newTestQueue(capacity, AlgorithmDisruptor, true),
		"vyukov/mutex":    newTestQueue(capacity, AlgorithmVyukov, false),
		"vyukov/park":     newTestQueue(capacity, AlgorithmVyukov, true),
	}
}

func TestOfferPollRoundTrip(t *testing.T) {
	for name, q := range allQueues(4) {
		if !q.Offer(42) {
			t.Fatalf("%s: Offer(42) = false, want true", name)
		}
		v, ok := q.Poll()
		if !ok || v != 42 {
			t.Fatalf("%s: Poll() = (%d, %v), want (42, true)", name, v, ok)
		}
	}
}

func TestAddAndElementErrors(t *testing.T) {
	for name, q := range allQueues(2) {
		if err := q.Add(1); err != nil {
			t.Fatalf("%s: Add(1) = %v, want nil", name, err)
		}
		if err := q.Add(2); err != nil {
			t.Fatalf("%s: Add(2) = %v, want nil", name, err)
		}
		if err := q.Add(3); !errors.Is(err, ErrCapacityExhausted) {
			t.Fatalf("%s: Add(3) = %v, want ErrCapacityExhausted", name, err)
		}

		empty := newTestQueue(2, AlgorithmDisruptor, false)
		if _, err := empty.Element(); !errors.Is(err, ErrEmpty) {
			t.Fatalf("%s: Element() on empty queue = %v, want ErrEmpty", name, err)
		}
	}
}

func TestSeedOverwritesByWraparound(t *testing.T) {
	// Seeding {a,b,c,d,e} into a capacity-4 queue
	// leaves {b,c,d,e} in poll order.
	q := New[int](Config[int]{Capacity: 4, Seed: []int{1, 2, 3, 4, 5}})
	want := []int{2, 3, 4, 5}
	for _, w := range want {
		v, ok := q.Poll()
		if !ok || v != w {
			t.Fatalf("Poll() = (%d, %v), want (%d, true)", v, ok, w)
		}
	}
	if _, ok := q.Poll(); ok {
		t.Fatalf("Poll() after draining seed returned ok=true")
	}
}

func TestPutBlocksUntilSpaceThenTake(t *testing.T) {
	// cap=2: a third Put blocks until a Take frees a slot.
	for name, q := range allQueues(2) {
		ctx := context.Background()
		if err := q.Put(ctx, 1); err != nil {
			t.Fatalf("%s: Put(1) = %v", name, err)
		}
		if err := q.Put(ctx, 2); err != nil {
			t.Fatalf("%s: Put(2) = %v", name, err)
		}

		putThirdDone := make(chan error, 1)
		go func() {
			putThirdDone <- q.Put(ctx, 3)
		}()

		select {
		case err := <-putThirdDone:
			t.Fatalf("%s: Put(3) returned early (%v), want it to block on a full queue", name, err)
		case <-time.After(30 * time.Millisecond):
		}

		v, err := q.Take(ctx)
		if err != nil || v != 1 {
			t.Fatalf("%s: Take() = (%d, %v), want (1, nil)", name, v, err)
		}

		select {
		case err := <-putThirdDone:
			if err != nil {
				t.Fatalf("%s: Put(3) = %v after space freed", name, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: Put(3) never unblocked after Take freed space", name)
		}

		for _, want := range []int{2, 3} {
			v, err := q.Take(ctx)
			if err != nil || v != want {
				t.Fatalf("%s: Take() = (%d, %v), want (%d, nil)", name, v, err, want)
			}
		}
	}
}

func TestTakeWakesOnOfferFromAnotherGoroutine(t *testing.T) {
	for name, q := range allQueues(4) {
		ctx := context.Background()
		done := make(chan int, 1)
		go func() {
			v, err := q.Take(ctx)
			if err != nil {
				t.Errorf("%s: Take() = %v, want nil error", name, err)
				return
			}
			done <- v
		}()

		time.Sleep(20 * time.Millisecond)
		q.Offer(99)

		select {
		case v := <-done:
			if v != 99 {
				t.Fatalf("%s: Take() returned %d, want 99", name, v)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: Take() never woke after Offer", name)
		}
	}
}

func TestOfferTimedReturnsFalseOnTimeout(t *testing.T) {
	for name, q := range allQueues(1) {
		ctx := context.Background()
		// Requested capacity 1 rounds up to 2: fill every slot.
		for i := 1; i <= q.Capacity(); i++ {
			if !q.Offer(i) {
				t.Fatalf("%s: Offer(%d) = false", name, i)
			}
		}
		ok, err := q.OfferTimed(ctx, 99, 20*time.Millisecond)
		if err != nil {
			t.Fatalf("%s: OfferTimed returned err=%v, want nil", name, err)
		}
		if ok {
			t.Fatalf("%s: OfferTimed succeeded on a full queue, want false", name)
		}
	}
}

func TestPollTimedReturnsFalseOnTimeout(t *testing.T) {
	for name, q := range allQueues(4) {
		ctx := context.Background()
		_, ok, err := q.PollTimed(ctx, 20*time.Millisecond)
		if err != nil {
			t.Fatalf("%s: PollTimed returned err=%v, want nil", name, err)
		}
		if ok {
			t.Fatalf("%s: PollTimed succeeded on an empty queue, want false", name)
		}
	}
}

func TestTakeReturnsInterruptedOnContextCancel(t *testing.T) {
	for name, q := range allQueues(1) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := q.Take(ctx)
			done <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, ErrInterrupted) {
				t.Fatalf("%s: Take() returned %v, want ErrInterrupted", name, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: Take() never returned after ctx cancel", name)
		}
	}
}

func TestDrainToSelfIsIllegalArgument(t *testing.T) {
	q := newTestQueue(4, AlgorithmDisruptor, false)
	if _, err := q.DrainTo(q, 0); !errors.Is(err, ErrIllegalArgument) {
		t.Fatalf("DrainTo(self) = %v, want ErrIllegalArgument", err)
	}
}

func TestDrainToMovesElements(t *testing.T) {
	src := newTestQueue(8, AlgorithmDisruptor, false)
	dst := newTestQueue(8, AlgorithmDisruptor, false)
	for i := 1; i <= 5; i++ {
		src.Offer(i)
	}
	n, err := src.DrainTo(dst, 0)
	if err != nil {
		t.Fatalf("DrainTo() = %v, want nil", err)
	}
	if n != 5 {
		t.Fatalf("DrainTo() moved %d, want 5", n)
	}
	if got := src.Size(); got != 0 {
		t.Fatalf("src.Size() after DrainTo() = %d, want 0", got)
	}
	if got := dst.Size(); got != 5 {
		t.Fatalf("dst.Size() after DrainTo() = %d, want 5", got)
	}
}

func TestRemainingCapacity(t *testing.T) {
	q := newTestQueue(4, AlgorithmDisruptor, false)
	if got := q.RemainingCapacity(); got != 4 {
		t.Fatalf("RemainingCapacity() = %d, want 4", got)
	}
	q.Offer(1)
	if got := q.RemainingCapacity(); got != 3 {
		t.Fatalf("RemainingCapacity() = %d, want 3", got)
	}
}

func TestRepeatedSignalWithNoWaitersIsNoop(t *testing.T) {
	q := newTestQueue(4, AlgorithmDisruptor, true)
	for i := 0; i < 100; i++ {
		q.notFull.Signal()
		q.notEmpty.Signal()
	}
	if !q.Offer(1) {
		t.Fatalf("Offer(1) = false after repeated no-op Signal calls")
	}
}
