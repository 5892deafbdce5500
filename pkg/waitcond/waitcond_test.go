package waitcond

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newConditions returns one instance of every Condition implementation
// sharing the same test predicate, so shared test bodies can run against
// both.
func newConditions(t *testing.T, test func() bool) []Condition {
	t.Helper()
	return []Condition{
		NewMutex(test),
		NewPark(test),
	}
}

func TestAwaitReturnsImmediatelyWhenPredicateFalse(t *testing.T) {
	for _, c := range newConditions(t, func() bool { return false }) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := c.Await(ctx); err != nil {
			t.Fatalf("Await returned %v, want nil", err)
		}
	}
}

func TestAwaitReturnsContextErrorOnTimeout(t *testing.T) {
	for _, c := range newConditions(t, func() bool { return true }) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := c.Await(ctx)
		if err != context.DeadlineExceeded {
			t.Fatalf("Await returned %v, want context.DeadlineExceeded", err)
		}
	}
}

func TestSignalWakesSingleWaiter(t *testing.T) {
	for _, c := range newConditions(t, nil) {
		var ready atomic.Bool
		c2 := c
		// rebind test so Signal observes ready flipping to false.
		switch v := c2.(type) {
		case *Mutex:
			v.test = func() bool { return !ready.Load() }
		case *Park:
			v.test = func() bool { return !ready.Load() }
		}

		done := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			done <- c.Await(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		ready.Store(true)
		c.Signal()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Await returned %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Await never woke after Signal")
		}
	}
}

func TestParkSignalWakesManyWaiters(t *testing.T) {
	var ready atomic.Bool
	p := NewPark(func() bool { return !ready.Load() })

	const waiters = 16 // exceeds maxWaiters, exercising slot collisions
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			errs[i] = p.Await(ctx)
		}(i)
	}

	time.Sleep(30 * time.Millisecond)
	ready.Store(true)
	// Signal repeatedly: a single sweep can race a late registration.
	for i := 0; i < 20; i++ {
		p.Signal()
		time.Sleep(5 * time.Millisecond)
	}

	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("waiter %d: Await returned %v, want nil", i, err)
		}
	}
}

func TestMutexSignalWakesManyWaiters(t *testing.T) {
	var ready atomic.Bool
	m := NewMutex(func() bool { return !ready.Load() })

	const waiters = 16
	var wg sync.WaitGroup
	errs := make([]error, waiters)
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			errs[i] = m.Await(ctx)
		}(i)
	}

	time.Sleep(30 * time.Millisecond)
	ready.Store(true)
	m.Signal()

	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("waiter %d: Await returned %v, want nil", i, err)
		}
	}
}
