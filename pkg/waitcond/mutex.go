package waitcond

import (
	"context"
	"sync"
)

// Mutex is the straightforward Condition: a sync.Mutex/sync.Cond pair
// guarding test, woken by Broadcast on Signal. It trades the Park
// implementation's wake latency for simplicity and correctness under any
// number of concurrent waiters — the fallback Condition for callers that
// don't need the bounded-waiter fast path.
type Mutex struct {
	mu   sync.Mutex
	cond *sync.Cond
	test Predicate
}

// NewMutex builds a Mutex condition guarded by test.
func NewMutex(test Predicate) *Mutex {
	m := &Mutex{test: test}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Await blocks while test returns true, waking on every Signal call and
// re-checking test, until test returns false or ctx is done.
func (m *Mutex) Await(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			m.mu.Lock()
			m.cond.Broadcast()
			m.mu.Unlock()
		})
		defer stop()
	}

	for m.test() {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		m.cond.Wait()
	}
	return nil
}

// Signal wakes every waiter currently blocked in Await so each can
// re-evaluate test.
func (m *Mutex) Signal() {
	m.mu.Lock()
	m.cond.Broadcast()
	m.mu.Unlock()
}
