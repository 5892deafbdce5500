// Package waitcond implements the two wait/signal coordination primitives
// that let a lock-free ring buffer expose a blocking queue contract:
// Mutex (a correct, condition-variable-backed implementation) and Park (a
// low-latency waiter registry where the first waiter spins and the rest
// register in a bounded slot array, each parked on its own wake channel).
package waitcond

import "context"

// Predicate reports whether a waiter should keep waiting — true means
// "condition not yet satisfied, keep waiting" (e.g. "queue is empty").
// Implementations must tolerate being called concurrently and repeatedly;
// spurious re-evaluation is part of the contract.
type Predicate func() bool

// Condition is the common interface satisfied by Mutex and Park. Await
// blocks until Predicate returns false or ctx is done, returning ctx.Err()
// in the latter case. Signal wakes every current waiter; it is always
// safe to call with no waiters present.
type Condition interface {
	Await(ctx context.Context) error
	Signal()
}

// compile-time interface checks
var (
	_ Condition = (*Mutex)(nil)
	_ Condition = (*Park)(nil)
)
