package waitcond

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arcentrix/concurrentqueue/pkg/atomicx"
	"github.com/arcentrix/concurrentqueue/pkg/spin"
)

// maxWaiters bounds the slot ring a Park condition uses to register
// waiters past the first. It must be a power of two so slot selection can
// use a mask instead of a modulo.
const maxWaiters = 8
const waiterMask = maxWaiters - 1

// parkInterval is how long a registered (non-leader) waiter blocks on its
// wake channel between re-checks of test, bounding how stale a missed
// Signal can leave it.
const parkInterval = maxWaiters * 200 * time.Microsecond

// slot holds the wake channel of whichever waiter currently occupies it,
// or nil when free. Signal claims a slot with a CAS to nil so exactly one
// signaller closes any given channel.
type slot struct {
	ch atomic.Pointer[chan struct{}]
}

// Park is the low-latency Condition: the first concurrent waiter busy
// spins directly on test using an escalating spin.Policy and never
// touches the slot ring; every subsequent waiter registers its wake
// channel into a bounded ring and parks on it between short timed
// re-checks. Signal sweeps the ring, closing each occupied slot's channel
// to release its waiter.
type Park struct {
	waitCount atomicx.PaddedInt64
	waitCache atomicx.PaddedInt64
	slots     [maxWaiters]slot
	test      Predicate
}

// NewPark builds a Park condition guarded by test.
func NewPark(test Predicate) *Park {
	return &Park{test: test}
}

// Await registers as a waiter, blocks while test returns true, and
// deregisters on the way out whether it exits by observing test false or
// by ctx being done.
func (p *Park) Await(ctx context.Context) error {
	seq := p.waitCount.Add(1) - 1
	defer func() {
		p.waitCount.Add(-1)
		p.waitCache.Store(p.waitCount.Load())
	}()

	if seq == 0 {
		return p.spinLeader(ctx)
	}
	return p.parkFollower(ctx, seq)
}

// spinLeader is the designated first waiter: it busy spins on test and
// never parks on a slot, giving the common single-waiter case the lowest
// possible wake latency.
func (p *Park) spinLeader(ctx context.Context) error {
	var sp spin.Policy
	for p.test() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sp.Once()
	}
	return nil
}

// parkFollower registers in the slot ring starting at seq, then blocks on
// its wake channel in short intervals until test returns false or ctx is
// done, deregistering in all cases.
func (p *Park) parkFollower(ctx context.Context, seq int64) error {
	ch := make(chan struct{})
	chPtr := &ch

	idx, err := p.register(ctx, seq, chPtr)
	if err != nil {
		return err
	}
	defer func() { p.slots[idx].ch.CompareAndSwap(chPtr, nil) }()

	for p.test() {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ch:
			// Signal claimed and closed our slot; a fresh channel is
			// needed if we have to re-register after waking spuriously.
			ch = make(chan struct{})
			chPtr = &ch
			if !p.slots[idx].ch.CompareAndSwap(nil, chPtr) {
				// slot was taken by someone else's registration race;
				// fall back to a full re-register.
				idx, err = p.register(ctx, seq, chPtr)
				if err != nil {
					return err
				}
			}
		case <-time.After(parkInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// register publishes chPtr into the first free slot reachable from seq,
// escalating spin.Policy between attempts and falling back to a short
// park once the spin count saturates.
func (p *Park) register(ctx context.Context, seq int64, chPtr *chan struct{}) (int, error) {
	var sp spin.Policy
	attempt := seq
	for {
		idx := int(attempt & waiterMask)
		if p.slots[idx].ch.CompareAndSwap(nil, chPtr) {
			return idx, nil
		}
		attempt++
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if sp.Once() >= spin.Cap {
			time.Sleep(parkInterval)
		}
	}
}

// Signal wakes every currently registered waiter by claiming and closing
// each occupied slot. The spinning leader needs no wake and is never
// touched. A cheap waitCache read lets callers with no waiters skip the
// sweep entirely.
func (p *Park) Signal() {
	if p.waitCache.Load() == 0 {
		n := p.waitCount.Load()
		if n == 0 {
			return
		}
		p.waitCache.Store(n)
	}
	for i := 0; i < maxWaiters; i++ {
		old := p.slots[i].ch.Load()
		if old == nil {
			continue
		}
		if p.slots[i].ch.CompareAndSwap(old, nil) {
			close(*old)
		}
		if p.waitCache.Load() == 0 {
			break
		}
	}
}
