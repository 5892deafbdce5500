// Package ringbuffer implements the two non-blocking, lock-free MPMC ring
// algorithms that back the blocking queue adapter in
// github.com/arcentrix/concurrentqueue/pkg/blockingqueue: Disruptor, a
// split-cursor claim-then-commit ring, and Vyukov, a per-slot-sequence
// ring.
package ringbuffer

// nextPow2 rounds n up to the next power of two, with a floor of 2.
func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
