package blockingqueue

import "errors"

// Sentinel errors distinguished by callers with errors.Is.
var (
	// ErrCapacityExhausted is returned by Add on a full queue.
	ErrCapacityExhausted = errors.New("blockingqueue: capacity exhausted")
	// ErrEmpty is returned by Element on an empty queue.
	ErrEmpty = errors.New("blockingqueue: empty")
	// ErrInterrupted is returned when a blocking call's context is
	// cancelled or expires while it is not the one enforcing a caller
	// requested timeout.
	ErrInterrupted = errors.New("blockingqueue: interrupted")
	// ErrIllegalArgument is returned by DrainTo when the destination is
	// the queue itself.
	ErrIllegalArgument = errors.New("blockingqueue: illegal argument")
)
