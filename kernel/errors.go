package kernel

import "errors"

// Sentinel errors returned by kernel primitives, one per negative return
// code a caller can observe. Suspension (blocking on memory or receive) is
// never represented as an error: it is a state transition, not a failure.
var (
	// ErrInvalidArg means an argument failed validation (nil message, pid
	// out of range, priority outside 0..NumPriorities-1).
	ErrInvalidArg = errors.New("rtx32: invalid argument")

	// ErrNotFound means the calling process's pid did not resolve to a
	// live process, or SetPriority did not find its target in the queue
	// its state names.
	ErrNotFound = errors.New("rtx32: process not found")

	// ErrResourceExhausted means a non-blocking request could not be
	// satisfied immediately (empty block pool, empty mailbox).
	ErrResourceExhausted = errors.New("rtx32: resource exhausted")
)
