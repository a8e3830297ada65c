package kernel

// RequestMemory blocks the calling process until a fixed-size block is
// available, mirroring k_request_memory_block's while(empty(heap)) loop:
// each pass through the loop parks the caller on the blocked-memory
// priority queue and gives up the processor, re-checking the pool only
// after being scheduled again.
func (k *Kernel) RequestMemory(callerPID int) (*Block, error) {
	p := k.procs[callerPID]
	if p == nil {
		return nil, ErrNotFound
	}

	k.mu.Lock()
	for {
		if blk, ok := k.pool.tryTake(); ok {
			k.mu.Unlock()
			return blk, nil
		}
		p.State = StateBlockedOnMemory
		k.pool.blocked.Push(p, p.Priority)
		k.log.WithField("pid", callerPID).Debug("blocked on memory")
		k.blockAndSwitch(p) // unlocks, switches, blocks, re-locks before returning
	}
}

// RequestMemoryNB is the non-blocking variant used by i-services (the
// original's ki_request_memory_block): it returns ErrResourceExhausted
// immediately instead of parking the caller.
func (k *Kernel) RequestMemoryNB(callerPID int) (*Block, error) {
	if _, ok := k.procs[callerPID]; !ok {
		return nil, ErrNotFound
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	blk, ok := k.pool.tryTake()
	if !ok {
		return nil, ErrResourceExhausted
	}
	return blk, nil
}

// ReleaseMemory returns blk to the pool and, if any process was waiting,
// wakes the highest-priority waiter. A reschedule check only runs
// if the caller is a normal process — an i-service releasing memory never
// yields (§4.3 / the Open Question this closes).
func (k *Kernel) ReleaseMemory(callerPID int, blk *Block) error {
	if blk == nil {
		return ErrInvalidArg
	}
	caller := k.procs[callerPID]
	if caller == nil {
		return ErrNotFound
	}

	k.mu.Lock()
	waiter := k.pool.release(blk)
	if waiter != nil {
		waiter.State = StateReady
		k.ready.Push(waiter, waiter.Priority)
		k.log.WithField("pid", waiter.PID).Debug("unblocked by memory release")
	}
	k.mu.Unlock()

	if waiter != nil && !caller.IsIService {
		k.reschedule(caller)
	}
	return nil
}
