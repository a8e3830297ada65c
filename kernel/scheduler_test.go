package kernel

import "testing"

// These exercise pickNextLocked/configureOldLocked directly against bare
// Process/Kernel state, without spinning up goroutines — the scheduling
// decision itself has no dependency on the turn-channel handoff.

func newTestKernel() *Kernel {
	return New(Config{})
}

func TestPickNextPrefersHigherPriorityOverCurrent(t *testing.T) {
	k := newTestKernel()
	cur := mkproc(1, PriorityLow)
	higher := mkproc(2, PriorityHigh)

	k.current = cur
	cur.State = StateRunning
	k.ready.Push(higher, higher.Priority)

	next := k.pickNextLocked()
	if next != higher {
		t.Fatalf("pickNextLocked() = pid %d, want pid %d (higher priority should preempt)", next.PID, higher.PID)
	}
}

func TestPickNextKeepsCurrentWhenNothingOutranksIt(t *testing.T) {
	k := newTestKernel()
	cur := mkproc(1, PriorityHigh)
	lower := mkproc(2, PriorityLow)

	k.current = cur
	cur.State = StateRunning
	k.ready.Push(lower, lower.Priority)

	next := k.pickNextLocked()
	if next != cur {
		t.Fatalf("pickNextLocked() = pid %d, want pid %d (current should keep running)", next.PID, cur.PID)
	}
}

func TestPickNextFallsBackToIdleWhenReadyEmpty(t *testing.T) {
	k := newTestKernel()
	k.current = nil

	next := k.pickNextLocked()
	if next != k.idle {
		t.Fatalf("pickNextLocked() = pid %d, want idle (pid %d)", next.PID, k.idle.PID)
	}
}

func TestPickNextPopsWhenCurrentIsBlocked(t *testing.T) {
	k := newTestKernel()
	cur := mkproc(1, PriorityHigh)
	cur.State = StateBlockedOnReceive
	k.current = cur

	other := mkproc(2, PriorityLowest)
	k.ready.Push(other, other.Priority)

	next := k.pickNextLocked()
	if next != other {
		t.Fatalf("pickNextLocked() = pid %d, want pid %d (blocked process cannot stay current)", next.PID, other.PID)
	}
}

func TestConfigureOldRequeuesRunningProcess(t *testing.T) {
	k := newTestKernel()
	p := mkproc(1, PriorityMedium)
	p.State = StateRunning

	k.configureOldLocked(p)

	if p.State != StateReady {
		t.Fatalf("p.State = %v, want READY", p.State)
	}
	if k.ready.Empty() {
		t.Fatal("p should have been pushed back onto the ready queue")
	}
}

func TestConfigureOldNeverRequeuesIdle(t *testing.T) {
	k := newTestKernel()
	k.idle.State = StateRunning

	k.configureOldLocked(k.idle)

	if !k.ready.Empty() {
		t.Fatal("idle must never be pushed onto the ready queue")
	}
}

func TestSetPrioritySamePriorityIsNoOp(t *testing.T) {
	k := newTestKernel()
	p := newProcess(5, PriorityMedium, false, func(h *Handle) {})
	p.State = StateReady
	k.addProcess(p)
	k.ready.Push(p, p.Priority)

	// Simulate p being the running process invoking SetPriority on itself
	// at the same priority: must be a true no-op, including no reschedule
	// (so it must not attempt a turn-channel handoff that would block
	// forever with no goroutine on the other end).
	k.current = p
	p.State = StateRunning

	if err := k.SetPriority(p.PID, p.PID, PriorityMedium); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if p.Priority != PriorityMedium {
		t.Fatalf("p.Priority = %d, want unchanged %d", p.Priority, PriorityMedium)
	}
}

func TestSetPriorityMigratesReadyBucket(t *testing.T) {
	k := newTestKernel()
	p := newProcess(5, PriorityLowest, false, func(h *Handle) {})
	p.State = StateReady
	k.addProcess(p)
	k.ready.Push(p, p.Priority)

	// A different, strictly-higher-priority process is "current" so
	// SetPriority's trailing reschedule call is a genuine no-op: nothing
	// outranks it even after p's migration, so there is no turn-channel
	// handoff to wait on (no goroutine is running in this white-box test
	// to receive one).
	other := newProcess(6, PriorityHigh, false, func(h *Handle) {})
	k.addProcess(other)
	k.current = other
	other.State = StateRunning

	if err := k.SetPriority(other.PID, p.PID, PriorityMedium); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if p.Priority != PriorityMedium {
		t.Fatalf("p.Priority = %d, want %d", p.Priority, PriorityMedium)
	}
	if !k.ready.buckets[PriorityLowest].Empty() {
		t.Fatal("p should have been removed from its old bucket")
	}
	if top := k.ready.buckets[PriorityMedium].Front(); top != p {
		t.Fatal("p should now be at the head of the medium-priority bucket")
	}
}

func TestSetPriorityRejectsIdleTarget(t *testing.T) {
	k := newTestKernel()
	k.current = k.idle
	k.idle.State = StateRunning

	if err := k.SetPriority(IdlePID, IdlePID, PriorityHigh); err != ErrInvalidArg {
		t.Fatalf("SetPriority(idle target) = %v, want ErrInvalidArg", err)
	}
}

func TestSetPriorityRejectsIServiceTarget(t *testing.T) {
	k := newTestKernel()
	timer := k.procs[k.TimerPID()]
	timer.State = StateRunning
	k.current = timer

	if err := k.SetPriority(timer.PID, timer.PID, PriorityLow); err != ErrInvalidArg {
		t.Fatalf("SetPriority(i-service target) = %v, want ErrInvalidArg", err)
	}
}

func TestSetPriorityMigratesBlockedOnMemoryBucket(t *testing.T) {
	k := newTestKernel()
	p := newProcess(5, PriorityLowest, false, func(h *Handle) {})
	p.State = StateBlockedOnMemory
	k.addProcess(p)
	k.pool.blocked.Push(p, p.Priority)

	other := newProcess(6, PriorityHigh, false, func(h *Handle) {})
	k.addProcess(other)
	k.current = other
	other.State = StateRunning

	if err := k.SetPriority(other.PID, p.PID, PriorityMedium); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if !k.pool.blocked.buckets[PriorityLowest].Empty() {
		t.Fatal("p should have been removed from its old blocked-on-memory bucket")
	}
	if top := k.pool.blocked.buckets[PriorityMedium].Front(); top != p {
		t.Fatal("p should now be at the head of the medium-priority blocked-on-memory bucket")
	}
	// The stale next pointer from the old bucket must not leave p
	// reachable from two queues at once: a RemoveAt on the new bucket
	// should find it and nowhere else.
	if !k.pool.blocked.RemoveAt(p, PriorityMedium) {
		t.Fatal("p should be found in exactly its new bucket")
	}
}

func TestSetPriorityMigratesBlockedOnReceiveBucket(t *testing.T) {
	k := newTestKernel()
	p := newProcess(5, PriorityLow, false, func(h *Handle) {})
	p.State = StateBlockedOnReceive
	k.addProcess(p)
	k.blockedRx.Push(p, p.Priority)

	other := newProcess(6, PriorityHigh, false, func(h *Handle) {})
	k.addProcess(other)
	k.current = other
	other.State = StateRunning

	if err := k.SetPriority(other.PID, p.PID, PriorityHigh); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if !k.blockedRx.buckets[PriorityLow].Empty() {
		t.Fatal("p should have been removed from its old blocked-on-receive bucket")
	}
	if top := k.blockedRx.buckets[PriorityHigh].Front(); top != p {
		t.Fatal("p should now be at the head of the high-priority blocked-on-receive bucket")
	}
}
