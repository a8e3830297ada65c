package kernel

// pickNextLocked implements scheduler()'s selection rule: pop the top of
// ready if current is nil, an i-service, blocked, or top's priority is
// higher than or equal to current's; otherwise keep running current.
// Caller must hold k.mu.
func (k *Kernel) pickNextLocked() *Process {
	top := k.ready.Top()
	cur := k.current

	shouldPop := cur == nil ||
		cur.IsIService ||
		(top != nil && top.Priority <= cur.Priority) ||
		cur.State == StateBlockedOnMemory ||
		cur.State == StateBlockedOnReceive

	var next *Process
	if shouldPop {
		next = k.ready.Pop()
	} else {
		next = cur
	}
	if next == nil {
		next = k.idle
	}
	return next
}

// configureOldLocked mirrors configure_old_pcb: a process that was RUNNING
// becomes READY and, unless it is idle or an i-service, rejoins the ready
// queue. A process leaving via a blocking primitive has already set its
// own state to a BLOCKED_* value before this runs, so this is a no-op for
// it.
func (k *Kernel) configureOldLocked(old *Process) {
	if old == nil || old.State != StateRunning {
		return
	}
	old.State = StateReady
	if old != k.idle && !old.IsIService {
		k.ready.Push(old, old.Priority)
	}
}

// reschedule re-evaluates the scheduler from p's perspective and performs
// the baton handoff if a switch is warranted. p must be the process
// currently invoking a kernel primitive (k.current == p, State ==
// RUNNING). If the scheduler keeps p running, this returns immediately
// without touching the turn channels at all.
func (k *Kernel) reschedule(p *Process) {
	k.mu.Lock()
	next := k.pickNextLocked()
	if next == p {
		k.mu.Unlock()
		return
	}
	k.configureOldLocked(p)
	k.current = next
	next.State = StateRunning
	k.mu.Unlock()

	next.turn <- struct{}{}
	<-p.turn
}

// blockAndSwitch is reschedule's counterpart for a process that is
// blocking (on memory or receive): p's state has already been set to a
// BLOCKED_* value and it has already been pushed onto the relevant
// blocked priority queue by the caller. Unlike reschedule, the switch is
// unconditional: a blocked process can never be picked as "next" by
// pickNextLocked, so next != p is guaranteed here.
func (k *Kernel) blockAndSwitch(p *Process) {
	next := k.pickNextLocked()
	k.configureOldLocked(p)
	k.current = next
	next.State = StateRunning
	k.mu.Unlock()

	next.turn <- struct{}{}
	<-p.turn

	k.mu.Lock()
}

// Yield implements release_processor(): the calling process voluntarily
// gives the scheduler a chance to run something else, and keeps running
// itself unless a process of higher or equal priority is ready.
func (k *Kernel) Yield(callerPID int) error {
	p := k.procs[callerPID]
	if p == nil {
		return ErrNotFound
	}
	k.reschedule(p)
	return nil
}

// GetPriority returns pid's current priority.
func (k *Kernel) GetPriority(pid int) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.procs[pid]
	if p == nil {
		return 0, ErrInvalidArg
	}
	return p.Priority, nil
}

// SetPriority changes target's priority, migrating it within whichever
// queue it is currently sitting in (ready, blocked-on-memory, or
// blocked-on-receive), and only triggers a reschedule of the caller if the
// priority actually changed — grounded on k_set_process_priority's early
// return when priority == pcb->m_priority, which closes the "repeated
// set_priority must not yield" question. Targeting idle or an i-service is
// rejected per §4.2/§6/§7.
func (k *Kernel) SetPriority(callerPID, targetPID, priority int) error {
	if priority < 0 || priority >= NumPriorities {
		return ErrInvalidArg
	}
	if targetPID == IdlePID {
		return ErrInvalidArg
	}

	k.mu.Lock()
	target := k.procs[targetPID]
	if target == nil {
		k.mu.Unlock()
		return ErrInvalidArg
	}
	if target.IsIService {
		k.mu.Unlock()
		return ErrInvalidArg
	}
	if target.Priority == priority {
		k.mu.Unlock()
		return nil
	}

	var pq *priorityQueue
	switch target.State {
	case StateReady:
		pq = k.ready
	case StateBlockedOnMemory:
		pq = k.pool.blocked
	case StateBlockedOnReceive:
		pq = k.blockedRx
	}
	if pq != nil {
		if !pq.RemoveAt(target, target.Priority) {
			k.mu.Unlock()
			return ErrNotFound
		}
		pq.Push(target, priority)
	}
	target.Priority = priority
	k.mu.Unlock()

	if caller := k.procs[callerPID]; caller != nil && !caller.IsIService {
		k.reschedule(caller)
	}
	return nil
}
