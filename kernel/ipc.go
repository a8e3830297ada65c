package kernel

// deliverLocked pushes blk onto dest's mailbox and, if dest was blocked
// waiting for a message, moves it to the ready queue. Caller must hold
// k.mu. Returns the woken process, or nil if delivery did not unblock
// anyone. Mirrors k_send_message's enqueue-then-maybe-unblock sequence.
func (k *Kernel) deliverLocked(senderPID, destPID int, blk *Block) (*Process, error) {
	if blk == nil || destPID < 0 {
		return nil, ErrInvalidArg
	}
	dest, ok := k.procs[destPID]
	if !ok {
		// §7: an out-of-range destination PID is INVALID_ARG, not
		// NOT_FOUND (NOT_FOUND is kept for an unknown calling PID and for
		// set_priority's "missing from every queue" case).
		return nil, ErrInvalidArg
	}

	blk.SenderPID = senderPID
	blk.DestPID = destPID
	dest.mailbox.PushBack(blk)

	if dest.State != StateBlockedOnReceive {
		return nil, nil
	}
	k.blockedRx.RemoveAt(dest, dest.Priority)
	dest.State = StateReady
	k.ready.Push(dest, dest.Priority)
	return dest, nil
}

// Send delivers blk to destPID's mailbox. If the caller is a normal
// process and delivery unblocked a receiver, the caller yields so the
// (possibly higher-priority) receiver gets a chance to run immediately —
// exactly k_send_message's "if (!is_iproc) k_release_processor()".
func (k *Kernel) Send(callerPID, destPID int, blk *Block) error {
	caller, ok := k.procs[callerPID]
	if !ok {
		return ErrNotFound
	}

	k.mu.Lock()
	woken, err := k.deliverLocked(callerPID, destPID, blk)
	k.mu.Unlock()
	if err != nil {
		return err
	}

	if woken != nil && !caller.IsIService {
		k.reschedule(caller)
	}
	return nil
}

// sendIService is Send's i-service path: delivery happens but the caller
// never yields, per the Open Question resolution that i-services never
// trigger a reschedule themselves.
func (k *Kernel) sendIService(senderPID, destPID int, blk *Block) error {
	k.mu.Lock()
	_, err := k.deliverLocked(senderPID, destPID, blk)
	k.mu.Unlock()
	return err
}

// Receive blocks until a message is available in the caller's mailbox,
// mirroring k_receive_message's while(q_empty(...)) loop.
func (k *Kernel) Receive(callerPID int) (*Block, int, error) {
	p := k.procs[callerPID]
	if p == nil {
		return nil, 0, ErrNotFound
	}

	k.mu.Lock()
	for p.mailbox.Empty() {
		p.State = StateBlockedOnReceive
		k.blockedRx.Push(p, p.Priority)
		k.log.WithField("pid", callerPID).Debug("blocked on receive")
		k.blockAndSwitch(p)
	}
	blk := p.mailbox.PopFront()
	k.mu.Unlock()
	return blk, blk.SenderPID, nil
}

// ReceiveNB is the non-blocking variant used by i-services
// (ki_receive_message): returns ErrResourceExhausted instead of parking.
func (k *Kernel) ReceiveNB(callerPID int) (*Block, int, error) {
	p, ok := k.procs[callerPID]
	if !ok {
		return nil, 0, ErrNotFound
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if p.mailbox.Empty() {
		return nil, 0, ErrResourceExhausted
	}
	blk := p.mailbox.PopFront()
	return blk, blk.SenderPID, nil
}

// DelayedSend enqueues blk directly onto the timer i-service's own
// mailbox, stamped with the sender, the eventual recipient, and the tick
// at which it should actually be delivered. This is the whole of
// "i-service-safe by construction" (SPEC_FULL.md): delayed delivery is
// just an enqueue guarded by the same mutex every other primitive uses,
// so there is no separate masking discipline to get right.
//
// This stamps the envelope and pushes it onto the timer's mailbox
// directly rather than calling Send(callerPID, timerPID, blk): Send's
// delivery path stamps blk.DestPID with its own destPID argument, which
// here would be the timer (a relay hop, not the real recipient) —
// clobbering the one field TimerTick later reads to know who to deliver
// to. The timer i-service is never BLOCKED_ON_RECEIVE, so none of Send's
// unblock-and-yield logic applies here anyway.
func (k *Kernel) DelayedSend(callerPID, destPID int, blk *Block, delayTicks uint64) error {
	if blk == nil || destPID < 0 {
		return ErrInvalidArg
	}
	if _, ok := k.procs[callerPID]; !ok {
		return ErrNotFound
	}

	k.mu.Lock()
	if _, ok := k.procs[destPID]; !ok {
		k.mu.Unlock()
		return ErrInvalidArg
	}
	blk.SenderPID = callerPID
	blk.DestPID = destPID
	blk.ScheduledTick = k.tick + delayTicks
	k.procs[k.timerPID].mailbox.PushBack(blk)
	k.mu.Unlock()
	return nil
}

// delayedList holds envelopes waiting for their ScheduledTick, ordered
// ascending with FIFO tie-breaking, exactly timer_i_process's insertion
// rule: walk from the front until the next entry's tick exceeds the new
// one, and insert after any existing entries at the same tick.
type delayedList struct {
	head *Block
}

func newDelayedList() *delayedList {
	return &delayedList{}
}

func (d *delayedList) Empty() bool {
	return d.head == nil
}

func (d *delayedList) Insert(blk *Block) {
	if d.head == nil || d.head.ScheduledTick > blk.ScheduledTick {
		blk.next = d.head
		d.head = blk
		return
	}
	iter := d.head
	for iter.next != nil && iter.next.ScheduledTick <= blk.ScheduledTick {
		iter = iter.next
	}
	blk.next = iter.next
	iter.next = blk
}

// DrainDue pops and returns, in order, every envelope whose ScheduledTick
// is now due.
func (d *delayedList) DrainDue(now uint64) []*Block {
	var due []*Block
	for d.head != nil && d.head.ScheduledTick <= now {
		blk := d.head
		d.head = blk.next
		blk.next = nil
		due = append(due, blk)
	}
	return due
}
