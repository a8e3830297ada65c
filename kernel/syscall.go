package kernel

// Handle is the only thing a process's EntryFunc touches: every kernel
// primitive a normal process may call is exposed as a method here, bound
// to that process's own PID. This is the syscall-trampoline analogue
// (§4.7) — in the original, a process never calls k_send_message directly,
// it goes through the __SVC_0-indirected send_message wrapper; here a
// process never touches *Kernel directly, it goes through *Handle, which
// is the one indirection point. The shape is the same one
// devices/iobus.go uses to route a port number to a device: one table
// (here, one receiver type) that every caller goes through instead of
// reaching into kernel internals.
type Handle struct {
	k   *Kernel
	pid int
}

// PID returns the process ID this handle is bound to.
func (h *Handle) PID() int { return h.pid }

// UARTPID returns the reserved PID of the UART i-service, so a process
// can address it directly with Send/DelayedSend (e.g. to hand it an
// outgoing message for the operator terminal).
func (h *Handle) UARTPID() int { return h.k.UARTPID() }

// Yield gives up the processor voluntarily (release_processor).
func (h *Handle) Yield() error {
	return h.k.Yield(h.pid)
}

// GetPriority returns this process's own priority.
func (h *Handle) GetPriority() (int, error) {
	return h.k.GetPriority(h.pid)
}

// SetPriority changes pid's priority (which may be this process or
// another one).
func (h *Handle) SetPriority(pid, priority int) error {
	return h.k.SetPriority(h.pid, pid, priority)
}

// RequestMemory blocks until a fixed-size block is available.
func (h *Handle) RequestMemory() (*Block, error) {
	return h.k.RequestMemory(h.pid)
}

// ReleaseMemory returns blk to the pool.
func (h *Handle) ReleaseMemory(blk *Block) error {
	return h.k.ReleaseMemory(h.pid, blk)
}

// Send delivers blk to destPID's mailbox.
func (h *Handle) Send(destPID int, blk *Block) error {
	return h.k.Send(h.pid, destPID, blk)
}

// Receive blocks until a message arrives in this process's mailbox.
func (h *Handle) Receive() (msg *Block, senderPID int, err error) {
	return h.k.Receive(h.pid)
}

// ReceiveNB returns ErrResourceExhausted instead of blocking when the
// mailbox is empty.
func (h *Handle) ReceiveNB() (msg *Block, senderPID int, err error) {
	return h.k.ReceiveNB(h.pid)
}

// DelayedSend schedules blk for delivery to destPID delayTicks ticks from
// now.
func (h *Handle) DelayedSend(destPID int, blk *Block, delayTicks uint64) error {
	return h.k.DelayedSend(h.pid, destPID, blk, delayTicks)
}
