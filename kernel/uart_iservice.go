package kernel

import "io"

// consolePID is the destination for USER_INPUT messages produced by
// incoming bytes, the analogue of PID_KCD in the original. It is set via
// Config.ConsolePID; zero means "no dispatcher configured", since PID 0 is
// always idle and never a sensible input destination.
func (k *Kernel) setConsolePID(pid int) {
	k.consolePID = pid
}

// UARTByteIn is the RDA ("receive data available") half of UART_IPROC: a
// byte arrived on the wire. The three operator diagnostic hotkeys (§6) are
// handled locally; anything else is wrapped in a freshly allocated block
// tagged MsgUserInput and forwarded to the registered console/command
// dispatcher process.
//
// Grounded on i_proc.c's IIR_RDA branch, including its DEBUG_HK dump block
// and its out-of-memory fallback (logged here instead of echoed back over
// a polling UART, since rtx32 has no secondary polling port to fall back
// to — see SPEC_FULL.md).
func (k *Kernel) UARTByteIn(b byte) {
	switch b {
	case '!':
		k.dumpQueue("ready", k.ready)
		return
	case '@':
		k.dumpQueue("blocked_memory", k.pool.blocked)
		return
	case '#':
		k.dumpQueue("blocked_receive", k.blockedRx)
		return
	}

	blk, err := k.RequestMemoryNB(k.uartPID)
	if err != nil {
		k.log.WithField("char", string(b)).Warn("UART i-service out of memory, dropping input byte")
		return
	}
	blk.MType = MsgUserInput
	blk.Payload[0] = b
	blk.Payload[1] = 0

	if k.consolePID == 0 {
		k.log.Debug("no console PID configured, discarding input byte")
		k.ReleaseMemory(k.uartPID, blk)
		return
	}
	k.sendIService(k.uartPID, k.consolePID, blk)
}

// UARTDrainOutput is the THRE ("transmitter holding register empty") half
// of UART_IPROC: if a process has sent the UART i-service an outgoing
// message, write its NUL-terminated payload to w and release the block.
// Reports whether it found anything to write.
//
// The original is interrupt-driven (THRE fires when the hardware
// transmitter goes idle); rtx32 has no such register to interrupt on, so
// this is polled instead (see hostio.Console), a disclosed simplification
// with no effect on message ordering or delivery semantics.
func (k *Kernel) UARTDrainOutput(w io.Writer) (bool, error) {
	blk, _, err := k.ReceiveNB(k.uartPID)
	if err == ErrResourceExhausted {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	n := 0
	for n < len(blk.Payload) && blk.Payload[n] != 0 {
		n++
	}
	if _, werr := w.Write(blk.Payload[:n]); werr != nil {
		k.ReleaseMemory(k.uartPID, blk)
		return true, werr
	}
	k.ReleaseMemory(k.uartPID, blk)
	return true, nil
}

func (k *Kernel) dumpQueue(name string, pq *priorityQueue) {
	entry := k.log.WithField("queue", name)
	k.mu.Lock()
	defer k.mu.Unlock()
	for priority, bucket := range pq.buckets {
		for n := bucket.first; !bucket.isZero(n); n = n.getNext() {
			entry.WithField("pid", n.PID).WithField("priority", priority).Info("queued process")
		}
	}
}
