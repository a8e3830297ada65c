package kernel

// BlockPayloadSize is the usable size of one fixed-size memory block, the
// same 128-byte USR_SZ_MEM_BLOCK the original reserves per block (header
// included there; here the header is the Go struct fields below it and the
// payload is a separate fixed-size byte array, since Go has no reason to
// pack them into one raw memory region the way the embedded original did).
const BlockPayloadSize = 112

// Block is a fixed-size memory block. It is also, when handed to Send or
// DelayedSend, a message envelope: the original system stores the envelope
// header at the head of the very block it allocated and returns a payload
// pointer past it; rtx32 keeps that one-block-is-one-envelope design
// (§3's "Message envelope... stored at the head of an allocated block")
// but drops the pointer-arithmetic trick, since in Go the block handle
// already doubles as the envelope handle with no unsafe casting required.
type Block struct {
	next *Block

	// Envelope fields, populated only once Send/DelayedSend stamps them;
	// zero-valued for a block still being used as plain scratch memory.
	SenderPID     int
	DestPID       int
	ScheduledTick uint64
	MType         int

	Payload [BlockPayloadSize]byte
}

func (b *Block) getNext() *Block  { return b.next }
func (b *Block) setNext(n *Block) { b.next = n }

// blockPool is the fixed-size allocator: a LIFO free stack plus a priority
// queue of processes blocked waiting for a block to free up. Grounded on
// k_memory.c's k_request_memory_block/ki_request_memory_block/
// k_release_memory_block.
// blockPool's mutations are all guarded by the owning Kernel's mu — one
// global critical section stands in for the original's disable/enable_irq
// pairs (see DESIGN.md).
type blockPool struct {
	free    *fifo[*Block]
	blocked *priorityQueue
}

func newBlockPool(numBlocks int) *blockPool {
	bp := &blockPool{
		free:    newFifo[*Block](),
		blocked: newPriorityQueue(),
	}
	for i := 0; i < numBlocks; i++ {
		bp.free.PushFront(&Block{})
	}
	return bp
}

// tryTake pops a free block, or reports false if the pool is empty. Caller
// must hold the owning Kernel's mu.
func (bp *blockPool) tryTake() (*Block, bool) {
	if bp.free.Empty() {
		return nil, false
	}
	return bp.free.PopFront(), true
}

// release returns blk to the free stack and, if a process is waiting,
// pops the highest-priority waiter for the caller to reschedule. Caller
// must hold the owning Kernel's mu. Mirrors k_release_memory_block's
// push-then-maybe-pop sequence.
func (bp *blockPool) release(blk *Block) *Process {
	bp.free.PushFront(blk)
	if bp.blocked.Empty() {
		return nil
	}
	return bp.blocked.Pop()
}
