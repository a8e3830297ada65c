package kernel

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ProcessConfig describes one process to create at boot, analogous to one
// row of the original's g_proc_table / PROC_INIT.
type ProcessConfig struct {
	PID      int
	Priority int
	Entry    EntryFunc
}

// Config configures a Kernel at construction, mirroring the teacher's
// NewVirtualMachine(memSize, numVCPUs, debug uint) constructor-with-
// defaults style rather than a flags/env-driven configuration layer.
type Config struct {
	// Processes are the normal (non-idle, non-i-service) processes to
	// boot with. Idle (PID 0) is added automatically.
	Processes []ProcessConfig

	// NumBlocks sizes the fixed-size memory block pool. Defaults to 64
	// if zero.
	NumBlocks int

	// TimerPID/UARTPID are the reserved process IDs for the two
	// i-services, matching the original's "last two slots" convention
	// (PID_TIMER_IPROC/PID_UART_IPROC). Default to the two PIDs above
	// the highest configured normal process PID.
	TimerPID int
	UARTPID  int

	// ConsolePID is the process that receives MsgUserInput messages
	// produced from incoming UART bytes (the original's PID_KCD). Zero
	// disables dispatch (bytes are logged and dropped).
	ConsolePID int

	// Logger receives structured kernel activity. Defaults to a new
	// logrus.Logger at Info level writing to the standard logrus output.
	Logger *logrus.Logger
}

// Kernel owns the process table, scheduler state, IPC mailboxes, and the
// memory-block allocator for one running system. It plays the role the
// teacher's VirtualMachine plays for a guest: the thing that owns every
// piece of shared state and is the one synchronization point everything
// else routes through.
type Kernel struct {
	mu sync.Mutex

	log *logrus.Entry

	procs map[int]*Process
	order []int // PIDs in a stable, deterministic iteration order (Run spawns goroutines in it)

	idle       *Process
	timerPID   int
	uartPID    int
	consolePID int
	current   *Process
	ready     *priorityQueue
	blockedRx *priorityQueue
	pool      *blockPool
	delayed   *delayedList
	tick      uint64

	kcd *kcdTable

	done chan struct{}
}

// New constructs a Kernel and its process table but does not start any
// process running; call Run to begin execution.
func New(cfg Config) *Kernel {
	if cfg.NumBlocks == 0 {
		cfg.NumBlocks = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	maxPID := 0
	for _, pc := range cfg.Processes {
		if pc.PID > maxPID {
			maxPID = pc.PID
		}
	}
	timerPID := cfg.TimerPID
	uartPID := cfg.UARTPID
	if timerPID == 0 {
		timerPID = maxPID + 1
	}
	if uartPID == 0 {
		uartPID = maxPID + 2
	}

	k := &Kernel{
		log:       logger.WithField("component", "kernel"),
		procs:     make(map[int]*Process),
		timerPID:  timerPID,
		uartPID:   uartPID,
		ready:     newPriorityQueue(),
		blockedRx: newPriorityQueue(),
		pool:      newBlockPool(cfg.NumBlocks),
		delayed:   newDelayedList(),
		kcd:        newKCDTable(),
		done:       make(chan struct{}),
		consolePID: cfg.ConsolePID,
	}

	idle := newProcess(IdlePID, PriorityLowest+1, false, idleLoop)
	k.addProcess(idle)
	k.idle = idle

	for _, pc := range cfg.Processes {
		p := newProcess(pc.PID, pc.Priority, false, pc.Entry)
		k.addProcess(p)
		p.State = StateReady
		k.ready.Push(p, p.Priority)
	}

	timer := newProcess(timerPID, PriorityHigh, true, nil)
	timer.State = StateReady
	k.addProcess(timer)

	uart := newProcess(uartPID, PriorityHigh, true, nil)
	uart.State = StateReady
	k.addProcess(uart)

	return k
}

func (k *Kernel) addProcess(p *Process) {
	k.procs[p.PID] = p
	k.order = append(k.order, p.PID)
}

// TimerPID/UARTPID expose the reserved i-service process IDs so external
// wiring (cmd/rtxsim, hostio) can address them with Send/DelayedSend.
func (k *Kernel) TimerPID() int { return k.timerPID }
func (k *Kernel) UARTPID() int  { return k.uartPID }

// KCD returns the registered-command table (§3's "registered-command
// table"), used by an external command dispatcher that is out of scope
// for this core.
func (k *Kernel) KCD() *kcdTable { return k.kcd }

func idleLoop(h *Handle) {
	for {
		h.Yield()
	}
}

// Run spawns every normal process (and idle) as a goroutine and performs
// the initial scheduling dispatch, then blocks until Stop is called.
// Grounded on virtual_machine.go's Run, which launches one goroutine per
// VCPU and waits on a completion channel.
func (k *Kernel) Run() {
	for _, pid := range k.order {
		p := k.procs[pid]
		if p.IsIService {
			continue
		}
		go k.runLoop(p)
	}

	k.mu.Lock()
	k.current = nil
	next := k.pickNextLocked()
	k.current = next
	next.State = StateRunning
	k.mu.Unlock()

	k.log.WithField("pid", next.PID).Info("initial dispatch")
	next.turn <- struct{}{}

	<-k.done
}

// Stop signals Run to return. It does not forcibly kill process
// goroutines (there is no hardware reset to simulate); it is intended for
// host-process shutdown, e.g. from cmd/rtxsim on SIGINT.
func (k *Kernel) Stop() {
	close(k.done)
}

func (k *Kernel) runLoop(p *Process) {
	<-p.turn
	p.entry(&Handle{k: k, pid: p.PID})
}
