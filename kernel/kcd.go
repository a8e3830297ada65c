package kernel

import "sync"

// MaxRegisteredCommands is the table's fixed capacity, the same
// bounded-table discipline the original applies to every kernel table
// (g_proc_table, the block pool) rather than an unbounded map.
const MaxRegisteredCommands = 32

// kcdTable is the registered-command table from §3: a small fixed-capacity
// mapping from command name to the PID that handles it. The command
// dispatcher itself (parsing input lines, routing COMMAND messages) is
// explicitly out of scope; only this primitive is core, grounded in
// k_rtx.h's PID_KCD/KCD_REG plumbing.
type kcdTable struct {
	mu    sync.Mutex
	byCmd map[string]int
}

func newKCDTable() *kcdTable {
	return &kcdTable{byCmd: make(map[string]int, MaxRegisteredCommands)}
}

// Register associates cmd with pid, overwriting any previous registration
// (a process re-registering the same command it already owns is not an
// error — commands are owned last-registration-wins, matching how a KCD_REG
// message is just another send with no uniqueness check in the original).
// Fails with ErrResourceExhausted once MaxRegisteredCommands distinct
// commands are registered and cmd is not already one of them.
func (t *kcdTable) Register(cmd string, pid int) error {
	if cmd == "" {
		return ErrInvalidArg
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byCmd[cmd]; !exists && len(t.byCmd) >= MaxRegisteredCommands {
		return ErrResourceExhausted
	}
	t.byCmd[cmd] = pid
	return nil
}

// Lookup returns the PID registered for cmd, if any.
func (t *kcdTable) Lookup(cmd string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pid, ok := t.byCmd[cmd]
	return pid, ok
}
