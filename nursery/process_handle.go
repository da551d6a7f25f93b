package nursery

import (
	"github.com/kshprenger/dscale/message"
)

// ProcessHandle is the interface every simulated process implements. The
// simulation engine calls Start once for every registered process before the
// main loop begins, then calls OnMessage and OnTimer as network messages and
// timers arrive for that process.
type ProcessHandle interface {
	// Start initializes the process and schedules any initial work. A
	// process that schedules nothing here, and never will as a result of
	// a message or timer either, deadlocks the simulation once every
	// other process has also gone idle.
	Start()

	// OnMessage handles a message delivered from another participant (or
	// from itself, for a self-addressed send).
	OnMessage(from message.ParticipantId, msg message.Ptr)

	// OnTimer handles a previously scheduled timer firing.
	OnTimer(id uint64)
}
