// Package actor defines the two small interfaces every simulation-driving
// component implements: the scheduler's view of an actor (Start/Step/
// PeekClosest), and the buffered-effect submission interface used to drain
// process handler output back into an actor between steps.
package actor

import (
	"github.com/kshprenger/dscale/message"
	dtime "github.com/kshprenger/dscale/time"
)

// SimulationActor is anything the top-level scheduler loop can drive: the
// network actor and the timer manager both implement it. Start runs once
// before the main loop begins; Step advances the actor by exactly one event;
// PeekClosest reports the virtual time of that actor's next pending event,
// or false if it has none.
type SimulationActor interface {
	Start()
	Step()
	PeekClosest() (dtime.Jiffies, bool)
}

// EventSubmitter accepts a batch of handler-produced effects of type E and
// folds them into the actor's own pending state. Implementations drain the
// slice they're given; callers must not reuse it afterward.
type EventSubmitter[E any] interface {
	Submit(events []E)
}

// ExecutionHook is the process-wide execution context's view, as seen by an
// actor about to invoke a process handler: record who is about to run, and
// afterward fold whatever effects that handler call buffered back into the
// network and timer actors. An actor takes this as an interface rather than
// importing the access package directly, so network/timermanager/access can
// be wired together by a higher-level package without an import cycle.
type ExecutionHook interface {
	SetCurrentProcess(id message.ParticipantId)
	Drain()
}
