package access

import (
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/random"
	dtime "github.com/kshprenger/dscale/time"
)

// current holds the single active simulation's Context. DScale simulations
// are single-threaded and run one at a time per process, so a process
// handler can reach its simulation's send/timer/topology API through these
// package-level functions without threading a context parameter through
// every ProcessHandle method — the Go analogue of the original's
// thread-local execution context.
var current *Context

// Setup installs ctx as the active simulation context. Called once by the
// simulation engine before a run starts.
func Setup(ctx *Context) {
	current = ctx
}

// Teardown clears the active simulation context, releasing it for garbage
// collection and allowing a fresh Setup for a subsequent run in the same
// process.
func Teardown() {
	current = nil
}

func must() *Context {
	if current == nil {
		panic("access: called outside of an active simulation context")
	}
	return current
}

// Rank returns the id of the process currently executing.
func Rank() message.ParticipantId {
	return must().Rank()
}

// Now returns the simulation's current virtual time.
func Now() dtime.Jiffies {
	return must().Now()
}

// SendTo buffers a send to a single participant, attributed to the
// currently executing process.
func SendTo(to message.ParticipantId, msg message.Message) {
	must().SendTo(to, msg)
}

// Broadcast buffers a send to every participant in the simulation.
func Broadcast(msg message.Message) {
	must().Broadcast(msg)
}

// BroadcastWithinPool buffers a send to every participant registered in the
// named pool.
func BroadcastWithinPool(pool string, msg message.Message) {
	must().BroadcastWithinPool(pool, msg)
}

// SendRandomFromPool buffers a send to one participant chosen uniformly at
// random from the named pool.
func SendRandomFromPool(pool string, msg message.Message) {
	must().SendRandomFromPool(pool, msg)
}

// ScheduleTimerAfter buffers a timer to fire after the given delay, owned
// by the currently executing process, and returns its id.
func ScheduleTimerAfter(after dtime.Jiffies) uint64 {
	return must().ScheduleTimerAfter(after)
}

// RandomizerForCurrent returns the Randomizer derived for the currently
// executing process.
func RandomizerForCurrent() *random.Randomizer {
	return must().RandomizerForCurrent()
}

// ListPool returns the participant ids registered in the named pool.
func ListPool(pool string) []message.ParticipantId {
	return must().ListPool(pool)
}

// ChooseFromPool returns one participant chosen uniformly at random from
// the named pool.
func ChooseFromPool(pool string) message.ParticipantId {
	return must().ChooseFromPool(pool)
}

// SetCurrentProcess records the owner of the handler call about to run. The
// enclosing actor calls this before invoking a process handler, and Drain
// after it returns.
func SetCurrentProcess(id message.ParticipantId) {
	must().SetCurrentProcess(id)
}

// Drain folds every buffered send and timer schedule from the just-finished
// handler call into the network and timer actors.
func Drain() {
	must().Drain()
}
