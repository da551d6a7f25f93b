// Package access implements the simulation-wide execution context every
// process handler call runs inside: the buffered send/timer-schedule API
// (SendTo, Broadcast, ScheduleTimerAfter, ...) handlers call during Start,
// OnMessage, and OnTimer, drained into the network and timer actors between
// simulation steps.
package access

import (
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/network"
	"github.com/kshprenger/dscale/random"
	dtime "github.com/kshprenger/dscale/time"
	"github.com/kshprenger/dscale/timermanager"
	"github.com/kshprenger/dscale/topology"
)

// Context is the per-simulation execution context. Every process handler
// method runs with the context's current process set to the handler's
// owner; effects the handler produces (sends, timer schedules) are buffered
// here and only take effect once Drain folds them into the network and
// timer actors, after the handler call returns.
//
// Context is not safe for concurrent use: a simulation run drives exactly
// one handler call at a time.
type Context struct {
	currentProcess  message.ParticipantId
	scheduledSends  []network.OutgoingEvent
	scheduledTimers []timermanager.Event

	topology   *topology.Topology
	randomizer *random.Randomizer
	ids        *dtime.IDSource
	now        func() dtime.Jiffies

	network *network.Network
	timers  *timermanager.TimerManager
}

// New builds a Context wired to the given network and timer actors.
func New(topo *topology.Topology, randomizer *random.Randomizer, ids *dtime.IDSource, now func() dtime.Jiffies, net *network.Network, timers *timermanager.TimerManager) *Context {
	return &Context{
		topology:   topo,
		randomizer: randomizer,
		ids:        ids,
		now:        now,
		network:    net,
		timers:     timers,
	}
}

// SetCurrentProcess records the owner of the handler call about to run,
// used to attribute any effects it produces. The enclosing actor must call
// this before invoking a process handler.
func (c *Context) SetCurrentProcess(id message.ParticipantId) {
	c.currentProcess = id
}

// Rank returns the id of the process currently executing.
func (c *Context) Rank() message.ParticipantId {
	return c.currentProcess
}

// Now returns the simulation's current virtual time.
func (c *Context) Now() dtime.Jiffies {
	return c.now()
}

// SendTo buffers a send to a single participant, attributed to the
// currently executing process.
func (c *Context) SendTo(to message.ParticipantId, msg message.Message) {
	c.scheduledSends = append(c.scheduledSends, network.OutgoingEvent{
		From: c.currentProcess,
		Dest: message.To(to),
		Msg:  message.NewPtr(msg),
	})
}

// Broadcast buffers a send to every participant in the simulation.
func (c *Context) Broadcast(msg message.Message) {
	c.scheduledSends = append(c.scheduledSends, network.OutgoingEvent{
		From: c.currentProcess,
		Dest: message.Broadcast(),
		Msg:  message.NewPtr(msg),
	})
}

// BroadcastWithinPool buffers a send to every participant registered in the
// named pool.
func (c *Context) BroadcastWithinPool(pool string, msg message.Message) {
	c.scheduledSends = append(c.scheduledSends, network.OutgoingEvent{
		From: c.currentProcess,
		Dest: message.BroadcastWithinPool(pool),
		Msg:  message.NewPtr(msg),
	})
}

// SendRandomFromPool buffers a send to one participant chosen uniformly at
// random from the named pool.
func (c *Context) SendRandomFromPool(pool string, msg message.Message) {
	target := c.ChooseFromPool(pool)
	c.SendTo(target, msg)
}

// ScheduleTimerAfter buffers a timer to fire after the given delay, owned
// by the currently executing process, and returns its id.
func (c *Context) ScheduleTimerAfter(after dtime.Jiffies) uint64 {
	id := c.ids.Next()
	c.scheduledTimers = append(c.scheduledTimers, timermanager.Event{
		Owner:   c.currentProcess,
		TimerId: id,
		After:   after,
	})
	return id
}

// RandomizerForCurrent returns the Randomizer derived for the currently
// executing process, distinct from the engine's shared Randomizer used for
// latency sampling and SendRandomFromPool, so a handler's own random draws
// never share a sequence with another participant's.
func (c *Context) RandomizerForCurrent() *random.Randomizer {
	return c.topology.RandomizerFor(c.currentProcess)
}

// ListPool returns the participant ids registered in the named pool.
func (c *Context) ListPool(pool string) []message.ParticipantId {
	return c.topology.ListPool(pool)
}

// ChooseFromPool returns one participant chosen uniformly at random from
// the named pool.
func (c *Context) ChooseFromPool(pool string) message.ParticipantId {
	ids := c.topology.ListPool(pool)
	asInts := make([]int, len(ids))
	for i, id := range ids {
		asInts[i] = int(id)
	}
	return message.ParticipantId(c.randomizer.ChooseFromSlice(asInts))
}

// Drain folds every buffered send and timer schedule from the just-finished
// handler call into the network and timer actors. It is called once after
// every handler invocation, never mid-call.
func (c *Context) Drain() {
	if len(c.scheduledSends) > 0 {
		c.network.Submit(c.scheduledSends)
		c.scheduledSends = nil
	}
	if len(c.scheduledTimers) > 0 {
		c.timers.Submit(c.scheduledTimers)
		c.scheduledTimers = nil
	}
}
