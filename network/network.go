package network

import (
	"github.com/kshprenger/dscale/internal/actor"
	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/metrics"
	"github.com/kshprenger/dscale/nursery"
	"github.com/kshprenger/dscale/random"
	dtime "github.com/kshprenger/dscale/time"
	"github.com/kshprenger/dscale/topology"
)

// OutgoingEvent is one send a process handler produced, still addressed to
// an unresolved Destination — a broadcast or pool-broadcast is expanded into
// one concrete Step per recipient only once it reaches Submit.
type OutgoingEvent struct {
	From message.ParticipantId
	Dest message.Destination
	Msg  message.Ptr
}

// Network is the SimulationActor that owns message delivery: it resolves
// destinations to concrete recipients, applies a randomized per-pair
// latency delay, then serializes delivery per destination against the
// configured bandwidth budget.
type Network struct {
	seed     random.Seed
	queue    *bandwidthQueue
	topology *topology.Topology
	nursery  *nursery.Nursery
	now      func() dtime.Jiffies
	hook     actor.ExecutionHook
	logger   logging.Logger
	metrics  *metrics.Collectors
	nextSeq  uint64
}

// New builds a Network actor. now reports the simulation's current virtual
// time, used to stamp the base (pre-latency) arrival time of every newly
// submitted send. SetHook must be called with the simulation's execution
// context before Start or Step is invoked.
func New(seed random.Seed, bandwidth Description, topo *topology.Topology, n *nursery.Nursery, now func() dtime.Jiffies) *Network {
	return &Network{
		seed:     seed,
		queue:    newBandwidthQueue(bandwidth, newLatencyQueue(random.New(seed), topo), now),
		topology: topo,
		nursery:  n,
		now:      now,
		logger:   logging.Noop{},
	}
}

// SetHook wires the execution context this actor must activate for the
// currently-dispatching process before each handler call, and drain
// afterward. Must be called once before Start or Step.
func (net *Network) SetHook(hook actor.ExecutionHook) {
	net.hook = hook
}

// SetLogger overrides the Logger this actor emits debug records through for
// every submitted, queued, re-stamped and delivered message.
func (net *Network) SetLogger(logger logging.Logger) {
	net.logger = logger
	net.queue.setLogger(logger)
}

// SetMetrics wires the Prometheus collectors this actor increments on every
// delivery. A nil collectors is safe and leaves instrumentation disabled.
func (net *Network) SetMetrics(collectors *metrics.Collectors) {
	net.metrics = collectors
}

// Start runs every registered process handler's Start callback, in
// deterministic id order.
func (net *Network) Start() {
	for _, id := range net.nursery.Keys() {
		net.hook.SetCurrentProcess(id)
		net.nursery.StartSingle(id)
		net.hook.Drain()
	}
}

// Step delivers the single earliest message whose full transit delay has
// elapsed, if any is ready; it may instead only advance internal queue
// state (moving a message from the latency stage to its destination
// buffer) without delivering anything this call.
func (net *Network) Step() {
	routed, ok := net.queue.pop()
	if !ok {
		return
	}
	net.hook.SetCurrentProcess(routed.Step.Dest)
	net.nursery.DeliverMessage(routed.Step.Source, routed.Step.Dest, routed.Step.Msg)
	net.hook.Drain()
	net.metrics.MessageRouted()
}

// PeekClosest reports the earliest time this actor would next make
// progress, across both the latency and bandwidth-serialization stages.
func (net *Network) PeekClosest() (dtime.Jiffies, bool) {
	return net.queue.peekClosest()
}

// Submit resolves each event's Destination into one or more concrete
// recipients and enqueues one Step per recipient, stamped with a base
// arrival time of now+1 (a message with no configured latency still arrives
// no earlier than the next virtual timepoint).
func (net *Network) Submit(events []OutgoingEvent) {
	for _, ev := range events {
		for _, target := range net.resolveTargets(ev.Dest) {
			net.logger.Debugf("message submitted from %d to %d at jiffy %d", ev.From, target, net.now())
			net.queue.push(message.Routed{
				ArrivalTime: net.now() + 1,
				Sequence:    net.nextSequence(),
				Step: message.Step{
					Source: ev.From,
					Dest:   target,
					Msg:    ev.Msg,
				},
			})
		}
	}
}

func (net *Network) nextSequence() uint64 {
	net.nextSeq++
	return net.nextSeq
}

func (net *Network) resolveTargets(dest message.Destination) []message.ParticipantId {
	if dest.IsBroadcast() {
		return net.nursery.Keys()
	}
	if pool, ok := dest.Pool(); ok {
		return net.topology.ListPool(pool)
	}
	to, ok := dest.To()
	if !ok {
		panic("network: destination is neither broadcast, pool-broadcast, nor a single target")
	}
	return []message.ParticipantId{to}
}
