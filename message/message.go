// Package message implements the simulator's type-erased message envelope,
// routing destination descriptors, and the arrival-time-ordered queue element
// used by both the latency and bandwidth stages of the network actor.
package message

import (
	dtime "github.com/kshprenger/dscale/time"
)

// ParticipantId uniquely identifies a process within a simulation run.
// Ids are assigned sequentially, in pool-registration order, by the
// simulation builder and never change during a run.
type ParticipantId int

// Message is the interface every user-defined payload type implements to be
// routed through the network actor. The zero-value VirtualSize of 0 means a
// message consumes no bandwidth budget unless the implementer opts in by
// overriding VirtualSize.
type Message interface {
	// VirtualSize returns the message's simulated size in bytes, consumed
	// against the bandwidth budget of its destination. Types that embed
	// BaseMessage inherit a default of 0.
	VirtualSize() int
}

// BaseMessage is embeddable by message payload types that don't need to
// report a nonzero virtual size, mirroring the default trait method the
// original Message trait provides.
type BaseMessage struct{}

// VirtualSize returns 0.
func (BaseMessage) VirtualSize() int { return 0 }

// Ptr is a type-erased, immutable handle to a Message, delivered to
// ProcessHandle.OnMessage. It offers safe type recovery without requiring
// the receiver to know every possible concrete message type up front.
type Ptr struct {
	msg Message
}

// NewPtr wraps msg in a Ptr.
func NewPtr(msg Message) Ptr {
	return Ptr{msg: msg}
}

// Is reports whether the wrapped message's concrete type is exactly T.
func Is[T Message](p Ptr) bool {
	_, ok := p.msg.(T)
	return ok
}

// TryAs attempts to recover the wrapped message as T, returning ok=false if
// the concrete type does not match.
func TryAs[T Message](p Ptr) (T, bool) {
	v, ok := p.msg.(T)
	return v, ok
}

// As recovers the wrapped message as T, panicking if the concrete type does
// not match. Use TryAs or Is when the type is not already known to be
// correct.
func As[T Message](p Ptr) T {
	v, ok := p.msg.(T)
	if !ok {
		panic("message: Ptr.As called with mismatched message type")
	}
	return v
}

// VirtualSize returns the wrapped message's simulated byte size.
func (p Ptr) VirtualSize() int {
	return p.msg.VirtualSize()
}

// Destination selects the recipients of an outbound send: a single process,
// every process within one named pool, or every process in the simulation.
type Destination struct {
	kind destinationKind
	to   ParticipantId
	pool string
}

type destinationKind int

const (
	destTo destinationKind = iota
	destBroadcastWithinPool
	destBroadcast
)

// To addresses a single participant.
func To(id ParticipantId) Destination {
	return Destination{kind: destTo, to: id}
}

// BroadcastWithinPool addresses every participant registered in the named
// pool.
func BroadcastWithinPool(pool string) Destination {
	return Destination{kind: destBroadcastWithinPool, pool: pool}
}

// Broadcast addresses every participant in the simulation.
func Broadcast() Destination {
	return Destination{kind: destBroadcast}
}

// Kind reports which of the three destination forms this value holds.
func (d Destination) Kind() string {
	switch d.kind {
	case destTo:
		return "to"
	case destBroadcastWithinPool:
		return "broadcast_within_pool"
	case destBroadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// To returns the single target participant and true, if this destination is
// the To form.
func (d Destination) To() (ParticipantId, bool) {
	return d.to, d.kind == destTo
}

// Pool returns the target pool name and true, if this destination is the
// BroadcastWithinPool form.
func (d Destination) Pool() (string, bool) {
	return d.pool, d.kind == destBroadcastWithinPool
}

// IsBroadcast reports whether this destination is the simulation-wide
// Broadcast form.
func (d Destination) IsBroadcast() bool {
	return d.kind == destBroadcast
}

// Step is one already-resolved source-to-single-destination hop: a
// broadcast or pool-broadcast has already been expanded into one Step per
// concrete recipient before entering the network actor.
type Step struct {
	Source ParticipantId
	Dest   ParticipantId
	Msg    Ptr
}

// Routed is a Step paired with its simulated arrival time and the monotonic
// sequence number it was assigned when first submitted to the network.
// Sequence survives a message's move from the latency stage into the
// bandwidth buffer, so FIFO ordering among same-arrival-time messages holds
// across both stages, not just within one heap's lifetime.
type Routed struct {
	ArrivalTime dtime.Jiffies
	Sequence    uint64
	Step        Step
}

// Less reports whether r sorts strictly before other: primarily by arrival
// time, falling back to insertion sequence to make FIFO among equal arrival
// times an explicit, portable guarantee instead of relying on whatever
// order container/heap happens to preserve on ties.
func (r Routed) Less(other Routed) bool {
	if r.ArrivalTime != other.ArrivalTime {
		return r.ArrivalTime < other.ArrivalTime
	}
	return r.Sequence < other.Sequence
}
