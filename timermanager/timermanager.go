// Package timermanager implements the simulation actor responsible for
// firing timers that process handlers scheduled via ScheduleTimerAfter,
// in strict virtual-time order.
package timermanager

import (
	"container/heap"

	"github.com/kshprenger/dscale/internal/actor"
	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/metrics"
	"github.com/kshprenger/dscale/nursery"
	dtime "github.com/kshprenger/dscale/time"
)

// Event is one (owner, timer id, delay) tuple a process handler produced by
// calling ScheduleTimerAfter; submitted in a batch via Submit.
type Event struct {
	Owner   message.ParticipantId
	TimerId uint64
	After   dtime.Jiffies
}

type entry struct {
	fireAt   dtime.Jiffies
	owner    message.ParticipantId
	timerId  uint64
	sequence uint64
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt != h[j].fireAt {
		return h[i].fireAt < h[j].fireAt
	}
	return h[i].sequence < h[j].sequence
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TimerManager is the SimulationActor driving timer delivery. It holds every
// pending (fire_time, owner, timer id) tuple in a min-heap ordered by fire
// time, and delivers the earliest one to its owner on each Step.
type TimerManager struct {
	pending entryHeap
	nursery *nursery.Nursery
	now     func() dtime.Jiffies
	hook    actor.ExecutionHook
	logger  logging.Logger
	metrics *metrics.Collectors
	nextSeq uint64
}

// New builds a TimerManager delivering fired timers through n. now reports
// the simulation's current virtual time, used to convert a scheduled delay
// into an absolute fire time at Submit time. SetHook must be called with
// the simulation's execution context before Step is invoked.
func New(n *nursery.Nursery, now func() dtime.Jiffies) *TimerManager {
	return &TimerManager{nursery: n, now: now, logger: logging.Noop{}}
}

// SetHook wires the execution context this actor must activate for a
// timer's owner before delivering it, and drain afterward.
func (m *TimerManager) SetHook(hook actor.ExecutionHook) {
	m.hook = hook
}

// SetLogger overrides the Logger this actor emits debug records through
// whenever a timer is scheduled or fires.
func (m *TimerManager) SetLogger(logger logging.Logger) {
	m.logger = logger
}

// SetMetrics wires the Prometheus collectors this actor increments on every
// fire. A nil collectors is safe and leaves instrumentation disabled.
func (m *TimerManager) SetMetrics(collectors *metrics.Collectors) {
	m.metrics = collectors
}

// Start does nothing: timers only begin existing once a process handler's
// Start (or a later message/timer handler) calls ScheduleTimerAfter.
func (m *TimerManager) Start() {}

// PeekClosest reports the fire time of the earliest pending timer.
func (m *TimerManager) PeekClosest() (dtime.Jiffies, bool) {
	if len(m.pending) == 0 {
		return 0, false
	}
	return m.pending[0].fireAt, true
}

// Step fires the single earliest pending timer, delivering it to its owner.
// It panics if no timer is pending; the scheduler loop never calls Step
// without first confirming PeekClosest reports one.
func (m *TimerManager) Step() {
	if len(m.pending) == 0 {
		panic("timermanager: Step called with no pending timers")
	}
	e := heap.Pop(&m.pending).(entry)
	m.logger.Debugf("timer %d fired for participant %d at jiffy %d", e.timerId, e.owner, e.fireAt)
	m.hook.SetCurrentProcess(e.owner)
	m.nursery.DeliverTimer(e.owner, e.timerId)
	m.hook.Drain()
	m.metrics.TimerFired()
}

// Submit folds a batch of newly-scheduled timer events into the pending
// heap, converting each relative delay into an absolute fire time using the
// current virtual time.
func (m *TimerManager) Submit(events []Event) {
	for _, e := range events {
		m.nextSeq++
		fireAt := m.now() + e.After
		m.logger.Debugf("timer %d scheduled for participant %d at jiffy %d", e.TimerId, e.Owner, fireAt)
		heap.Push(&m.pending, entry{
			fireAt:   fireAt,
			owner:    e.Owner,
			timerId:  e.TimerId,
			sequence: m.nextSeq,
		})
	}
}
