// Package nursery owns the registered process handlers of a simulation and
// dispatches both inbound network messages and fired timers to them in
// deterministic, id-ordered iteration.
package nursery

import (
	"fmt"
	"sort"

	"github.com/kshprenger/dscale/message"
)

// Nursery holds every registered ProcessHandle, keyed by ParticipantId, and
// a sorted id slice kept alongside the map so iteration order never depends
// on Go's randomized map iteration — the deterministic analogue of iterating
// a BTreeMap by key.
type Nursery struct {
	procs     map[message.ParticipantId]ProcessHandle
	sortedIds []message.ParticipantId
}

// New builds a Nursery from a fully-assembled id-to-handler map.
func New(procs map[message.ParticipantId]ProcessHandle) *Nursery {
	ids := make([]message.ParticipantId, 0, len(procs))
	for id := range procs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &Nursery{procs: procs, sortedIds: ids}
}

func (n *Nursery) mustGet(id message.ParticipantId) ProcessHandle {
	h, ok := n.procs[id]
	if !ok {
		panic(fmt.Sprintf("nursery: no process registered with id %d", id))
	}
	return h
}

// StartSingle invokes Start on the handler registered for id.
func (n *Nursery) StartSingle(id message.ParticipantId) {
	n.mustGet(id).Start()
}

// DeliverMessage invokes OnMessage on the handler registered for to, passing
// from as the sender.
func (n *Nursery) DeliverMessage(from, to message.ParticipantId, msg message.Ptr) {
	n.mustGet(to).OnMessage(from, msg)
}

// DeliverTimer invokes OnTimer on the handler registered for id, the
// process that scheduled the timer.
func (n *Nursery) DeliverTimer(id message.ParticipantId, timerId uint64) {
	n.mustGet(id).OnTimer(timerId)
}

// Keys returns the registered participant ids in ascending, deterministic
// order.
func (n *Nursery) Keys() []message.ParticipantId {
	return n.sortedIds
}

// Size returns the number of registered processes.
func (n *Nursery) Size() int {
	return len(n.procs)
}
