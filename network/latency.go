// Package network implements the two-stage network actor: a latency queue
// that samples a random propagation delay per message, feeding a bandwidth
// queue that serializes messages per destination against a configured
// bytes-per-jiffy budget.
package network

import (
	"container/heap"

	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/random"
	"github.com/kshprenger/dscale/topology"
)

type routedHeap []message.Routed

func (h routedHeap) Len() int            { return len(h) }
func (h routedHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h routedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *routedHeap) Push(x interface{}) { *h = append(*h, x.(message.Routed)) }
func (h *routedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// latencyQueue samples an additional, randomized propagation delay for every
// message pushed to it, keyed by the configured (source, destination)
// latency distribution, and yields messages back out in arrival-time order.
type latencyQueue struct {
	topology   *topology.Topology
	randomizer *random.Randomizer
	queue      routedHeap
	logger     logging.Logger
}

func newLatencyQueue(randomizer *random.Randomizer, topo *topology.Topology) *latencyQueue {
	return &latencyQueue{topology: topo, randomizer: randomizer, logger: logging.Noop{}}
}

func (q *latencyQueue) setLogger(logger logging.Logger) {
	q.logger = logger
}

func (q *latencyQueue) push(m message.Routed) {
	distr := q.topology.Distribution(m.Step.Source, m.Step.Dest)
	m.ArrivalTime += q.randomizer.Sample(distr)
	heap.Push(&q.queue, m)
	q.logger.Debugf("message from %d to %d queued, arrival %d", m.Step.Source, m.Step.Dest, m.ArrivalTime)
}

func (q *latencyQueue) pop() (message.Routed, bool) {
	if len(q.queue) == 0 {
		return message.Routed{}, false
	}
	return heap.Pop(&q.queue).(message.Routed), true
}

func (q *latencyQueue) peek() (message.Routed, bool) {
	if len(q.queue) == 0 {
		return message.Routed{}, false
	}
	return q.queue[0], true
}
