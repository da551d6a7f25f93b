package network

import (
	"container/heap"

	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	dtime "github.com/kshprenger/dscale/time"
)

// Description configures the network actor's per-destination bandwidth
// budget: either unlimited, or bounded to a fixed number of bytes per
// Jiffy that every destination's inbound buffer drains at.
type Description struct {
	unbounded bool
	bytes     int
}

// UnboundedBandwidth configures a network with no bandwidth limit: every
// message is delivered as soon as its latency delay elapses.
func UnboundedBandwidth() Description {
	return Description{unbounded: true}
}

// BoundedBandwidth configures a network where each destination drains its
// inbound buffer at bytesPerJiffy bytes per unit of virtual time.
func BoundedBandwidth(bytesPerJiffy int) Description {
	return Description{bytes: bytesPerJiffy}
}

// bandwidthQueue wraps a latencyQueue with a per-destination serialization
// buffer. A message leaving the latency queue is re-stamped with the
// absolute time its destination's cumulative bandwidth budget allows it to
// finish arriving, then held until that time before being delivered —
// modeling bandwidth contention as FIFO-per-destination queueing.
type bandwidthQueue struct {
	unbounded   bool
	bandwidth   int
	latency     *latencyQueue
	now         func() dtime.Jiffies
	bytesPassed map[message.ParticipantId]int
	buffer      routedHeap
	logger      logging.Logger
}

func newBandwidthQueue(desc Description, latency *latencyQueue, now func() dtime.Jiffies) *bandwidthQueue {
	return &bandwidthQueue{
		unbounded:   desc.unbounded,
		bandwidth:   desc.bytes,
		latency:     latency,
		now:         now,
		bytesPassed: make(map[message.ParticipantId]int),
		logger:      logging.Noop{},
	}
}

func (q *bandwidthQueue) setLogger(logger logging.Logger) {
	q.logger = logger
	q.latency.setLogger(logger)
}

func (q *bandwidthQueue) push(m message.Routed) {
	q.latency.push(m)
}

// pop delivers the next message whose delay (latency, then bandwidth
// serialization) has fully elapsed. Under unbounded bandwidth the latency
// stage's head is delivered directly. Under bounded bandwidth it returns
// ok=false both when the queue is genuinely empty and when this call only
// moved a message from the latency stage into the destination buffer
// without yet being able to deliver it — the caller's next PeekClosest/Step
// correctly reflects the updated state either way.
func (q *bandwidthQueue) pop() (message.Routed, bool) {
	if q.unbounded {
		m, ok := q.latency.pop()
		if ok {
			q.logger.Debugf("message delivered to participant %d at jiffy %d", m.Step.Dest, m.ArrivalTime)
		}
		return m, ok
	}

	closestArriving, hasArriving := q.latency.peek()
	closestSqueezing, hasSqueezing := q.peekBuffer()

	switch {
	case !hasArriving && !hasSqueezing:
		return message.Routed{}, false
	case hasArriving && !hasSqueezing:
		q.moveFromLatencyToBuffer()
		return message.Routed{}, false
	case !hasArriving && hasSqueezing:
		return q.deliverFromBuffer(), true
	default:
		if closestArriving.ArrivalTime <= closestSqueezing.ArrivalTime {
			q.moveFromLatencyToBuffer()
			return message.Routed{}, false
		}
		return q.deliverFromBuffer(), true
	}
}

// peekClosest reports the earliest time either stage would next yield a
// message, for the enclosing actor's PeekClosest.
func (q *bandwidthQueue) peekClosest() (dtime.Jiffies, bool) {
	closestArriving, hasArriving := q.latency.peek()
	closestSqueezing, hasSqueezing := q.peekBuffer()

	switch {
	case !hasArriving && !hasSqueezing:
		return 0, false
	case hasArriving && !hasSqueezing:
		return closestArriving.ArrivalTime, true
	case !hasArriving && hasSqueezing:
		return closestSqueezing.ArrivalTime, true
	default:
		if closestArriving.ArrivalTime <= closestSqueezing.ArrivalTime {
			return closestArriving.ArrivalTime, true
		}
		return closestSqueezing.ArrivalTime, true
	}
}

func (q *bandwidthQueue) peekBuffer() (message.Routed, bool) {
	if len(q.buffer) == 0 {
		return message.Routed{}, false
	}
	return q.buffer[0], true
}

// moveFromLatencyToBuffer transfers the earliest latency-stage message into
// the destination buffer, re-stamping its arrival time if the destination's
// bandwidth budget hasn't caught up with the bytes already passed to it.
// newTotal is the cumulative bytes the destination will have received once
// this message is delivered: the bytes already passed, plus those of every
// message still buffered for the same destination ahead of it, plus its
// own. The re-stamp only applies — as an absolute
// ceil(newTotal/bandwidth), never an addition — when that total would
// outrun what B bytes/Jiffy could have delivered by now. bytesPassed is
// otherwise untouched here: it only advances in deliverFromBuffer, so it
// stays monotonically nondecreasing regardless of how re-stamping unfolds.
func (q *bandwidthQueue) moveFromLatencyToBuffer() {
	m, ok := q.latency.pop()
	if !ok {
		panic("network: bandwidth queue expected a message in the latency stage")
	}

	if !q.unbounded {
		dest := m.Step.Dest
		newTotal := q.bytesPassed[dest] + m.Step.Msg.VirtualSize()
		for _, queued := range q.buffer {
			if queued.Step.Dest == dest {
				newTotal += queued.Step.Msg.VirtualSize()
			}
		}
		if newTotal > int(q.now())*q.bandwidth {
			m.ArrivalTime = dtime.Jiffies(ceilDiv(newTotal, q.bandwidth))
			q.logger.Debugf("message to participant %d re-stamped for bandwidth, arrival now %d", dest, m.ArrivalTime)
		}
	}

	heap.Push(&q.buffer, m)
}

func (q *bandwidthQueue) deliverFromBuffer() message.Routed {
	m := heap.Pop(&q.buffer).(message.Routed)
	if !q.unbounded {
		q.bytesPassed[m.Step.Dest] += m.Step.Msg.VirtualSize()
	}
	q.logger.Debugf("message delivered to participant %d at jiffy %d", m.Step.Dest, m.ArrivalTime)
	return m
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
