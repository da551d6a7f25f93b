// Package metrics implements the engine-internal Prometheus instrumentation
// that makes a running Simulation observable: messages delivered, timers
// fired, and deadlock occurrences. This is distinct from, and does not
// implement, any user-facing metrics store for simulated protocol code.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the counters a Simulation updates as it runs. A nil
// *Collectors is valid and every method becomes a no-op, so instrumentation
// is entirely optional.
type Collectors struct {
	registry        *prometheus.Registry
	messagesRouted  prometheus.Counter
	timersFired     prometheus.Counter
	deadlocks       prometheus.Counter
	stepsDispatched prometheus.Counter
}

// New builds a Collectors registered on a fresh prometheus.Registry the
// caller may expose over HTTP with promhttp if desired; the engine itself
// never listens on a socket.
func New() *Collectors {
	registry := prometheus.NewRegistry()

	c := &Collectors{
		registry: registry,
		messagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dscale",
			Name:      "messages_routed_total",
			Help:      "Total number of messages delivered to a process handler.",
		}),
		timersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dscale",
			Name:      "timers_fired_total",
			Help:      "Total number of timers delivered to a process handler.",
		}),
		deadlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dscale",
			Name:      "deadlocks_total",
			Help:      "Total number of times the scheduler found no actor with a pending event.",
		}),
		stepsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dscale",
			Name:      "steps_dispatched_total",
			Help:      "Total number of scheduler steps dispatched, across all actors.",
		}),
	}

	registry.MustRegister(c.messagesRouted, c.timersFired, c.deadlocks, c.stepsDispatched)
	return c
}

// Registry returns the underlying prometheus.Registry, for a caller that
// wants to expose it over HTTP via promhttp.HandlerFor.
func (c *Collectors) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// MessageRouted increments the delivered-message counter.
func (c *Collectors) MessageRouted() {
	if c == nil {
		return
	}
	c.messagesRouted.Inc()
}

// TimerFired increments the fired-timer counter.
func (c *Collectors) TimerFired() {
	if c == nil {
		return
	}
	c.timersFired.Inc()
}

// Deadlock increments the deadlock counter.
func (c *Collectors) Deadlock() {
	if c == nil {
		return
	}
	c.deadlocks.Inc()
}

// StepDispatched increments the dispatched-step counter.
func (c *Collectors) StepDispatched() {
	if c == nil {
		return
	}
	c.stepsDispatched.Inc()
}
