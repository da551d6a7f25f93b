// Package simulation assembles a topology, nursery, network actor and timer
// manager into a single runnable Simulation, and drives its scheduler loop:
// repeatedly find the actor with the nearest pending event, fast-forward the
// virtual clock to it, and let that actor dispatch exactly one event.
package simulation

import (
	"os"

	"github.com/kshprenger/dscale/access"
	"github.com/kshprenger/dscale/internal/actor"
	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/metrics"
	"github.com/kshprenger/dscale/network"
	"github.com/kshprenger/dscale/nursery"
	"github.com/kshprenger/dscale/progress"
	"github.com/kshprenger/dscale/random"
	dtime "github.com/kshprenger/dscale/time"
	"github.com/kshprenger/dscale/timermanager"
	"github.com/kshprenger/dscale/topology"
)

// Simulation is a fully wired, ready-to-run scenario: a network actor and a
// timer manager, both driving the same nursery of registered process
// handlers, sharing one virtual clock. Built exclusively through
// SimulationBuilder.
type Simulation struct {
	actors     []actor.SimulationActor
	clock      *dtime.Clock
	ids        *dtime.IDSource
	ctx        *access.Context
	timeBudget dtime.Jiffies
	bar        *progress.Bar
	logger     logging.Logger
	metrics    *metrics.Collectors
}

func newSimulation(
	seed random.Seed,
	timeBudget dtime.Jiffies,
	bandwidth network.Description,
	poolListing map[string][]message.ParticipantId,
	latency []topology.LatencyDescription,
	procs map[message.ParticipantId]nursery.ProcessHandle,
	hidden bool,
	logger logging.Logger,
	metricsEnabled bool,
) *Simulation {
	topo := topology.New(poolListing, seed, latency)
	nrs := nursery.New(procs)

	var clock dtime.Clock
	ids := &dtime.IDSource{}
	now := clock.Now

	net := network.New(seed, bandwidth, topo, nrs, now)
	timers := timermanager.New(nrs, now)

	ctx := access.New(topo, random.New(seed), ids, now, net, timers)
	net.SetHook(ctx)
	timers.SetHook(ctx)
	access.Setup(ctx)

	net.SetLogger(logger)
	timers.SetLogger(logger)

	var collectors *metrics.Collectors
	if metricsEnabled {
		collectors = metrics.New()
	}
	net.SetMetrics(collectors)
	timers.SetMetrics(collectors)

	return &Simulation{
		actors:     []actor.SimulationActor{net, timers},
		clock:      &clock,
		ids:        ids,
		ctx:        ctx,
		timeBudget: timeBudget,
		bar:        progress.New(timeBudget, hidden),
		logger:     logger,
		metrics:    collectors,
	}
}

// Metrics returns the Prometheus collectors registered for this run, or nil
// if the builder did not enable metrics.
func (s *Simulation) Metrics() *metrics.Collectors {
	return s.metrics
}

// Run drives the scheduler to completion: every registered process's Start
// runs once, then the loop repeatedly dispatches the nearest pending event
// until the virtual clock reaches the configured time budget. A deadlock —
// no actor has a future event before the budget is exhausted — is reported
// and terminates the process with a non-success exit code, matching the
// diagnostic-then-abort contract spec'd for this condition.
func (s *Simulation) Run() {
	defer func() {
		if r := recover(); r != nil {
			if cv, ok := r.(ContractViolation); ok {
				if s.metrics != nil {
					s.metrics.Deadlock()
				}
				s.logger.Errorf("deadlock: %s", cv.Reason)
				access.Teardown()
				os.Exit(1)
			}
			panic(r)
		}
	}()

	s.start()
	for s.clock.Now() < s.timeBudget {
		s.step()
	}
	s.bar.Finish()
	s.logger.Infof("simulation complete at jiffy %s", s.clock.Now())
}

// Reset tears down the process-wide execution context this Simulation
// installed, so a subsequent SimulationBuilder.Build call in the same
// process starts from a clean slate.
func (s *Simulation) Reset() {
	access.Teardown()
}

func (s *Simulation) start() {
	for _, a := range s.actors {
		a.Start()
	}
}

func (s *Simulation) step() {
	future, which, ok := s.peekClosest()
	if !ok {
		violate("no actor has a pending event, but the time budget is not yet exhausted")
	}
	s.clock.FastForward(future)
	s.logger.Debugf("clock advanced to jiffy %d", future)
	which.Step()
	if s.metrics != nil {
		s.metrics.StepDispatched()
	}
	s.bar.MakeProgress(minJiffies(future, s.timeBudget))
}

func (s *Simulation) peekClosest() (dtime.Jiffies, actor.SimulationActor, bool) {
	var (
		min   dtime.Jiffies
		which actor.SimulationActor
		found bool
	)
	for _, a := range s.actors {
		t, ok := a.PeekClosest()
		if !ok {
			continue
		}
		if !found || t < min {
			min = t
			which = a
			found = true
		}
	}
	return min, which, found
}

func minJiffies(a, b dtime.Jiffies) dtime.Jiffies {
	if a < b {
		return a
	}
	return b
}
