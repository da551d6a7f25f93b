package simulation

import (
	"testing"

	"github.com/kshprenger/dscale/access"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/network"
	"github.com/kshprenger/dscale/nursery"
	"github.com/kshprenger/dscale/random"
	"github.com/kshprenger/dscale/topology"
)

type pingMessage struct{ message.BaseMessage }
type pongMessage struct{ message.BaseMessage }

// pingPonger sends a single ping to "peer" on Start, then replies to every
// Ping with a Pong and to every Pong with a Ping, forever — the unbroken
// exchange described by scenario S1, which keeps the scheduler busy for the
// entire time budget instead of deadlocking after one exchange.
type pingPonger struct {
	peer     message.ParticipantId
	received *[]message.ParticipantId
}

func (p pingPonger) Start() {
	if p.peer != 0 {
		access.SendTo(p.peer, pingMessage{})
	}
}

func (p pingPonger) OnMessage(from message.ParticipantId, msg message.Ptr) {
	*p.received = append(*p.received, from)
	if message.Is[pingMessage](msg) {
		access.SendTo(from, pongMessage{})
	} else {
		access.SendTo(from, pingMessage{})
	}
}

func (p pingPonger) OnTimer(uint64) {}

type neverStartingHandle struct{}

func (neverStartingHandle) Start()                                       {}
func (neverStartingHandle) OnMessage(message.ParticipantId, message.Ptr) {}
func (neverStartingHandle) OnTimer(uint64)                               {}

func TestSimulationBuilder_RunDeliversPingPong(t *testing.T) {
	var received1, received2 []message.ParticipantId

	sim := NewBuilder().
		Seed(7).
		TimeBudget(100).
		HiddenProgress().
		AddPool("a", 1, func() nursery.ProcessHandle { return pingPonger{peer: 2, received: &received1} }).
		AddPool("b", 1, func() nursery.ProcessHandle { return pingPonger{peer: 0, received: &received2} }).
		LatencyTopology(topology.BetweenPools("a", "b", random.UniformDistribution(1, 1))).
		Build()
	defer sim.Reset()

	sim.Run()

	if len(received1) == 0 || len(received2) == 0 {
		t.Fatalf("expected both participants to exchange messages over the time budget, got received1=%v received2=%v", received1, received2)
	}
	diff := len(received1) - len(received2)
	if diff < -1 || diff > 1 {
		t.Fatalf("expected ping-pong counts to differ by at most one, got %d vs %d", len(received1), len(received2))
	}
}

func TestSimulationBuilder_BuildPanicsOnUnsupportedSchemaVersion(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic building with an unsupported schema version")
		}
	}()
	NewBuilder().
		SchemaVersion("0.1.0").
		AddPool("a", 1, func() nursery.ProcessHandle { return neverStartingHandle{} }).
		Build()
}

func TestSimulationBuilder_BuildPanicsWithNoPools(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic building with zero registered participants")
		}
	}()
	NewBuilder().Build()
}

func TestSimulation_StepPanicsOnDeadlock(t *testing.T) {
	sim := NewBuilder().
		Seed(1).
		TimeBudget(10).
		HiddenProgress().
		AddPool("idle", 1, func() nursery.ProcessHandle { return neverStartingHandle{} }).
		Build()
	defer sim.Reset()

	sim.start()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a ContractViolation panic on deadlock")
		}
		if _, ok := r.(ContractViolation); !ok {
			t.Fatalf("expected a ContractViolation, got %T: %v", r, r)
		}
	}()
	sim.step()
}

func TestSimulationBuilder_WithMetricsExposesCollectors(t *testing.T) {
	sim := NewBuilder().
		Seed(1).
		TimeBudget(5).
		HiddenProgress().
		WithMetrics().
		AddPool("a", 1, func() nursery.ProcessHandle { return neverStartingHandle{} }).
		Build()
	defer sim.Reset()

	if sim.Metrics() == nil {
		t.Fatal("expected non-nil metrics collectors when WithMetrics is set")
	}
}

func TestSimulationBuilder_NICBandwidthDefaultsToUnbounded(t *testing.T) {
	b := NewBuilder().
		AddPool("a", 1, func() nursery.ProcessHandle { return neverStartingHandle{} })
	if b.bandwidth != network.UnboundedBandwidth() {
		t.Fatal("expected the builder's default bandwidth to be unbounded")
	}
	sim := b.Build()
	defer sim.Reset()

	if _, ok := sim.actors[0].(*network.Network); !ok {
		t.Fatal("expected the first actor to be the network actor")
	}
}
