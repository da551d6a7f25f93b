package simulation

import (
	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/network"
	"github.com/kshprenger/dscale/nursery"
	"github.com/kshprenger/dscale/random"
	dtime "github.com/kshprenger/dscale/time"
	"github.com/kshprenger/dscale/topology"
	"github.com/kshprenger/dscale/versioncheck"
)

// defaultSeed, defaultTimeBudget and defaultSchemaVersion are the builder's
// out-of-the-box scenario configuration, carried over unchanged from the
// original implementation's Default impl.
const (
	defaultSeed          random.Seed   = 69
	defaultTimeBudget    dtime.Jiffies = 1_000_000
	defaultSchemaVersion string        = versioncheck.MinSupported
)

// SimulationBuilder assembles a runnable Simulation from pools of process
// handlers, a latency topology, and a bandwidth budget. Every setter returns
// the builder itself so calls chain; Build consumes the builder and
// produces an immutable *Simulation.
//
// AddPool and LatencyTopology may be called in any order: latency
// descriptions are resolved at Build against every pool registered by then.
type SimulationBuilder struct {
	seed          random.Seed
	timeBudget    dtime.Jiffies
	schemaVersion string
	nextId        message.ParticipantId
	pools         map[string][]message.ParticipantId
	procs         map[message.ParticipantId]nursery.ProcessHandle
	latency       []topology.LatencyDescription
	bandwidth     network.Description
	hidden        bool
	logger        logging.Logger
	metrics       bool
}

// NewBuilder returns a SimulationBuilder seeded with the same defaults as
// the original implementation: seed 69, a time budget of one million
// Jiffies, unbounded bandwidth, and no pools.
func NewBuilder() *SimulationBuilder {
	return &SimulationBuilder{
		seed:          defaultSeed,
		timeBudget:    defaultTimeBudget,
		schemaVersion: defaultSchemaVersion,
		nextId:        1,
		pools:         make(map[string][]message.ParticipantId),
		procs:         make(map[message.ParticipantId]nursery.ProcessHandle),
		bandwidth:     network.UnboundedBandwidth(),
		logger:        logging.NewDefaultLogger(false),
	}
}

// Seed overrides the master seed used to derive the engine's shared
// Randomizer and every participant's per-process Randomizer.
func (b *SimulationBuilder) Seed(seed random.Seed) *SimulationBuilder {
	b.seed = seed
	return b
}

// TimeBudget overrides how many Jiffies the scheduler runs for before Run
// returns.
func (b *SimulationBuilder) TimeBudget(budget dtime.Jiffies) *SimulationBuilder {
	b.timeBudget = budget
	return b
}

// SchemaVersion declares the scenario's own semantic version, checked
// against the engine's supported range at Build time.
func (b *SimulationBuilder) SchemaVersion(version string) *SimulationBuilder {
	b.schemaVersion = version
	return b
}

// NICBandwidth overrides the per-destination bandwidth budget the network
// actor serializes sends against. Defaults to unbounded.
func (b *SimulationBuilder) NICBandwidth(bandwidth network.Description) *SimulationBuilder {
	b.bandwidth = bandwidth
	return b
}

// HiddenProgress suppresses the progress bar's rendering while still
// accepting ticks, useful for tests and non-interactive runs.
func (b *SimulationBuilder) HiddenProgress() *SimulationBuilder {
	b.hidden = true
	return b
}

// WithLogger overrides the Logger used for scheduler diagnostics. Defaults
// to a logrus-backed DefaultLogger at Info level.
func (b *SimulationBuilder) WithLogger(logger logging.Logger) *SimulationBuilder {
	b.logger = logger
	return b
}

// WithMetrics enables engine-internal Prometheus instrumentation,
// retrievable afterward via Simulation.Metrics.
func (b *SimulationBuilder) WithMetrics() *SimulationBuilder {
	b.metrics = true
	return b
}

// AddPool registers size participants under the given pool name, each built
// by calling factory once per participant, and returns the ids assigned so
// a caller can correlate them with application-level identities if needed.
// Participant ids are assigned sequentially across the whole builder
// starting at 1, matching the original implementation's proc_id counter.
func (b *SimulationBuilder) AddPool(name string, size int, factory func() nursery.ProcessHandle) *SimulationBuilder {
	if name == topology.GlobalPool {
		violate("%q is a reserved pool name populated automatically; AddPool may not register it", topology.GlobalPool)
	}
	for i := 0; i < size; i++ {
		id := b.nextId
		b.nextId++
		b.pools[name] = append(b.pools[name], id)
		b.procs[id] = factory()
	}
	return b
}

// LatencyTopology appends latency descriptions to expand once Build
// resolves them against the pools registered by then; a description naming
// a pool that is still unknown at Build time panics there.
func (b *SimulationBuilder) LatencyTopology(descriptions ...topology.LatencyDescription) *SimulationBuilder {
	b.latency = append(b.latency, descriptions...)
	return b
}

// Build validates the builder's configuration and assembles a Simulation
// ready for Run. It panics with a ContractViolation if the declared schema
// version falls outside the engine's supported range, or if no pools were
// registered at all — a scenario with zero participants can never progress
// and would deadlock on its very first step.
func (b *SimulationBuilder) Build() *Simulation {
	if err := versioncheck.Check(b.schemaVersion); err != nil {
		violate("%s", err)
	}
	if len(b.procs) == 0 {
		violate("no participants registered: call AddPool at least once before Build")
	}

	return newSimulation(
		b.seed,
		b.timeBudget,
		b.bandwidth,
		b.pools,
		b.latency,
		b.procs,
		b.hidden,
		b.logger,
		b.metrics,
	)
}
