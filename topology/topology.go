// Package topology holds the immutable pool membership and pairwise latency
// configuration of a simulation, assembled once by the builder and never
// mutated after a run starts.
package topology

import (
	"fmt"
	"sort"

	"github.com/kshprenger/dscale/message"
	"github.com/kshprenger/dscale/random"
)

// GlobalPool is the reserved pool name denoting every participant in the
// simulation, in insertion order. New populates it automatically; no caller
// may register a pool under this name.
const GlobalPool = "*"

type pairKey struct {
	from message.ParticipantId
	to   message.ParticipantId
}

// LatencyDescription configures the latency distribution applied either to
// every ordered pair of participants within one pool, or to every ordered
// pair between two distinct pools (in both directions).
type LatencyDescription struct {
	withinPool string
	fromPool   string
	toPool     string
	distr      random.Distribution
	isWithin   bool
}

// WithinPool builds a LatencyDescription applying distr to every ordered
// pair of participants registered in pool, including self-pairs.
func WithinPool(pool string, distr random.Distribution) LatencyDescription {
	return LatencyDescription{withinPool: pool, distr: distr, isWithin: true}
}

// BetweenPools builds a LatencyDescription applying distr to every ordered
// pair with one participant in fromPool and the other in toPool, in both
// directions.
func BetweenPools(fromPool, toPool string, distr random.Distribution) LatencyDescription {
	return LatencyDescription{fromPool: fromPool, toPool: toPool, distr: distr, isWithin: false}
}

// Topology is the immutable, fully-resolved pool listing and latency map a
// Simulation consults for every send. It is constructed once by the builder
// cartesian-expanding each LatencyDescription and never mutated afterward.
type Topology struct {
	poolListing     map[string][]message.ParticipantId
	latencyTopology map[pairKey]random.Distribution
	participantRnd  map[message.ParticipantId]*random.Randomizer
}

// New assembles a Topology from a resolved pool listing, a base seed, and a
// set of latency descriptions, expanding each description into every
// ordered pair of participant ids it covers (including the reverse
// direction for BetweenPools, and self-pairs for WithinPool), the same
// cartesian-product wiring the builder performs before a run starts.
//
// New also derives one Randomizer per registered participant from baseSeed,
// salted by the participant's own id, so a handler drawing participant-local
// randomness never shares a sequence with another participant's draws
// (mirroring the per-participant seed derivation "to prevent resonance
// between participants" sharing one global seed).
func New(poolListing map[string][]message.ParticipantId, baseSeed random.Seed, descriptions []LatencyDescription) *Topology {
	t := &Topology{
		poolListing:     poolListing,
		latencyTopology: make(map[pairKey]random.Distribution),
		participantRnd:  make(map[message.ParticipantId]*random.Randomizer),
	}

	all := t.AllParticipants()
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	t.poolListing[GlobalPool] = all

	for _, id := range all {
		t.participantRnd[id] = random.New(baseSeed + random.Seed(id))
	}

	for _, d := range descriptions {
		var fromIds, toIds []message.ParticipantId
		if d.isWithin {
			fromIds = t.mustPool(d.withinPool)
			toIds = fromIds
		} else {
			fromIds = t.mustPool(d.fromPool)
			toIds = t.mustPool(d.toPool)
		}

		for _, from := range fromIds {
			for _, to := range toIds {
				t.latencyTopology[pairKey{from, to}] = d.distr
				t.latencyTopology[pairKey{to, from}] = d.distr
			}
		}
	}

	return t
}

func (t *Topology) mustPool(name string) []message.ParticipantId {
	ids, ok := t.poolListing[name]
	if !ok {
		panic(fmt.Sprintf("topology: no pool named %q", name))
	}
	return ids
}

// Distribution returns the configured latency distribution for messages
// traveling from one participant to another. It panics if no distribution
// was configured for the pair, meaning the topology was built incompletely.
func (t *Topology) Distribution(from, to message.ParticipantId) random.Distribution {
	d, ok := t.latencyTopology[pairKey{from, to}]
	if !ok {
		panic(fmt.Sprintf("topology: no latency distribution configured for pair (%d, %d)", from, to))
	}
	return d
}

// ListPool returns the participant ids registered in the named pool. It
// panics if the pool name is unknown.
func (t *Topology) ListPool(name string) []message.ParticipantId {
	ids, ok := t.poolListing[name]
	if !ok {
		panic(fmt.Sprintf("topology: no pool named %q", name))
	}
	return ids
}

// RandomizerFor returns the Randomizer derived for the given participant at
// construction time. It panics if the id is not registered in any pool.
func (t *Topology) RandomizerFor(id message.ParticipantId) *random.Randomizer {
	r, ok := t.participantRnd[id]
	if !ok {
		panic(fmt.Sprintf("topology: no participant registered with id %d", id))
	}
	return r
}

// AllParticipants returns the ids of every participant registered in any
// pool; New uses it to populate GlobalPool. The order is unspecified;
// callers that need determinism should sort the result.
func (t *Topology) AllParticipants() []message.ParticipantId {
	seen := make(map[message.ParticipantId]bool)
	var all []message.ParticipantId
	for _, ids := range t.poolListing {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
			}
		}
	}
	return all
}
