package simulation

import (
	"testing"

	"github.com/kshprenger/dscale/logging"
	"github.com/kshprenger/dscale/nursery"
	"github.com/kshprenger/dscale/topology"
	"github.com/kshprenger/dscale/versioncheck"
)

func TestSimulationBuilder_AddPoolAssignsSequentialIdsAcrossPools(t *testing.T) {
	b := NewBuilder()
	b.AddPool("a", 2, func() nursery.ProcessHandle { return neverStartingHandle{} })
	b.AddPool("b", 1, func() nursery.ProcessHandle { return neverStartingHandle{} })

	if got := b.pools["a"]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected pool a = [1 2], got %v", got)
	}
	if got := b.pools["b"]; len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected pool b = [3], got %v", got)
	}
}

func TestSimulationBuilder_WithLoggerOverridesDefault(t *testing.T) {
	sim := NewBuilder().
		WithLogger(logging.Noop{}).
		AddPool("a", 1, func() nursery.ProcessHandle { return neverStartingHandle{} }).
		Build()
	defer sim.Reset()

	if _, ok := sim.logger.(logging.Noop); !ok {
		t.Fatalf("expected Noop logger to be wired through, got %T", sim.logger)
	}
}

func TestSimulationBuilder_AddPoolPanicsOnReservedGlobalPoolName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering a pool under the reserved GLOBAL_POOL name")
		}
	}()
	NewBuilder().AddPool(topology.GlobalPool, 1, func() nursery.ProcessHandle { return neverStartingHandle{} })
}

func TestSimulationBuilder_SchemaVersionDefaultsToSupportedMinimum(t *testing.T) {
	b := NewBuilder()
	if b.schemaVersion != versioncheck.MinSupported {
		t.Fatalf("expected default schema version %q, got %q", versioncheck.MinSupported, b.schemaVersion)
	}
}
