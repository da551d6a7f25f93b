// Package versioncheck implements the scenario/schema compatibility gate a
// SimulationBuilder consults before build: a scenario's declared schema
// version is checked against the engine's supported range, generalizing the
// teacher's RPC protocol-version header check to simulation configuration.
package versioncheck

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// MinSupported is the oldest schema version this engine build accepts from
// a scenario. Bumped only on a breaking SimulationBuilder configuration
// change.
const MinSupported = "1.0.0"

// Check parses schemaVersion and verifies it falls within the engine's
// supported range, returning an error describing the mismatch if not. An
// unparsable version string is itself a mismatch.
func Check(schemaVersion string) error {
	v, err := version.NewVersion(schemaVersion)
	if err != nil {
		return fmt.Errorf("versioncheck: %q is not a valid semantic version: %w", schemaVersion, err)
	}

	min, err := version.NewVersion(MinSupported)
	if err != nil {
		return fmt.Errorf("versioncheck: invalid engine minimum %q: %w", MinSupported, err)
	}

	maxConstraint, err := version.NewConstraint("< 2.0.0")
	if err != nil {
		return fmt.Errorf("versioncheck: invalid engine constraint: %w", err)
	}

	if v.LessThan(min) {
		return fmt.Errorf("versioncheck: scenario schema version %s is older than the minimum supported %s", v, min)
	}
	if !maxConstraint.Check(v) {
		return fmt.Errorf("versioncheck: scenario schema version %s is not satisfied by constraint %s", v, maxConstraint)
	}
	return nil
}
