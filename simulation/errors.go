package simulation

import "fmt"

// ContractViolation is the panic value raised by this package for fatal,
// non-recoverable programming errors: an unsupported schema version, a
// build with no participants, a pool registered under the reserved
// GlobalPool name, a deadlocked run. Fatal conditions detected in other
// packages (an unknown pool or missing latency pair in topology, an unknown
// participant in nursery, a clock rewind, an access call outside a
// simulation) panic with a plain string message instead. It is always a
// programming error in the scenario configuration or process handlers,
// never a condition a well-formed scenario can trigger, so the engine
// aborts loudly instead of returning an error a caller might ignore.
type ContractViolation struct {
	Reason string
}

func (e ContractViolation) Error() string {
	return fmt.Sprintf("simulation: contract violation: %s", e.Reason)
}

func violate(format string, args ...interface{}) {
	panic(ContractViolation{Reason: fmt.Sprintf(format, args...)})
}
