package time

// IDSource is a process-wide monotone counter producing distinct nonzero
// integers, used for TimerId and any other identifier the core needs to be
// unique within a run (spec §4.2). The zero value is ready to use.
type IDSource struct {
	next uint64
}

// Next returns the next distinct, nonzero value from the source.
func (s *IDSource) Next() uint64 {
	s.next++
	return s.next
}

// Reset returns the source to its initial state, supporting repeated
// simulation runs within the same process.
func (s *IDSource) Reset() {
	s.next = 0
}
