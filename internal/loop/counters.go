package loop

// Stats counts control cycles. Both counters only grow between resets.
type Stats struct {
	// Updates is the number of successfully completed cycles.
	Updates uint64
	// Missed is the number of due cycles that failed to complete.
	Missed uint64
}

// Reset zeroes both counters together.
func (s *Stats) Reset() {
	*s = Stats{}
}
