package law

import "math"

// Static always outputs the same value plus any feedforward. Useful for
// open-loop runs and as a stand-in law in tests.
type Static struct {
	Out float64
}

func NewStatic(out float64) *Static {
	return &Static{Out: out}
}

func (s *Static) Evaluate(setpoint, process, feedforward float64) float64 {
	return s.Out + feedforward
}

func (s *Static) Reset() {}

func (s *Static) OutputBounds() (lo, hi float64) {
	return math.Inf(-1), math.Inf(1)
}
