package law

// Relay is a bang-bang law with hysteresis. The output switches to the
// upper bound when the error exceeds +Band, to the lower bound below
// -Band, and holds its previous level inside the band.
type Relay struct {
	Band float64

	lo, hi float64
	on     bool
}

// NewRelay returns a relay switching between lo and hi with the given
// hysteresis half-width.
func NewRelay(lo, hi, band float64) *Relay {
	return &Relay{Band: band, lo: lo, hi: hi}
}

func (r *Relay) Evaluate(setpoint, process, feedforward float64) float64 {
	e := setpoint - process
	switch {
	case e > r.Band:
		r.on = true
	case e < -r.Band:
		r.on = false
	}
	if r.on {
		return r.hi
	}
	return r.lo
}

// Reset drops the relay to its lower level.
func (r *Relay) Reset() {
	r.on = false
}

func (r *Relay) OutputBounds() (lo, hi float64) {
	return r.lo, r.hi
}
