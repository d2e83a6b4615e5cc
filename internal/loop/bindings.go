package loop

// Bindings connect a Controller to the outside process. Every slot is
// optional: a nil slot means that quantity is managed exclusively through
// the explicit setters.
//
// Read slots should be side-effect-free beyond touching the system being
// read. WriteOutput may have arbitrary external effects. Errors returned
// by any slot are contained by Tick: the cycle is counted as missed and
// the controller stays usable.
type Bindings struct {
	// ReadSetpoint samples the target value at loop time t.
	ReadSetpoint func(t float64) (float64, error)
	// ReadProcess samples the measured value of the controlled quantity.
	ReadProcess func() (float64, error)
	// WriteOutput applies the computed output to the actuator.
	WriteOutput func(v float64) error
}
