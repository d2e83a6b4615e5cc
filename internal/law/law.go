package law

// Law maps one sample of the loop inputs to an actuator output. The loop
// calls Evaluate once per cycle and Reset in lock-step with its own reset.
//
// OutputBounds reports the actuator range the law was tuned for. The
// bounds are advisory: the loop reads them through for downstream
// consumers and never clamps against them itself.
type Law interface {
	Evaluate(setpoint, process, feedforward float64) float64
	Reset()
	OutputBounds() (lo, hi float64)
}

// Sampled is implemented by laws whose internal state assumes a fixed
// sample period. The loop refuses construction when the law's period does
// not match its own.
type Sampled interface {
	Period() float64
}

// Tunable is implemented by laws that support live parameter adjustment.
type Tunable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}
