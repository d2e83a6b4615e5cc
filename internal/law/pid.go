package law

import "math"

// PID is a discrete PID law evaluated at a fixed sample period.
// Derivative acts on the error; the integrator is clamped so its
// contribution alone never exceeds the output bounds.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	period   float64
	lo, hi   float64
	integral float64
	prevErr  float64
	first    bool
}

// NewPID returns an unbounded PID law with the given gains, evaluated
// every period seconds.
func NewPID(kp, ki, kd, period float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		period: period,
		lo:     math.Inf(-1),
		hi:     math.Inf(1),
		first:  true,
	}
}

// SetBounds constrains the output to [lo, hi]. Infinities leave the
// corresponding side unbounded.
func (p *PID) SetBounds(lo, hi float64) {
	p.lo = lo
	p.hi = hi
}

func (p *PID) Evaluate(setpoint, process, feedforward float64) float64 {
	e := setpoint - process

	p.integral += e * p.period
	if p.Ki != 0 {
		// Anti-windup: keep the integral term inside the actuator range.
		if hi := p.hi / p.Ki; !math.IsInf(hi, 0) && p.integral > hi {
			p.integral = hi
		}
		if lo := p.lo / p.Ki; !math.IsInf(lo, 0) && p.integral < lo {
			p.integral = lo
		}
	}

	derivative := 0.0
	if p.first {
		p.first = false
	} else {
		derivative = (e - p.prevErr) / p.period
	}
	p.prevErr = e

	u := feedforward + p.Kp*e + p.Ki*p.integral + p.Kd*derivative
	if u > p.hi {
		u = p.hi
	}
	if u < p.lo {
		u = p.lo
	}
	return u
}

// Reset clears integral and derivative memory.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) OutputBounds() (lo, hi float64) {
	return p.lo, p.hi
}

// Period returns the sample period the gains were tuned for.
func (p *PID) Period() float64 {
	return p.period
}

// GetParams returns tunable parameters for live adjustment.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a gain by name; unknown names are ignored.
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
