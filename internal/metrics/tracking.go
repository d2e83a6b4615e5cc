package metrics

import "math"

// IAE is the integral of absolute tracking error.
type IAE struct {
	name  string
	sum   float64
	prevT float64
	first bool
}

func NewIAE() *IAE {
	return &IAE{name: "iae", first: true}
}

func (m *IAE) Name() string { return m.name }

func (m *IAE) Observe(setpoint, process, output, t float64) {
	if m.first {
		m.prevT = t
		m.first = false
		return
	}
	dt := t - m.prevT
	m.sum += math.Abs(setpoint-process) * dt
	m.prevT = t
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Reset() {
	m.sum = 0
	m.first = true
}

// ISE is the integral of squared tracking error. Punishes large
// excursions harder than IAE.
type ISE struct {
	name  string
	sum   float64
	prevT float64
	first bool
}

func NewISE() *ISE {
	return &ISE{name: "ise", first: true}
}

func (m *ISE) Name() string { return m.name }

func (m *ISE) Observe(setpoint, process, output, t float64) {
	if m.first {
		m.prevT = t
		m.first = false
		return
	}
	dt := t - m.prevT
	e := setpoint - process
	m.sum += e * e * dt
	m.prevT = t
}

func (m *ISE) Value() float64 { return m.sum }

func (m *ISE) Reset() {
	m.sum = 0
	m.first = true
}

// ControlEffort is the mean absolute loop output.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (m *ControlEffort) Name() string { return m.name }

func (m *ControlEffort) Observe(setpoint, process, output, t float64) {
	if math.IsNaN(output) {
		return
	}
	m.sum += math.Abs(output)
	m.samples++
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}

// SettlingTime reports the last time the error left the band
// |e| <= Band. Zero if the run never left the band.
type SettlingTime struct {
	name string
	Band float64
	last float64
}

// NewSettlingTime builds the metric for the band |e| <= |band|.
func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{name: "settling_time", Band: math.Abs(band)}
}

func (m *SettlingTime) Name() string { return m.name }

func (m *SettlingTime) Observe(setpoint, process, output, t float64) {
	if math.Abs(setpoint-process) > m.Band {
		m.last = t
	}
}

func (m *SettlingTime) Value() float64 { return m.last }

func (m *SettlingTime) Reset() { m.last = 0 }
