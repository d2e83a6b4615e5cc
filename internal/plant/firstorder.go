package plant

import "math"

const (
	DefaultGain = 1.0
	DefaultTau  = 1.0
)

// FirstOrder is a first-order lag: tau*dy/dt = gain*u - y. The workhorse
// approximation for thermal and flow processes.
type FirstOrder struct {
	Gain float64
	Tau  float64

	y  float64
	y0 float64
}

func NewFirstOrder() *FirstOrder {
	return &FirstOrder{Gain: DefaultGain, Tau: DefaultTau}
}

// SetInitial fixes the value Reset returns to.
func (p *FirstOrder) SetInitial(y float64) {
	p.y = y
	p.y0 = y
}

// Step advances the process by dt under constant input u, using the
// exact discretization of the lag so large steps stay stable.
func (p *FirstOrder) Step(u, dt float64) {
	a := 1 - math.Exp(-dt/p.Tau)
	p.y += (p.Gain*u - p.y) * a
}

func (p *FirstOrder) Value() float64 { return p.y }

func (p *FirstOrder) Reset() { p.y = p.y0 }
