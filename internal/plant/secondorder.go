package plant

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SecondOrder is a mass-spring-damper driven by the loop output:
// m*x'' = u - c*x' - k*x. Measured value is the position.
type SecondOrder struct {
	Mass      float64
	Stiffness float64
	Damping   float64

	pos, vel   float64
	pos0, vel0 float64
}

func NewSecondOrder() *SecondOrder {
	return &SecondOrder{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

// SetInitial fixes the state Reset returns to.
func (p *SecondOrder) SetInitial(pos, vel float64) {
	p.pos, p.vel = pos, vel
	p.pos0, p.vel0 = pos, vel
}

// Step advances by dt with semi-implicit Euler, which keeps the
// oscillator from gaining energy at demo step sizes.
func (p *SecondOrder) Step(u, dt float64) {
	acc := (u - p.Damping*p.vel - p.Stiffness*p.pos) / p.Mass
	p.vel += acc * dt
	p.pos += p.vel * dt
}

func (p *SecondOrder) Value() float64 { return p.pos }

func (p *SecondOrder) Reset() {
	p.pos, p.vel = p.pos0, p.vel0
}

// Velocity returns the current speed of the mass.
func (p *SecondOrder) Velocity() float64 { return p.vel }

// Energy returns kinetic plus spring potential energy.
func (p *SecondOrder) Energy() float64 {
	return 0.5*p.Mass*p.vel*p.vel + 0.5*p.Stiffness*p.pos*p.pos
}
