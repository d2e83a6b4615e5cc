// Package plant provides small process models the loop can be closed
// against in demos and tests.
package plant

// Plant is a controllable process advanced in fixed steps. Value returns
// the measured quantity the loop regulates.
type Plant interface {
	Step(u, dt float64)
	Value() float64
	Reset()
}
