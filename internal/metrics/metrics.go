// Package metrics aggregates tracking-quality figures over a closed-loop
// run. Metrics are observed once per plant step by the driver.
package metrics

// Metric accumulates one figure of merit over a run.
type Metric interface {
	Name() string
	Observe(setpoint, process, output, t float64)
	Value() float64
	Reset()
}
