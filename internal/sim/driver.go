// Package sim closes a control loop over a plant model and drives both
// with a fixed-step clock. It is the owning simulation the loop expects:
// one goroutine, monotone time, one Tick per step.
package sim

import (
	"context"
	"fmt"

	"regloop/internal/loop"
	"regloop/internal/metrics"
	"regloop/internal/plant"
)

// Config controls one run.
type Config struct {
	// Dt is the plant integration step. Usually a fraction of the loop's
	// sample period.
	Dt float64
	// Duration is the simulated run length.
	Duration float64
	// Setpoint optionally schedules the target over time. When set it is
	// installed as the loop's setpoint binding.
	Setpoint func(t float64) (float64, error)
}

// Result summarizes a run. The per-cycle recording stays on the
// controller.
type Result struct {
	Steps   int
	Cycles  loop.Stats
	Metrics map[string]float64
}

// Driver steps a plant and ticks a controller in lockstep, holding the
// last applied output between cycles (zero-order hold).
type Driver struct {
	plant     plant.Plant
	ctl       *loop.Controller
	metrics   []metrics.Metric
	observers []func(setpoint, process, output, t float64)

	hold float64
	t    float64
}

func New(p plant.Plant, c *loop.Controller) *Driver {
	return &Driver{plant: p, ctl: c}
}

func (d *Driver) AddMetric(m metrics.Metric) { d.metrics = append(d.metrics, m) }

// OnStep registers a callback invoked after every plant step.
func (d *Driver) OnStep(fn func(setpoint, process, output, t float64)) {
	d.observers = append(d.observers, fn)
}

// Start wires the loop to the plant and rewinds the drive clock to the
// controller's current time. Must be called before Step.
func (d *Driver) Start(setpoint func(t float64) (float64, error)) {
	d.ctl.SetBindings(loop.Bindings{
		ReadSetpoint: setpoint,
		ReadProcess:  func() (float64, error) { return d.plant.Value(), nil },
		WriteOutput: func(v float64) error {
			d.hold = v
			return nil
		},
	})
	d.hold = 0
	d.t = d.ctl.Now()
	for _, m := range d.metrics {
		m.Reset()
	}
}

// Step advances the plant by dt under the held output, then ticks the
// controller at the new time. Returns the new time.
func (d *Driver) Step(dt float64) float64 {
	d.plant.Step(d.hold, dt)
	d.t += dt
	d.ctl.Tick(d.t)

	sp, pv, out := d.ctl.Setpoint(), d.ctl.Process(), d.ctl.Output()
	for _, m := range d.metrics {
		m.Observe(sp, pv, out, d.t)
	}
	for _, fn := range d.observers {
		fn(sp, pv, out, d.t)
	}
	return d.t
}

// Run starts the drive and steps it for the configured duration.
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("sim: dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("sim: duration must be positive, got %g", cfg.Duration)
	}

	d.Start(cfg.Setpoint)
	steps := int(cfg.Duration / cfg.Dt)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		d.Step(cfg.Dt)
	}

	result := &Result{
		Steps:   steps,
		Cycles:  d.ctl.Stats(),
		Metrics: make(map[string]float64, len(d.metrics)),
	}
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
