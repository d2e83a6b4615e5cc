// Package loop drives a single sampled control loop: given monotone time
// values it decides when a sampling period has elapsed and runs one
// control cycle, isolating any cycle failure from the caller.
//
// A Controller is not safe for concurrent use; one goroutine owns it.
package loop

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"regloop/internal/law"
	"regloop/internal/sched"
	"regloop/internal/trace"
)

// Undefined is the output value of a controller that has not yet
// completed a cycle.
var Undefined = math.NaN()

// Controller owns one sampling scheduler, one control law and the loop
// state around them. All behavior is driven through Tick.
type Controller struct {
	name     string
	active   bool
	setpoint float64
	process  float64
	errVal   float64
	output   float64

	bindings Bindings
	sampler  *sched.Sampler
	stats    Stats
	record   bool
	series   *trace.Series
	law      law.Law
	logger   *slog.Logger
}

// New builds a Controller from cfg. Validation happens here and only
// here; a constructed Controller never reports configuration errors.
func New(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	sampler, err := sched.New(cfg.Period, cfg.StartTime)
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	if cfg.Tolerance > 0 {
		sampler.SetTolerance(cfg.Tolerance)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		name:     cfg.Name,
		active:   true,
		output:   Undefined,
		bindings: cfg.Bindings,
		sampler:  sampler,
		record:   cfg.Record,
		series:   trace.NewSeries(),
		law:      cfg.Law,
		logger:   logger,
	}
	if cfg.Setpoint != nil {
		c.setpoint = *cfg.Setpoint
	}
	if cfg.Process != nil {
		c.process = *cfg.Process
	}
	c.errVal = c.setpoint - c.process
	return c, nil
}

// Tick advances the loop clock to t and, when a sampling period has
// elapsed, runs one control cycle. It returns true only when a cycle was
// both due and completed successfully.
//
// Failures never escape: a backward time value is logged as a warning and
// skipped; a cycle fault (binding or law) is logged, counted in Missed,
// and leaves the loop ready for the next tick. A failed cycle does not
// roll back inputs read before the failing step — the getters keep
// showing what was actually read — but the schedule does not advance, so
// the cycle re-fires on the next due tick.
func (c *Controller) Tick(t float64) bool {
	due, err := c.sampler.Advance(t)
	if err != nil {
		c.logger.Warn("time moved backward, tick skipped",
			"controller", c.name, "now", c.sampler.Now(), "tick", t)
		return false
	}
	if !c.active || !due {
		return false
	}

	if err := c.cycle(t); err != nil {
		c.stats.Missed++
		c.logger.Error("control cycle failed",
			"controller", c.name, "time", t, "cause", err)
		return false
	}

	c.sampler.Commit(t)
	c.stats.Updates++
	if c.record {
		c.series.Append(trace.Sample{
			Time:     t,
			Setpoint: c.setpoint,
			Process:  c.process,
			Output:   c.output,
			Err:      c.errVal,
			Updates:  c.stats.Updates,
		})
	}
	return true
}

// cycle runs one control cycle body. A panic in a binding or the law is
// converted into the returned error so it cannot cross Tick.
func (c *Controller) cycle(t float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in cycle: %v", r)
		}
	}()

	if c.bindings.ReadSetpoint != nil {
		v, rerr := c.bindings.ReadSetpoint(t)
		if rerr != nil {
			return fmt.Errorf("read setpoint: %w", rerr)
		}
		c.setpoint = v
		c.errVal = c.setpoint - c.process
	}
	if c.bindings.ReadProcess != nil {
		v, rerr := c.bindings.ReadProcess()
		if rerr != nil {
			return fmt.Errorf("read process variable: %w", rerr)
		}
		c.process = v
		c.errVal = c.setpoint - c.process
	}

	out := c.law.Evaluate(c.setpoint, c.process, 0)
	c.output = out

	if c.bindings.WriteOutput != nil {
		if werr := c.bindings.WriteOutput(out); werr != nil {
			return fmt.Errorf("write output: %w", werr)
		}
	}
	return nil
}

// SetSetpoint overwrites the target value and recomputes the error.
// Works whether or not a setpoint binding is present.
func (c *Controller) SetSetpoint(v float64) {
	c.setpoint = v
	c.errVal = c.setpoint - c.process
}

// SetProcess overwrites the measured value and recomputes the error.
func (c *Controller) SetProcess(v float64) {
	c.process = v
	c.errVal = c.setpoint - c.process
}

// SetBindings replaces the process connections. Takes effect on the next
// cycle.
func (c *Controller) SetBindings(b Bindings) {
	c.bindings = b
}

// Activate enables cycle execution.
func (c *Controller) Activate() { c.active = true }

// Deactivate suspends cycle execution. Ticks still advance the clock but
// never run a cycle or touch the counters.
func (c *Controller) Deactivate() { c.active = false }

// Active reports whether cycles may execute.
func (c *Controller) Active() bool { return c.active }

// Reset puts the controller in the state it would have immediately after
// a successful cycle at time t: process variable and output zeroed, error
// recomputed from the kept setpoint, counters cleared, the control law's
// internal state reset, and the next cycle due at t plus one period.
// The recording is kept; use ClearRecording to drop it.
func (c *Controller) Reset(t float64) {
	c.sampler.Reset(t)
	c.process = 0
	c.output = 0
	c.errVal = c.setpoint
	c.stats.Reset()
	c.law.Reset()
}

// SetTolerance overwrites the trigger window fraction.
func (c *Controller) SetTolerance(frac float64) {
	c.sampler.SetTolerance(frac)
}

// SetRecording toggles per-cycle recording.
func (c *Controller) SetRecording(on bool) { c.record = on }

// Recording reports whether cycles are being recorded.
func (c *Controller) Recording() bool { return c.record }

// ClearRecording drops all recorded samples.
func (c *Controller) ClearRecording() { c.series.Clear() }

// Series exposes the recorded samples.
func (c *Controller) Series() *trace.Series { return c.series }

// ExportCSV writes the recording to w. An empty recording writes nothing
// and logs a warning instead of failing.
func (c *Controller) ExportCSV(w io.Writer) error {
	if c.series.Len() == 0 {
		c.logger.Warn("nothing recorded, skipping export", "controller", c.name)
		return nil
	}
	return c.series.WriteCSV(w)
}

// Name returns the informational identifier.
func (c *Controller) Name() string { return c.name }

// Period returns the sample period.
func (c *Controller) Period() float64 { return c.sampler.Period() }

// Setpoint returns the current target value.
func (c *Controller) Setpoint() float64 { return c.setpoint }

// Process returns the current measured value.
func (c *Controller) Process() float64 { return c.process }

// Error returns setpoint minus process variable.
func (c *Controller) Error() float64 { return c.errVal }

// Output returns the last computed output, Undefined (NaN) before the
// first successful cycle.
func (c *Controller) Output() float64 { return c.output }

// Stats returns a copy of the cycle counters.
func (c *Controller) Stats() Stats { return c.stats }

// Law returns the owned control law.
func (c *Controller) Law() law.Law { return c.law }

// OutputBounds reads the law's actuator range through. The loop never
// clamps against these; they exist for downstream consumers.
func (c *Controller) OutputBounds() (lo, hi float64) {
	return c.law.OutputBounds()
}

// Now returns the most recently ticked time.
func (c *Controller) Now() float64 { return c.sampler.Now() }

// LastUpdate returns the time of the last successful cycle, -Inf if none.
func (c *Controller) LastUpdate() float64 { return c.sampler.LastUpdate() }

// NextDue returns the time the next cycle becomes due.
func (c *Controller) NextDue() float64 { return c.sampler.NextDue() }

// TimeUntilDue returns next due time minus current time. Negative when a
// cycle is overdue (possible while deactivated).
func (c *Controller) TimeUntilDue() float64 { return c.sampler.TimeUntilDue() }
