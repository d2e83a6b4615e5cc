package loop

import (
	"fmt"
	"log/slog"

	"regloop/internal/law"
)

// Config is the single construction path for a Controller. Required:
// Law, and a Period unless the law fixes one itself. Everything else is
// optional.
type Config struct {
	// Name identifies the controller in reports. Informational only.
	Name string

	// Period is the sample period in seconds. Zero is allowed when Law
	// implements [law.Sampled]; the law's period is used. When both are
	// given they must match.
	Period float64

	// Tolerance is the early-fire window as a fraction of the period.
	// Zero selects the default.
	Tolerance float64

	// Law is the control law evaluated each cycle. Required.
	Law law.Law

	// Bindings connect the loop to the process. Any subset may be nil.
	Bindings Bindings

	// Setpoint and Process optionally fix the initial values. When a
	// matching read binding is also supplied, the binding is sampled at
	// StartTime and must agree.
	Setpoint *float64
	Process  *float64

	// StartTime is the loop's base time. The first cycle is due at
	// StartTime+Period.
	StartTime float64

	// Record enables the per-cycle time-series recording.
	Record bool

	// Logger receives regression warnings and cycle fault reports.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// Float is a convenience for the optional initial-value fields.
func Float(v float64) *float64 { return &v }

// FromLaw builds a Config around a sampled law, taking the period from
// the law itself.
func FromLaw(name string, l law.Law) Config {
	cfg := Config{Name: name, Law: l}
	if s, ok := l.(law.Sampled); ok {
		cfg.Period = s.Period()
	}
	return cfg
}

func (cfg *Config) validate() error {
	if cfg.Law == nil {
		return ErrNoLaw
	}
	if s, ok := cfg.Law.(law.Sampled); ok {
		if cfg.Period == 0 {
			cfg.Period = s.Period()
		} else if cfg.Period != s.Period() {
			return fmt.Errorf("%w: %g vs %g", ErrPeriodMismatch, cfg.Period, s.Period())
		}
	}
	if cfg.Period <= 0 {
		return fmt.Errorf("%w: got %g", ErrBadPeriod, cfg.Period)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("%w: got %g", ErrBadTolerance, cfg.Tolerance)
	}
	if cfg.Setpoint != nil && cfg.Bindings.ReadSetpoint != nil {
		v, err := cfg.Bindings.ReadSetpoint(cfg.StartTime)
		if err != nil {
			return fmt.Errorf("loop: probing setpoint binding: %w", err)
		}
		if v != *cfg.Setpoint {
			return fmt.Errorf("%w: setpoint %g, binding reports %g", ErrInitMismatch, *cfg.Setpoint, v)
		}
	}
	if cfg.Process != nil && cfg.Bindings.ReadProcess != nil {
		v, err := cfg.Bindings.ReadProcess()
		if err != nil {
			return fmt.Errorf("loop: probing process binding: %w", err)
		}
		if v != *cfg.Process {
			return fmt.Errorf("%w: process variable %g, binding reports %g", ErrInitMismatch, *cfg.Process, v)
		}
	}
	return nil
}
