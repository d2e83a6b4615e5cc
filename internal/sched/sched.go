package sched

import (
	"errors"
	"math"
)

// DefaultTolerance is the fraction of the sample period a cycle may fire
// early. Large enough to absorb accumulated float error in a driving
// clock that sums fixed steps, small enough to never swallow a real step.
const DefaultTolerance = 1e-9

var (
	// ErrBadPeriod indicates a non-positive sample period.
	ErrBadPeriod = errors.New("sched: sample period must be positive")

	// ErrTimeRegression indicates the driving clock moved backward.
	ErrTimeRegression = errors.New("sched: time moved backward")
)

// Sampler decides when a sampling period has elapsed on a monotone time
// signal. The caller feeds time values through Advance and, after running
// whatever work the trigger guards, confirms with Commit.
type Sampler struct {
	period  float64
	tol     float64
	now     float64
	last    float64
	nextDue float64
}

// New returns a Sampler with its first trigger due at base+period.
// The last-cycle time starts at -Inf: nothing has run yet.
func New(period, base float64) (*Sampler, error) {
	if period <= 0 || math.IsNaN(period) {
		return nil, ErrBadPeriod
	}
	return &Sampler{
		period:  period,
		tol:     DefaultTolerance,
		now:     base,
		last:    math.Inf(-1),
		nextDue: base + period,
	}, nil
}

// Advance moves the clock to t and reports whether a cycle is due.
// A cycle is due when t has reached the next due time minus the tolerance
// window; the window lets a cycle fire slightly early but never late.
// If t is behind the current time nothing is mutated and
// ErrTimeRegression is returned.
func (s *Sampler) Advance(t float64) (bool, error) {
	if t < s.now {
		return false, ErrTimeRegression
	}
	s.now = t
	return t >= s.nextDue-s.tol*s.period, nil
}

// Commit records a successful cycle at time t and schedules the next one
// a full period later.
func (s *Sampler) Commit(t float64) {
	s.last = t
	s.nextDue = t + s.period
}

// Reset rewinds the Sampler to behave as though a cycle had just
// completed at t.
func (s *Sampler) Reset(t float64) {
	s.now = t
	s.last = t
	s.nextDue = t + s.period
}

// SetTolerance overwrites the early-fire window, expressed as a fraction
// of the sample period.
func (s *Sampler) SetTolerance(frac float64) {
	s.tol = frac
}

// Now returns the most recently advanced time.
func (s *Sampler) Now() float64 { return s.now }

// LastUpdate returns the time of the last committed cycle, -Inf if none.
func (s *Sampler) LastUpdate() float64 { return s.last }

// NextDue returns the time the next cycle becomes due.
func (s *Sampler) NextDue() float64 { return s.nextDue }

// Period returns the sample period.
func (s *Sampler) Period() float64 { return s.period }

// Tolerance returns the early-fire window fraction.
func (s *Sampler) Tolerance() float64 { return s.tol }

// TimeUntilDue returns nextDue - now. Negative means a cycle is overdue.
func (s *Sampler) TimeUntilDue() float64 {
	return s.nextDue - s.now
}
