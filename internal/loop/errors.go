package loop

import "errors"

// Construction errors. These are fatal: a Controller is never built from
// an invalid configuration, so none of them can surface from Tick.
var (
	// ErrNoLaw indicates a configuration without a control law.
	ErrNoLaw = errors.New("loop: control law is required")

	// ErrBadPeriod indicates a non-positive sample period.
	ErrBadPeriod = errors.New("loop: sample period must be positive")

	// ErrPeriodMismatch indicates an explicit sample period that disagrees
	// with the period the control law was tuned for.
	ErrPeriodMismatch = errors.New("loop: sample period disagrees with control law period")

	// ErrBadTolerance indicates a negative trigger-window fraction.
	ErrBadTolerance = errors.New("loop: tolerance must be non-negative")

	// ErrInitMismatch indicates an explicit initial value that disagrees
	// with what its read binding reports.
	ErrInitMismatch = errors.New("loop: initial value disagrees with its read binding")
)
