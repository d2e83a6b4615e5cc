// Package law defines the control-law boundary of the sampling loop and
// ships a few reference laws:
//
//   - [PID]: discrete Proportional-Integral-Derivative law with output
//     and integrator clamping
//   - [Relay]: hysteresis bang-bang law switching between its two bounds
//   - [Static]: fixed-output law for open-loop runs and tests
//
// # Usage
//
//	pid := law.NewPID(2.0, 0.5, 0.0, 0.01) // Kp, Ki, Kd, period
//	out := pid.Evaluate(setpoint, process, 0)
//
// Laws implementing [Tunable] support live parameter adjustment.
package law
