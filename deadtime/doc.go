// Package deadtime computes per-element, per-frame dead-time correction factors from raw
// hardware scalers.
//
// The correction combines two terms:
//   - a clock term, ClockTicks·ClockPeriod / dt, where dt = (ClockTicks − Resets)·ClockPeriod is
//     the live time left after reset periods;
//   - a process term, exp(2·r·τw), where r is the true input rate recovered from the measured
//     all-event rate through the paralyzable dead-time model with the "all-event" dead time τa,
//     and τw is the "in-window" process dead time.
//
// Both process dead times are calibrated per element as an offset plus an optional gradient in
// beam energy (keV). A factor that is not finite is replaced by 1.0 and reported as degenerate;
// it never reaches the readings.
package deadtime
