package deadtime

import "math"

// ClockPeriod is the period of the hardware scaler clock in seconds (80 MHz).
const ClockPeriod = 12.5e-9

// Calibration holds the process dead-time parameters of one detector element.
//
// A zero gradient means the dead time does not depend on beam energy.
type Calibration struct {
	// AllEventOffset is the all-event process dead time in seconds.
	AllEventOffset float64 `toml:"all_event_offset"`
	// AllEventGradient is the all-event dead-time slope in seconds per keV.
	AllEventGradient float64 `toml:"all_event_gradient"`
	// InWindowOffset is the in-window process dead time in seconds.
	InWindowOffset float64 `toml:"in_window_offset"`
	// InWindowGradient is the in-window dead-time slope in seconds per keV.
	InWindowGradient float64 `toml:"in_window_gradient"`
}

// AllEventDeadTime returns the effective all-event dead time at energy e.
func (c Calibration) AllEventDeadTime(e Energy) float64 {
	return effective(c.AllEventOffset, c.AllEventGradient, e)
}

// InWindowDeadTime returns the effective in-window dead time at energy e.
func (c Calibration) InWindowDeadTime(e Energy) float64 {
	return effective(c.InWindowOffset, c.InWindowGradient, e)
}

// Validate reports whether every parameter is finite and the offsets are not negative.
func (c Calibration) Validate() bool {
	for _, v := range []float64{c.AllEventOffset, c.AllEventGradient, c.InWindowOffset, c.InWindowGradient} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return c.AllEventOffset >= 0 && c.InWindowOffset >= 0
}

func effective(offset, gradient float64, e Energy) float64 {
	keV, ok := e.KeV()
	if gradient == 0 || !ok {
		return offset
	}

	return offset + gradient*keV
}

// Energy is an optional beam energy. The zero value means the energy is unknown.
type Energy struct {
	keV   float64
	known bool
}

// UnknownEnergy is the zero Energy.
var UnknownEnergy = Energy{}

// KeVEnergy returns a known energy of v keV. Non-finite values yield UnknownEnergy.
func KeVEnergy(v float64) Energy {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return UnknownEnergy
	}

	return Energy{keV: v, known: true}
}

// KeV returns the energy in keV and whether it is known.
func (e Energy) KeV() (float64, bool) {
	return e.keV, e.known
}
