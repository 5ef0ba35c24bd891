package deadtime

import (
	"math"

	"github.com/arloliu/go-xspress/frame"
)

// Factor returns the dead-time correction factor for one element in one frame.
//
// ok is false when the computation is degenerate (NaN or infinite); the factor is then the
// neutral 1.0 so that the pipeline keeps going.
func Factor(q frame.ScalerQuad, cal Calibration, e Energy) (factor float64, ok bool) {
	f := rawFactor(q, cal, e)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1.0, false
	}

	return f, true
}

func rawFactor(q frame.ScalerQuad, cal Calibration, e Energy) float64 {
	ticks := q.ClockTicks.Float()
	dt := (ticks - q.Resets.Float()) * ClockPeriod
	measuredRate := q.AllEvents.Float() / dt

	correctedRate := ParalyzableInverse(measuredRate, cal.AllEventDeadTime(e))
	clockTerm := ticks * ClockPeriod / dt

	return clockTerm * (1 / math.Exp(-correctedRate*2*cal.InWindowDeadTime(e)))
}

// Result is the correction factor of one element together with its degenerate flag.
type Result struct {
	Factor     float64
	Degenerate bool
}

// Model holds the calibrations of every element of a detector and scores whole frames.
type Model struct {
	cals []Calibration
}

// NewModel creates a model for the given per-element calibrations, indexed by element.
func NewModel(cals []Calibration) *Model {
	c := make([]Calibration, len(cals))
	copy(c, cals)

	return &Model{cals: c}
}

// Elements returns the number of calibrated elements.
func (m *Model) Elements() int { return len(m.cals) }

// Calibration returns the calibration of element i.
func (m *Model) Calibration(i int) Calibration { return m.cals[i] }

// Frame scores every element of one frame. quads must have one entry per calibrated element.
func (m *Model) Frame(quads []frame.ScalerQuad, e Energy) []Result {
	out := make([]Result, len(quads))
	for i, q := range quads {
		var cal Calibration
		if i < len(m.cals) {
			cal = m.cals[i]
		}
		f, ok := Factor(q, cal, e)
		out[i] = Result{Factor: f, Degenerate: !ok}
	}

	return out
}

// Corrected returns the windowed count of q scaled by factor.
func Corrected(q frame.ScalerQuad, factor float64) float64 {
	return q.Windowed.Float() * factor
}
