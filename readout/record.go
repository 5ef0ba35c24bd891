package readout

import (
	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
)

// Units is the physical units label attached to every value of a FrameRecord.
const Units = "counts"

// FrameRecord is the corrected output of one hardware frame.
type FrameRecord struct {
	// Frame is the hardware frame index.
	Frame     int
	Mode      detector.Mode
	GradeMode detector.GradeMode

	// ElementCounts holds one corrected scalar per element: the windowed count in ScalerOnly and
	// FullSpectrum modes, the sum of the element's explicit regions in RegionsOfInterest mode.
	ElementCounts []float64
	// Factors holds the dead-time correction factor applied to each element.
	Factors []float64
	// RawScalers echoes the raw scalers of every element in element order, four counters each.
	RawScalers []frame.Counter

	// Regions maps a region name to one row per element, in element order. Elements that do not
	// carry the region hold zeros.
	// Set in RegionsOfInterest mode only; the implicit trailing region appears as "OUT".
	Regions map[string]Array
	// RegionNames lists the keys of Regions in configuration order, OUT last.
	RegionNames []string

	// Spectra holds one corrected [grade][bin] spectrum per element in FullSpectrum mode.
	Spectra []Array
	// Summed is the cross-element [grade][bin] sum of non-excluded elements, when enabled.
	Summed *Array

	// FF is the headline dead-time corrected count of the frame.
	FF float64
	// FFBad is the sum of bad-grade counts; valid only when HasFFBad is set (THRESHOLD regions).
	FFBad    float64
	HasFFBad bool

	// Units is the physical units label of every value, always "counts".
	Units string
}

// Region returns the array stored for the named region.
func (r *FrameRecord) Region(name string) (Array, bool) {
	a, ok := r.Regions[name]
	return a, ok
}
