package roi

import (
	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/go-xspress/detector"
)

// BestGradesRow is the ALL-mode cumulative row holding grades 8..15, the "best 8 grades".
const BestGradesRow = 7

// Reading is the aggregated value of one region of one element in one frame.
//
// The set of implementations is closed: ScalarReading and SpectrumReading. Code that needs to
// treat the kinds differently implements Visitor, so adding a kind breaks every visitor at
// compile time.
type Reading interface {
	// Element returns the element index within the configuration.
	Element() int
	// Name returns the region name.
	Name() string
	// Kind returns the region kind.
	Kind() detector.RegionKind
	// ContributesToFF reports whether Counts is added to FF.
	ContributesToFF() bool
	// Counts returns the headline corrected count of the reading.
	Counts() float64
	// BadCounts returns the raw bad-grade count in THRESHOLD mode, zero otherwise.
	BadCounts() float64
	// Accept dispatches the reading to the matching Visitor method.
	Accept(v Visitor)

	sealed()
}

// Visitor handles each concrete Reading kind.
type Visitor interface {
	VisitScalar(r *ScalarReading)
	VisitSpectrum(r *SpectrumReading)
}

// ScalarReading is the reading of a VirtualScalar region or of the implicit OUT region.
type ScalarReading struct {
	ElementIndex int
	RegionName   string
	GradeMode    detector.GradeMode
	// Values holds one value per grade row: [count] (NONE), [bad, good] (THRESHOLD)
	// or sixteen cumulative rows (ALL).
	Values []float64
	FF     bool
}

var _ Reading = (*ScalarReading)(nil)

func (r *ScalarReading) Element() int              { return r.ElementIndex }
func (r *ScalarReading) Name() string              { return r.RegionName }
func (r *ScalarReading) Kind() detector.RegionKind { return detector.VirtualScalar }
func (r *ScalarReading) ContributesToFF() bool     { return r.FF }
func (r *ScalarReading) Accept(v Visitor)          { v.VisitScalar(r) }
func (r *ScalarReading) sealed()                   {}

// Counts returns the good count in THRESHOLD mode, the best-8-grades row in ALL mode and the
// single value otherwise.
func (r *ScalarReading) Counts() float64 {
	return r.Values[headlineRow(r.GradeMode)]
}

func (r *ScalarReading) BadCounts() float64 {
	if r.GradeMode != detector.GradeThreshold {
		return 0
	}

	return r.Values[0]
}

// IsOut reports whether the reading belongs to the implicit OUT region.
func (r *ScalarReading) IsOut() bool { return r.RegionName == detector.OutRegionName }

// SpectrumReading is the reading of a PartialSpectrum region.
type SpectrumReading struct {
	ElementIndex int
	RegionName   string
	GradeMode    detector.GradeMode
	// Values is indexed [row][slot] with the same rows as ScalarReading.Values.
	Values [][]float64
	// PeakArea is the sum of the headline row.
	PeakArea float64
	FF       bool
}

var _ Reading = (*SpectrumReading)(nil)

func (r *SpectrumReading) Element() int              { return r.ElementIndex }
func (r *SpectrumReading) Name() string              { return r.RegionName }
func (r *SpectrumReading) Kind() detector.RegionKind { return detector.PartialSpectrum }
func (r *SpectrumReading) ContributesToFF() bool     { return r.FF }
func (r *SpectrumReading) Counts() float64           { return r.PeakArea }
func (r *SpectrumReading) Accept(v Visitor)          { v.VisitSpectrum(r) }
func (r *SpectrumReading) sealed()                   {}

func (r *SpectrumReading) BadCounts() float64 {
	if r.GradeMode != detector.GradeThreshold {
		return 0
	}

	return floats.Sum(r.Values[0])
}

// Bins returns the number of slots of the sub-spectrum.
func (r *SpectrumReading) Bins() int {
	if len(r.Values) == 0 {
		return 0
	}

	return len(r.Values[0])
}

func headlineRow(m detector.GradeMode) int {
	switch m {
	case detector.GradeThreshold:
		return 1
	case detector.GradeAll:
		return BestGradesRow
	default:
		return 0
	}
}
