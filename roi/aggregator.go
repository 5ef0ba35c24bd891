package roi

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
	"github.com/arloliu/go-xspress/internal/util"
)

// Aggregator turns region-reduced spectra into readings for one detector configuration.
// It holds no per-frame state and may be shared by concurrent readers.
type Aggregator struct {
	cfg      *detector.Configuration
	elements []detector.Element
	slots    int
}

// NewAggregator creates an aggregator for cfg.
func NewAggregator(cfg *detector.Configuration) *Aggregator {
	return &Aggregator{
		cfg:      cfg,
		elements: cfg.Elements(),
		slots:    cfg.ROILength(),
	}
}

// Slots returns the reduced spectrum length expected per element and grade.
func (a *Aggregator) Slots() int { return a.slots }

// Frame aggregates every element of one frame. spectra is indexed [element][grade][slot] and
// factors holds the correction factor of each element.
func (a *Aggregator) Frame(spectra [][][]frame.Counter, factors []float64, mon Monitor) ([]Reading, error) {
	if len(spectra) != len(a.elements) || len(factors) != len(a.elements) {
		return nil, fmt.Errorf("%w: got %d spectra and %d factors for %d elements",
			ErrElementMismatch, len(spectra), len(factors), len(a.elements))
	}

	readings := make([]Reading, 0, len(a.elements)*(len(a.elements[0].Regions)+1))
	for i := range a.elements {
		r, err := a.Element(i, spectra[i], factors[i], mon)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r...)
	}

	return readings, nil
}

// Element aggregates the regions of element idx. spectrum is indexed [grade][slot].
func (a *Aggregator) Element(idx int, spectrum [][]frame.Counter, factor float64, mon Monitor) ([]Reading, error) {
	elem := a.elements[idx]
	mode := a.cfg.GradeMode()

	if len(spectrum) != mode.Grades() {
		return nil, fmt.Errorf("%w: element %d has %d grades, %s mode needs %d",
			ErrGradeMismatch, elem.ID, len(spectrum), mode, mode.Grades())
	}
	for g, row := range spectrum {
		if len(row) != a.slots {
			return nil, fmt.Errorf("%w: element %d grade %d has %d slots, want %d",
				ErrSlotMismatch, elem.ID, g, len(row), a.slots)
		}
	}

	rows := gradeRows(mode, spectrum)
	scales := rowScales(mode, rows, factor)
	contributes := !elem.Excluded

	readings := make([]Reading, 0, len(elem.Regions)+1)
	cursor := 0
	for _, region := range elem.Regions {
		switch region.Kind {
		case detector.PartialSpectrum:
			n := region.Slots()
			readings = append(readings, spectrumReading(idx, region.Name, mode, rows, scales, cursor, cursor+n, contributes))
			cursor += n
		default:
			readings = append(readings, scalarReading(idx, region.Name, mode, rows, scales, cursor, cursor+1, contributes, mon))
			cursor++
		}
	}

	if mode.HasOutRegion() {
		readings = append(readings, scalarReading(idx, detector.OutRegionName, mode, rows, scales, cursor, a.slots, false, NoMonitor))
	}

	return readings, nil
}

// gradeRows converts the raw grades into the rows reported by the mode.
func gradeRows(mode detector.GradeMode, spectrum [][]frame.Counter) [][]float64 {
	if mode != detector.GradeAll {
		rows := make([][]float64, len(spectrum))
		for g, raw := range spectrum {
			rows[g] = util.Float64Slice(raw)
		}

		return rows
	}

	// row b accumulates grades 15..15-b
	rows := make([][]float64, detector.AllGrades)
	rows[0] = util.Float64Slice(spectrum[detector.AllGrades-1])
	for b := 1; b < detector.AllGrades; b++ {
		rows[b] = util.Float64Slice(spectrum[detector.AllGrades-1-b])
		floats.Add(rows[b], rows[b-1])
	}

	return rows
}

// rowScales returns the multiplier applied to each row: the rescale ratio times the correction factor.
func rowScales(mode detector.GradeMode, rows [][]float64, factor float64) []float64 {
	scales := make([]float64, len(rows))
	switch mode {
	case detector.GradeThreshold:
		total := floats.Sum(rows[0]) + floats.Sum(rows[1])
		scales[0] = 1
		scales[1] = ratio(total, floats.Sum(rows[1])) * factor
	case detector.GradeAll:
		// the cumulative row 15 holds every grade
		total := floats.Sum(rows[detector.AllGrades-1])
		for b, row := range rows {
			scales[b] = ratio(total, floats.Sum(row)) * factor
		}
	default:
		for b := range scales {
			scales[b] = factor
		}
	}

	return scales
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 1
	}

	return num / den
}

func scalarReading(idx int, name string, mode detector.GradeMode, rows [][]float64, scales []float64,
	from, to int, ff bool, mon Monitor,
) *ScalarReading {
	values := make([]float64, len(rows))
	for b, row := range rows {
		if from < to {
			values[b] = floats.Sum(row[from:to]) * scales[b]
		}
	}

	if m, ok := mon.Value(); ok && mode == detector.GradeAll {
		floats.Scale(1/m, values)
	}

	return &ScalarReading{
		ElementIndex: idx,
		RegionName:   name,
		GradeMode:    mode,
		Values:       values,
		FF:           ff,
	}
}

func spectrumReading(idx int, name string, mode detector.GradeMode, rows [][]float64, scales []float64,
	from, to int, ff bool,
) *SpectrumReading {
	values := make([][]float64, len(rows))
	for b, row := range rows {
		values[b] = make([]float64, to-from)
		floats.ScaleTo(values[b], scales[b], row[from:to])
	}

	return &SpectrumReading{
		ElementIndex: idx,
		RegionName:   name,
		GradeMode:    mode,
		Values:       values,
		PeakArea:     floats.Sum(values[headlineRow(mode)]),
		FF:           ff,
	}
}
