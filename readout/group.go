package readout

import (
	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/roi"
)

// regionGrouper collects identically named readings across elements. Rows are indexed by
// element; a nil row marks an element without the region.
type regionGrouper struct {
	elements int
	grades   int
	names    []string
	scalars  map[string][][]float64
	spectra  map[string][][][]float64
	outFound bool
}

var _ roi.Visitor = (*regionGrouper)(nil)

func newRegionGrouper(cfg *detector.Configuration) *regionGrouper {
	return &regionGrouper{
		elements: cfg.NumElements(),
		grades:   cfg.Grades(),
		names:    cfg.RegionNames(),
		scalars:  make(map[string][][]float64),
		spectra:  make(map[string][][][]float64),
	}
}

func (g *regionGrouper) VisitScalar(r *roi.ScalarReading) {
	if r.IsOut() {
		g.outFound = true
	}
	rowsFor(g.scalars, r.RegionName, g.elements)[r.ElementIndex] = r.Values
}

func (g *regionGrouper) VisitSpectrum(r *roi.SpectrumReading) {
	rowsFor(g.spectra, r.RegionName, g.elements)[r.ElementIndex] = r.Values
}

func rowsFor[T any](m map[string][]T, name string, n int) []T {
	rows, ok := m[name]
	if !ok {
		rows = make([]T, n)
		m[name] = rows
	}

	return rows
}

// arrays builds one array per region name:
//
//	virtual scalar:   [elements] (NONE) or [elements][grades]
//	partial spectrum: [elements][bins] (NONE) or [elements][grades][bins]
func (g *regionGrouper) arrays() (map[string]Array, []string) {
	names := g.names
	if g.outFound {
		names = append(names, detector.OutRegionName)
	}

	out := make(map[string]Array, len(names))
	for _, name := range names {
		if rows, ok := g.scalars[name]; ok {
			out[name] = g.scalarArray(rows)
		} else if specs, ok := g.spectra[name]; ok {
			out[name] = g.spectrumArray(specs)
		}
	}

	return out, names
}

func (g *regionGrouper) scalarArray(rows [][]float64) Array {
	shape := []int{len(rows)}
	if g.grades > 1 {
		shape = append(shape, g.grades)
	}

	arr := NewArray(shape...)
	for el, values := range rows {
		copy(arr.Data[el*g.grades:], values)
	}

	return arr
}

func (g *regionGrouper) spectrumArray(specs [][][]float64) Array {
	bins := 0
	for _, spec := range specs {
		if len(spec) > 0 {
			bins = len(spec[0])
			break
		}
	}

	shape := []int{len(specs)}
	if g.grades > 1 {
		shape = append(shape, g.grades)
	}
	shape = append(shape, bins)

	arr := NewArray(shape...)
	for el, spec := range specs {
		pos := el * g.grades * bins
		for _, row := range spec {
			pos += copy(arr.Data[pos:], row)
		}
	}

	return arr
}
