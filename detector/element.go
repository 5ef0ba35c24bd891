package detector

import (
	"fmt"

	"github.com/arloliu/go-xspress/deadtime"
	"github.com/arloliu/go-xspress/internal/util"
)

// Window is the in-window energy range [Lo, Hi] in MCA bins used by the windowed scaler.
type Window struct {
	Lo int
	Hi int
}

// Element is one physical channel of the detector.
type Element struct {
	// ID is the hardware channel number.
	ID int
	// Window is the energy window counted by the windowed scaler.
	Window Window
	// Excluded elements are read out but never contribute to FF.
	Excluded bool
	// Regions are ordered by Start and do not overlap.
	Regions []Region
	// DeadTime is the dead-time calibration of the element.
	DeadTime deadtime.Calibration
}

// RegionSlots returns the number of reduced-spectrum slots taken by the explicit regions.
func (e Element) RegionSlots() int {
	n := 0
	for _, r := range e.Regions {
		n += r.Slots()
	}

	return n
}

// Region returns the region with the given name.
func (e Element) Region(name string) (Region, bool) {
	for _, r := range e.Regions {
		if r.Name == name {
			return r, true
		}
	}

	return Region{}, false
}

func (e Element) clone() Element {
	e.Regions = util.CloneSlice(e.Regions, 0)
	return e
}

func (e Element) validate(mcaLength int) error {
	if e.Window.Lo < 0 || e.Window.Hi >= mcaLength || e.Window.Lo > e.Window.Hi {
		return fmt.Errorf("%w: element %d window [%d, %d]", ErrInvalidWindow, e.ID, e.Window.Lo, e.Window.Hi)
	}
	if !e.DeadTime.Validate() {
		return fmt.Errorf("%w: element %d", ErrInvalidCalibration, e.ID)
	}

	names := make(map[string]struct{}, len(e.Regions))
	for i, r := range e.Regions {
		if err := r.validate(mcaLength); err != nil {
			return fmt.Errorf("element %d: %w", e.ID, err)
		}
		if _, dup := names[r.Name]; dup {
			return fmt.Errorf("%w: element %d region %q", ErrDuplicateRegion, e.ID, r.Name)
		}
		names[r.Name] = struct{}{}

		if i > 0 && r.Start <= e.Regions[i-1].End {
			return fmt.Errorf("%w: element %d regions %q and %q", ErrRegionOverlap, e.ID, e.Regions[i-1].Name, r.Name)
		}
	}

	return nil
}
