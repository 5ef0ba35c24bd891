package detector

import (
	"fmt"

	"github.com/arloliu/go-xspress/deadtime"
)

// DefaultSpectrumLength is the default number of MCA bins per element.
const DefaultSpectrumLength = 4096

// Configuration is the immutable description of a detector used for one or more scans.
type Configuration struct {
	elements  []Element
	gradeMode GradeMode
	mode      Mode
	mcaLength int
	summed    bool
}

// NewConfiguration creates a validated configuration for the given elements.
//
// The elements are copied; later changes to the slice passed in do not affect the configuration.
// Defaults: GradeNone, ScalerOnly, DefaultSpectrumLength bins, no summed spectrum.
func NewConfiguration(elements []Element, opts ...Option) (*Configuration, error) {
	cfg := &Configuration{
		elements:  make([]Element, len(elements)),
		gradeMode: GradeNone,
		mode:      ScalerOnly,
		mcaLength: DefaultSpectrumLength,
	}
	for i, e := range elements {
		cfg.elements[i] = e.clone()
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// With returns a new configuration derived from cfg with the given options applied.
func (cfg *Configuration) With(opts ...Option) (*Configuration, error) {
	return NewConfiguration(cfg.elements, append(cfg.options(), opts...)...)
}

func (cfg *Configuration) options() []Option {
	return []Option{
		WithGradeMode(cfg.gradeMode),
		WithMode(cfg.mode),
		WithSpectrumLength(cfg.mcaLength),
		WithSummedSpectrum(cfg.summed),
	}
}

// NumElements returns the number of detector elements.
func (cfg *Configuration) NumElements() int { return len(cfg.elements) }

// Channels returns the number of hardware channels spanned by the elements, the highest element
// ID plus one. Channels without an element are read from the hardware and dropped.
func (cfg *Configuration) Channels() int {
	n := 0
	for _, e := range cfg.elements {
		n = max(n, e.ID+1)
	}

	return n
}

// IDs returns the hardware channel of each element, in element order.
func (cfg *Configuration) IDs() []int {
	ids := make([]int, len(cfg.elements))
	for i, e := range cfg.elements {
		ids[i] = e.ID
	}

	return ids
}

// Elements returns a copy of the detector elements.
func (cfg *Configuration) Elements() []Element {
	out := make([]Element, len(cfg.elements))
	for i, e := range cfg.elements {
		out[i] = e.clone()
	}

	return out
}

// Element returns a copy of element i.
func (cfg *Configuration) Element(i int) Element { return cfg.elements[i].clone() }

// GradeMode returns the resolution grade mode.
func (cfg *Configuration) GradeMode() GradeMode { return cfg.gradeMode }

// Grades returns the number of grades per bin.
func (cfg *Configuration) Grades() int { return cfg.gradeMode.Grades() }

// Mode returns the readout mode.
func (cfg *Configuration) Mode() Mode { return cfg.mode }

// SpectrumLength returns the number of MCA bins per element.
func (cfg *Configuration) SpectrumLength() int { return cfg.mcaLength }

// SummedSpectrum reports whether FullSpectrum readout also emits the cross-element sum.
func (cfg *Configuration) SummedSpectrum() bool { return cfg.summed }

// Calibrations returns the dead-time calibrations indexed by element.
func (cfg *Configuration) Calibrations() []deadtime.Calibration {
	out := make([]deadtime.Calibration, len(cfg.elements))
	for i, e := range cfg.elements {
		out[i] = e.DeadTime
	}

	return out
}

// ROILength returns the number of reduced-spectrum slots per element and grade returned by the
// hardware in RegionsOfInterest mode.
func (cfg *Configuration) ROILength() int {
	n := 0
	for _, e := range cfg.elements {
		n = max(n, e.RegionSlots())
	}
	if cfg.gradeMode.HasOutRegion() {
		n++
	}

	return n
}

// OutSlots returns the number of slots covered by the implicit OUT region of element i.
// It is zero in GradeAll mode.
func (cfg *Configuration) OutSlots(i int) int {
	if !cfg.gradeMode.HasOutRegion() {
		return 0
	}

	return cfg.ROILength() - cfg.elements[i].RegionSlots()
}

// ReadoutBins returns the number of bins per element and grade read in the current mode,
// or zero in ScalerOnly mode.
func (cfg *Configuration) ReadoutBins() int {
	switch cfg.mode {
	case FullSpectrum:
		return cfg.mcaLength
	case RegionsOfInterest:
		return cfg.ROILength()
	default:
		return 0
	}
}

// RegionNames returns the distinct region names in order of first appearance.
func (cfg *Configuration) RegionNames() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, e := range cfg.elements {
		for _, r := range e.Regions {
			if _, ok := seen[r.Name]; ok {
				continue
			}
			seen[r.Name] = struct{}{}
			names = append(names, r.Name)
		}
	}

	return names
}

func (cfg *Configuration) validate() error {
	if len(cfg.elements) == 0 {
		return ErrNoElements
	}
	if cfg.mcaLength <= 0 {
		return ErrInvalidSpectrumLength
	}

	ids := make(map[int]struct{}, len(cfg.elements))
	shared := make(map[string]Region)
	totalRegions := 0
	for _, e := range cfg.elements {
		if e.ID < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidElementID, e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateElement, e.ID)
		}
		ids[e.ID] = struct{}{}

		if err := e.validate(cfg.mcaLength); err != nil {
			return err
		}

		for _, r := range e.Regions {
			totalRegions++
			prev, ok := shared[r.Name]
			if !ok {
				shared[r.Name] = r
				continue
			}
			if prev.Kind != r.Kind || prev.Slots() != r.Slots() {
				return fmt.Errorf("%w: region %q", ErrRegionConflict, r.Name)
			}
		}
	}

	if cfg.mode == RegionsOfInterest && totalRegions == 0 {
		return ErrNoRegions
	}

	// without an OUT region every element must fill the reduced spectrum exactly
	if !cfg.gradeMode.HasOutRegion() {
		want := cfg.elements[0].RegionSlots()
		for _, e := range cfg.elements[1:] {
			if e.RegionSlots() != want {
				return fmt.Errorf("%w: element %d covers %d slots, element %d covers %d",
					ErrRegionConflict, e.ID, e.RegionSlots(), cfg.elements[0].ID, want)
			}
		}
	}

	return nil
}
