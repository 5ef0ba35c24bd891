package detector

import (
	"fmt"
	"strings"
)

// OutRegionName is the name of the implicit region covering the spectrum tail.
const OutRegionName = "OUT"

// RegionKind distinguishes the two kinds of region of interest.
type RegionKind uint8

const (
	// VirtualScalar aggregates its energy range into a single count (one slot).
	VirtualScalar RegionKind = iota + 1
	// PartialSpectrum keeps its energy range as a stored sub-spectrum (end−start+1 slots).
	PartialSpectrum
)

// String returns string representation of the region kind.
func (k RegionKind) String() string {
	switch k {
	case VirtualScalar:
		return "scalar"
	case PartialSpectrum:
		return "spectrum"
	default:
		return "unknown"
	}
}

// ParseRegionKind parses the name produced by String, case-insensitively.
func ParseRegionKind(s string) (RegionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar":
		return VirtualScalar, nil
	case "spectrum":
		return PartialSpectrum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegionKind, s)
	}
}

// Region is a region of interest over the MCA bins [Start, End] of one element.
type Region struct {
	Kind  RegionKind
	Start int
	End   int
	Name  string
}

// Slots returns the number of reduced-spectrum slots the region occupies.
func (r Region) Slots() int {
	if r.Kind == PartialSpectrum {
		return r.End - r.Start + 1
	}

	return 1
}

func (r Region) validate(mcaLength int) error {
	if r.Kind != VirtualScalar && r.Kind != PartialSpectrum {
		return fmt.Errorf("%w: region %q has kind %d", ErrInvalidRegion, r.Name, r.Kind)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRegion)
	}
	if strings.EqualFold(r.Name, OutRegionName) {
		return fmt.Errorf("%w: %q", ErrReservedRegionName, r.Name)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: region %q start %d > end %d", ErrInvalidRegion, r.Name, r.Start, r.End)
	}
	if r.Start < 0 || r.End >= mcaLength {
		return fmt.Errorf("%w: region %q [%d, %d] outside [0, %d)", ErrRegionOutOfRange, r.Name, r.Start, r.End, mcaLength)
	}

	return nil
}
