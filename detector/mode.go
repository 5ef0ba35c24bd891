package detector

import (
	"fmt"
	"strings"
)

// GradeMode selects how many resolution grades the hardware reports per bin.
type GradeMode uint8

const (
	// GradeNone reports a single grade.
	GradeNone GradeMode = iota
	// GradeThreshold reports two grades: 0 ("bad") and 1 ("good").
	GradeThreshold
	// GradeAll reports all sixteen grades, 0 (worst) to 15 (best).
	GradeAll
)

// AllGrades is the number of grades reported in GradeAll mode.
const AllGrades = 16

// Grades returns the number of grades reported per bin.
func (m GradeMode) Grades() int {
	switch m {
	case GradeThreshold:
		return 2
	case GradeAll:
		return AllGrades
	default:
		return 1
	}
}

// HasOutRegion reports whether the implicit trailing OUT region exists in this mode.
func (m GradeMode) HasOutRegion() bool { return m != GradeAll }

// Valid reports whether m is a known grade mode.
func (m GradeMode) Valid() bool { return m <= GradeAll }

// String returns string representation of the grade mode.
func (m GradeMode) String() string {
	switch m {
	case GradeNone:
		return "none"
	case GradeThreshold:
		return "threshold"
	case GradeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseGradeMode parses the name produced by String, case-insensitively.
func ParseGradeMode(s string) (GradeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return GradeNone, nil
	case "threshold":
		return GradeThreshold, nil
	case "all":
		return GradeAll, nil
	default:
		return GradeNone, fmt.Errorf("%w: %q", ErrUnknownGradeMode, s)
	}
}

// GradeModeForCount maps a hardware grade count to its grade mode.
func GradeModeForCount(n int) (GradeMode, bool) {
	switch n {
	case 1:
		return GradeNone, true
	case 2:
		return GradeThreshold, true
	case AllGrades:
		return GradeAll, true
	default:
		return GradeNone, false
	}
}

// Mode is the readout mode of the detector.
type Mode uint8

const (
	// ScalerOnly reads the four hardware scalers per element only.
	ScalerOnly Mode = iota
	// FullSpectrum reads the complete MCA of every element.
	FullSpectrum
	// RegionsOfInterest reads the region-reduced spectra and aggregates the configured regions.
	RegionsOfInterest
)

// Valid reports whether m is a known readout mode.
func (m Mode) Valid() bool { return m <= RegionsOfInterest }

// String returns string representation of the readout mode.
func (m Mode) String() string {
	switch m {
	case ScalerOnly:
		return "scalers"
	case FullSpectrum:
		return "spectrum"
	case RegionsOfInterest:
		return "roi"
	default:
		return "unknown"
	}
}

// ParseMode parses the name produced by String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalers", "":
		return ScalerOnly, nil
	case "spectrum":
		return FullSpectrum, nil
	case "roi":
		return RegionsOfInterest, nil
	default:
		return ScalerOnly, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
