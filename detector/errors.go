package detector

import "errors"

// ErrInvalidConfig is the root of every configuration error; all the errors below wrap it.
var ErrInvalidConfig = errors.New("invalid detector configuration")

var (
	// ErrNoElements indicates a configuration without elements.
	ErrNoElements = wrapConfig("no detector elements configured")

	// ErrInvalidElementID indicates a negative element id.
	ErrInvalidElementID = wrapConfig("element id must not be negative")

	// ErrDuplicateElement indicates two elements sharing the same id.
	ErrDuplicateElement = wrapConfig("duplicate element id")

	// ErrInvalidWindow indicates an energy window outside the spectrum or with lo > hi.
	ErrInvalidWindow = wrapConfig("invalid energy window")

	// ErrInvalidCalibration indicates a non-finite or negative dead-time calibration.
	ErrInvalidCalibration = wrapConfig("invalid dead-time calibration")

	// ErrInvalidSpectrumLength indicates a non-positive MCA length.
	ErrInvalidSpectrumLength = wrapConfig("spectrum length must be positive")
)

var (
	// ErrInvalidRegion indicates a region with an unknown kind, an empty name or start > end.
	ErrInvalidRegion = wrapConfig("invalid region")

	// ErrRegionOutOfRange indicates a region extending outside the MCA.
	ErrRegionOutOfRange = wrapConfig("region out of spectrum range")

	// ErrRegionOverlap indicates regions of one element that overlap or are not in ascending order.
	ErrRegionOverlap = wrapConfig("regions overlap or are out of order")

	// ErrDuplicateRegion indicates two regions of one element sharing a name.
	ErrDuplicateRegion = wrapConfig("duplicate region name")

	// ErrReservedRegionName indicates a region named like the implicit trailing region.
	ErrReservedRegionName = wrapConfig("region name is reserved")

	// ErrRegionConflict indicates identically named regions with different kinds or extents across elements.
	ErrRegionConflict = wrapConfig("conflicting regions across elements")

	// ErrNoRegions indicates RegionsOfInterest mode without any region configured.
	ErrNoRegions = wrapConfig("regions of interest mode requires at least one region")
)

var (
	// ErrUnknownGradeMode indicates an unrecognised resolution grade mode.
	ErrUnknownGradeMode = wrapConfig("unknown resolution grade mode")

	// ErrUnknownMode indicates an unrecognised readout mode.
	ErrUnknownMode = wrapConfig("unknown readout mode")

	// ErrUnknownRegionKind indicates an unrecognised region kind.
	ErrUnknownRegionKind = wrapConfig("unknown region kind")
)

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }
func (e *configError) Unwrap() error { return ErrInvalidConfig }

func wrapConfig(msg string) error { return &configError{msg: msg} }
