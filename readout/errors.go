package readout

import (
	"errors"
	"fmt"
)

// MaxRangeFrames is the largest number of frames a single range read may cover.
const MaxRangeFrames = 1 << 16

var (
	// ErrInvalidRange indicates a frame range with low > high, a negative bound, or more than
	// MaxRangeFrames frames.
	ErrInvalidRange = errors.New("invalid frame range")

	// ErrSourceNil indicates a controller created without a data source.
	ErrSourceNil = errors.New("readout source is nil")

	// ErrConfigNil indicates a controller created without a detector configuration.
	ErrConfigNil = errors.New("detector configuration is nil")
)

// FrameError reports a failure to read the frames [Low, High].
type FrameError struct {
	Low  int
	High int
	Err  error
}

func (e *FrameError) Error() string {
	if e.Low == e.High {
		return fmt.Sprintf("read frame %d: %v", e.Low, e.Err)
	}

	return fmt.Sprintf("read frames %d..%d: %v", e.Low, e.High, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
