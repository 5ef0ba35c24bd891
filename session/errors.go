package session

import "errors"

var (
	// ErrHardwareNil indicates a session created without hardware.
	ErrHardwareNil = errors.New("hardware is nil")

	// ErrFrameGeneratorNil indicates a session created without a frame generator.
	ErrFrameGeneratorNil = errors.New("frame generator is nil")

	// ErrConfigNil indicates Configure called without a configuration.
	ErrConfigNil = errors.New("detector configuration is nil")
)

var (
	// ErrInvalidTransition indicates an operation not allowed in the current session state.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrNotCounting indicates a readout while no scan is active.
	ErrNotCounting = errors.New("session is not counting")

	// ErrNotConfigured indicates a range read before Configure.
	ErrNotConfigured = errors.New("session is not configured")

	// ErrGradeMismatch indicates hardware producing a grade count other than the configured one.
	ErrGradeMismatch = errors.New("hardware resolution grades do not match configuration")

	// ErrTimeout indicates WaitForFrames gave up before enough frames completed.
	ErrTimeout = errors.New("timed out waiting for frames")
)
