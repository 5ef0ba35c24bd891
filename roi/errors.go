package roi

import "errors"

var (
	// ErrGradeMismatch indicates a spectrum whose grade count differs from the configured grade mode.
	ErrGradeMismatch = errors.New("spectrum grade count does not match grade mode")

	// ErrSlotMismatch indicates a reduced spectrum whose length differs from the configured region layout.
	ErrSlotMismatch = errors.New("reduced spectrum length does not match region layout")

	// ErrElementMismatch indicates a frame whose element count differs from the configuration.
	ErrElementMismatch = errors.New("element count does not match configuration")
)
