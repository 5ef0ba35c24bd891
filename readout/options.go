package readout

import (
	"github.com/arloliu/go-xspress/deadtime"
	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/roi"
)

// EnergyFunc returns the current beam energy used by the dead-time gradient terms.
type EnergyFunc func() deadtime.Energy

// MonitorFunc returns the monitor value of a frame used to normalise ALL-grade virtual scalars.
type MonitorFunc func(frame int) roi.Monitor

// Option represents a functional option for configuring a Controller.
type Option interface {
	apply(*Controller) error
}

type optFunc func(*Controller) error

func (f optFunc) apply(c *Controller) error { return f(c) }

// WithLogger sets the logger of the controller.
//
// The default is the package default logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(c *Controller) error {
		if l != nil {
			c.logger = l
		}

		return nil
	})
}

// WithEnergy sets the beam energy source.
//
// The default reports an unknown energy, so only calibration offsets are used.
func WithEnergy(f EnergyFunc) Option {
	return optFunc(func(c *Controller) error {
		if f != nil {
			c.energy = f
		}

		return nil
	})
}

// WithMonitor sets the monitor source.
//
// The default supplies no monitor value.
func WithMonitor(f MonitorFunc) Option {
	return optFunc(func(c *Controller) error {
		if f != nil {
			c.monitor = f
		}

		return nil
	})
}
