package session

import (
	"errors"
	"time"

	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/readout"
	"github.com/arloliu/go-xspress/sink"
)

const (
	// DefaultPollInterval is the default interval between frame progress polls.
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultWaitTimeout is the default upper bound of WaitForFrames.
	DefaultWaitTimeout = 30 * time.Second
)

// Option represents a functional option for configuring a Session.
type Option interface {
	apply(*Session) error
}

type optFunc func(*Session) error

func (f optFunc) apply(s *Session) error { return f(s) }

// WithLogger sets the logger of the session.
//
// The default is the package default logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(s *Session) error {
		if l != nil {
			s.logger = l
		}

		return nil
	})
}

// WithSink sets the sink receiving every frame record read by the session.
//
// The default sink discards records.
func WithSink(snk sink.Sink) Option {
	return optFunc(func(s *Session) error {
		if snk != nil {
			s.sink = snk
		}

		return nil
	})
}

// WithPollInterval sets the interval between frame progress polls of WaitForFrames.
//
// The default value is DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(s *Session) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		s.pollInterval = d

		return nil
	})
}

// WithWaitTimeout sets the upper bound of WaitForFrames.
//
// The default value is DefaultWaitTimeout.
func WithWaitTimeout(d time.Duration) Option {
	return optFunc(func(s *Session) error {
		if d <= 0 {
			return errors.New("wait timeout must be positive")
		}
		s.waitTimeout = d

		return nil
	})
}

// WithHardwareFrameSets makes every scan line restart hardware counting.
//
// The default value is false.
func WithHardwareFrameSets(enabled bool) Option {
	return optFunc(func(s *Session) error {
		s.hwFrameSets = enabled
		return nil
	})
}

// WithEnergy sets the beam energy source used by dead-time correction.
func WithEnergy(f readout.EnergyFunc) Option {
	return optFunc(func(s *Session) error {
		s.energy = f
		return nil
	})
}

// WithMonitor sets the monitor source used by ALL-grade normalisation.
func WithMonitor(f readout.MonitorFunc) Option {
	return optFunc(func(s *Session) error {
		s.monitor = f
		return nil
	})
}
