package detector

import "fmt"

// Option represents a functional option for building a Configuration.
type Option interface {
	apply(*Configuration) error
}

type optFunc struct {
	name      string
	applyFunc func(*Configuration) error
}

func (o *optFunc) apply(cfg *Configuration) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Configuration) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithGradeMode sets the resolution grade mode.
//
// The default value is GradeNone.
func WithGradeMode(m GradeMode) Option {
	return newOptFunc("WithGradeMode", func(cfg *Configuration) error {
		if !m.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownGradeMode, m)
		}
		cfg.gradeMode = m

		return nil
	})
}

// WithMode sets the readout mode.
//
// The default value is ScalerOnly.
func WithMode(m Mode) Option {
	return newOptFunc("WithMode", func(cfg *Configuration) error {
		if !m.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownMode, m)
		}
		cfg.mode = m

		return nil
	})
}

// WithSpectrumLength sets the number of MCA bins per element.
//
// The default value is DefaultSpectrumLength.
func WithSpectrumLength(n int) Option {
	return newOptFunc("WithSpectrumLength", func(cfg *Configuration) error {
		if n <= 0 {
			return ErrInvalidSpectrumLength
		}
		cfg.mcaLength = n

		return nil
	})
}

// WithSummedSpectrum enables the cross-element summed spectrum in FullSpectrum mode.
//
// The default value is false.
func WithSummedSpectrum(enabled bool) Option {
	return newOptFunc("WithSummedSpectrum", func(cfg *Configuration) error {
		cfg.summed = enabled
		return nil
	})
}
