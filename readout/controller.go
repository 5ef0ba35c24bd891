package readout

import (
	"context"
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/arloliu/go-xspress/deadtime"
	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
	"github.com/arloliu/go-xspress/internal/util"
	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/roi"
)

// Source provides decoded hardware blocks. It is satisfied by *gateway.Client.
type Source interface {
	// ReadScalers reads the scalers of frames [first, first+frames) for every channel.
	ReadScalers(ctx context.Context, first, frames, channels int) (*frame.ScalerBlock, error)
	// ReadSpectra reads the spectra of frames [first, first+frames) for every channel.
	ReadSpectra(ctx context.Context, first, frames, channels, grades, bins int) (*frame.SpectrumBlock, error)
}

// Metrics contains atomic counters of a controller.
type Metrics struct {
	// FramesRead indicates the number of frame records produced.
	FramesRead atomic.Uint64
	// ReadErrCount indicates the number of failed range reads.
	ReadErrCount atomic.Uint64
	// DegenerateFactors indicates the number of correction factors replaced by 1.0.
	DegenerateFactors atomic.Uint64
}

// Controller reads frame ranges and packages them according to the configured readout mode.
//
// A Controller is bound to one immutable configuration. It is not safe for concurrent use.
type Controller struct {
	cfg     *detector.Configuration
	src     Source
	model   *deadtime.Model
	agg     *roi.Aggregator
	skip    []bool
	ids     []int
	energy  EnergyFunc
	monitor MonitorFunc
	logger  logger.Logger
	metrics Metrics
}

// NewController creates a controller for cfg reading from src.
func NewController(cfg *detector.Configuration, src Source, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if src == nil {
		return nil, ErrSourceNil
	}

	c := &Controller{
		cfg:     cfg,
		src:     src,
		model:   deadtime.NewModel(cfg.Calibrations()),
		energy:  func() deadtime.Energy { return deadtime.UnknownEnergy },
		monitor: func(int) roi.Monitor { return roi.NoMonitor },
		logger:  logger.Default(),
		skip:    make([]bool, cfg.NumElements()),
		ids:     cfg.IDs(),
	}
	for i, e := range cfg.Elements() {
		c.skip[i] = e.Excluded
	}
	if cfg.Mode() == detector.RegionsOfInterest {
		c.agg = roi.NewAggregator(cfg)
	}

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}
	c.logger = logger.ForComponent(c.logger, "readout", "mode", cfg.Mode().String())

	return c, nil
}

// Configuration returns the configuration the controller is bound to.
func (c *Controller) Configuration() *detector.Configuration { return c.cfg }

// Metrics returns the controller metrics.
func (c *Controller) Metrics() *Metrics { return &c.metrics }

// Read reads the inclusive frame range [low, high] and returns one record per frame.
func (c *Controller) Read(ctx context.Context, low, high int) ([]FrameRecord, error) {
	if low < 0 || high < low || high-low >= MaxRangeFrames {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, low, high)
	}

	records, err := c.read(ctx, low, high-low+1)
	if err != nil {
		c.metrics.ReadErrCount.Add(1)
		return nil, &FrameError{Low: low, High: high, Err: err}
	}
	c.metrics.FramesRead.Add(uint64(len(records)))

	return records, nil
}

func (c *Controller) read(ctx context.Context, first, frames int) ([]FrameRecord, error) {
	channels := c.cfg.Channels()

	scalers, err := c.src.ReadScalers(ctx, first, frames, channels)
	if err != nil {
		return nil, err
	}
	if scalers.Frames() != frames || scalers.Channels != channels {
		return nil, fmt.Errorf("%w: scaler block %s, want %s", frame.ErrShapeMismatch,
			scalers.Shape(), frame.Shape{frames, channels * frame.ScalersPerChannel})
	}

	var spectra *frame.SpectrumBlock
	if bins := c.cfg.ReadoutBins(); bins > 0 {
		spectra, err = c.src.ReadSpectra(ctx, first, frames, channels, c.cfg.Grades(), bins)
		if err != nil {
			return nil, err
		}
		want := frame.Shape{frames, channels, c.cfg.Grades(), bins}
		if got := spectra.Shape(); !equalShape(got, want) {
			return nil, fmt.Errorf("%w: spectrum block %s, want %s", frame.ErrShapeMismatch, got, want)
		}
	}

	energy := c.energy()
	records := make([]FrameRecord, frames)
	for i := range records {
		rec := &records[i]
		rec.Frame = first + i
		rec.Mode = c.cfg.Mode()
		rec.GradeMode = c.cfg.GradeMode()
		rec.Units = Units
		rec.RawScalers = c.rawScalers(scalers.Raw[i])

		quads := c.quads(scalers, i)
		rec.Factors = c.factors(rec.Frame, quads, energy)

		switch c.cfg.Mode() {
		case detector.FullSpectrum:
			c.fillScalers(rec, quads)
			c.fillSpectra(rec, c.spectra(spectra.Data[i]))
		case detector.RegionsOfInterest:
			if err := c.fillRegions(rec, c.spectra(spectra.Data[i])); err != nil {
				return nil, err
			}
		default:
			c.fillScalers(rec, quads)
		}
	}

	return records, nil
}

func (c *Controller) factors(frameIdx int, quads []frame.ScalerQuad, energy deadtime.Energy) []float64 {
	results := c.model.Frame(quads, energy)
	out := make([]float64, len(results))
	for el, r := range results {
		out[el] = r.Factor
		if r.Degenerate {
			c.metrics.DegenerateFactors.Add(1)
			c.logger.Debug("dead-time factor substituted", "frame", frameIdx, "element", el, "scalers", quads[el])
		}
	}

	return out
}

// fillScalers sets the per-element corrected windowed counts and FF.
func (c *Controller) fillScalers(rec *FrameRecord, quads []frame.ScalerQuad) {
	rec.ElementCounts = make([]float64, len(quads))
	for el, q := range quads {
		rec.ElementCounts[el] = deadtime.Corrected(q, rec.Factors[el])
		if !c.excluded(el) {
			rec.FF += rec.ElementCounts[el]
		}
	}
}

func (c *Controller) fillSpectra(rec *FrameRecord, data [][][]frame.Counter) {
	grades, bins := c.cfg.Grades(), c.cfg.SpectrumLength()

	rec.Spectra = make([]Array, len(data))
	var summed Array
	if c.cfg.SummedSpectrum() {
		summed = NewArray(grades, bins)
		rec.Summed = &summed
	}

	for el, spectrum := range data {
		arr := NewArray(grades, bins)
		for g, raw := range spectrum {
			row := arr.Row(g)
			floats.ScaleTo(row, rec.Factors[el], util.Float64Slice(raw))
			if rec.Summed != nil && !c.excluded(el) {
				floats.Add(summed.Row(g), row)
			}
		}
		rec.Spectra[el] = arr
	}
}

func (c *Controller) fillRegions(rec *FrameRecord, data [][][]frame.Counter) error {
	readings, err := c.agg.Frame(data, rec.Factors, c.monitor(rec.Frame))
	if err != nil {
		return err
	}

	g := newRegionGrouper(c.cfg)
	rec.ElementCounts = make([]float64, c.cfg.NumElements())
	for _, r := range readings {
		r.Accept(g)
		if r.Name() != detector.OutRegionName {
			rec.ElementCounts[r.Element()] += r.Counts()
		}
		if r.ContributesToFF() {
			rec.FF += r.Counts()
			rec.FFBad += r.BadCounts()
		}
	}
	rec.HasFFBad = c.cfg.GradeMode() == detector.GradeThreshold
	if !rec.HasFFBad {
		rec.FFBad = 0
	}
	rec.Regions, rec.RegionNames = g.arrays()

	return nil
}

// quads picks the scalers of every element, in element order, from the i-th frame of b.
func (c *Controller) quads(b *frame.ScalerBlock, i int) []frame.ScalerQuad {
	out := make([]frame.ScalerQuad, len(c.ids))
	for el, id := range c.ids {
		out[el] = b.Quad(i, id)
	}

	return out
}

func (c *Controller) rawScalers(row []frame.Counter) []frame.Counter {
	out := make([]frame.Counter, 0, len(c.ids)*frame.ScalersPerChannel)
	for _, id := range c.ids {
		off := id * frame.ScalersPerChannel
		out = append(out, row[off:off+frame.ScalersPerChannel]...)
	}

	return out
}

// spectra picks the [grade][bin] spectrum of every element, in element order.
func (c *Controller) spectra(data [][][]frame.Counter) [][][]frame.Counter {
	out := make([][][]frame.Counter, len(c.ids))
	for el, id := range c.ids {
		out[el] = data[id]
	}

	return out
}

func (c *Controller) excluded(el int) bool {
	return c.skip[el]
}

func equalShape(a, b frame.Shape) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
