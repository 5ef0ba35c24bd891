package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/gateway"
	"github.com/arloliu/go-xspress/internal/poll"
	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/readout"
	"github.com/arloliu/go-xspress/sink"
)

// Hardware is the detector electronics as seen by a session. It is satisfied by *gateway.Client.
type Hardware interface {
	readout.Source

	Open(ctx context.Context) error
	Close(ctx context.Context) error
	SetWindow(ctx context.Context, det int, w detector.Window) error
	SetRegions(ctx context.Context, det int, regions []detector.Region) error
	FormatRun(ctx context.Context, grades, bins int) error
	ResolutionGrades(ctx context.Context) (int, error)
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	Clear(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ Hardware = (*gateway.Client)(nil)

// Session drives the detector through a scan and reads frames at an internal cursor.
type Session struct {
	hw  Hardware
	tfg gateway.FrameGenerator

	state  atomicState
	cfg    *detector.Configuration
	ctrl   *readout.Controller
	cursor int
	single bool

	sink         sink.Sink
	logger       logger.Logger
	pollInterval time.Duration
	waitTimeout  time.Duration
	hwFrameSets  bool
	energy       readout.EnergyFunc
	monitor      readout.MonitorFunc

	metrics        Metrics
	degenerateBase uint64
}

// New creates a closed session over hw and tfg.
func New(hw Hardware, tfg gateway.FrameGenerator, opts ...Option) (*Session, error) {
	if hw == nil {
		return nil, ErrHardwareNil
	}
	if tfg == nil {
		return nil, ErrFrameGeneratorNil
	}

	s := &Session{
		hw:           hw,
		tfg:          tfg,
		sink:         sink.Discard,
		logger:       logger.Default(),
		pollInterval: DefaultPollInterval,
		waitTimeout:  DefaultWaitTimeout,
	}
	for _, opt := range opts {
		if err := opt.apply(s); err != nil {
			return nil, err
		}
	}
	s.logger = logger.ForComponent(s.logger, "session")
	s.state.Set(ClosedState)

	return s, nil
}

// State returns the current session state.
func (s *Session) State() State { return s.state.Get() }

// Configuration returns the active detector configuration, or nil before Configure.
func (s *Session) Configuration() *detector.Configuration { return s.cfg }

// Cursor returns the index of the next frame Readout will read.
func (s *Session) Cursor() int { return s.cursor }

// Metrics returns the session metrics.
func (s *Session) Metrics() *Metrics { return &s.metrics }

// Open acquires the hardware handles.
func (s *Session) Open(ctx context.Context) error {
	if cur := s.state.Get(); cur != ClosedState {
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, cur)
	}
	if err := s.hw.Open(ctx); err != nil {
		return err
	}
	s.state.Set(OpenState)
	s.logger.Info("session opened")

	return nil
}

// Configure pushes cfg to the hardware and arms the detector.
//
// Every element window is programmed; region tables are programmed in RegionsOfInterest mode.
// The hardware grade count is verified for modes that read spectra. Configure is rejected while
// counting.
func (s *Session) Configure(ctx context.Context, cfg *detector.Configuration) error {
	if cfg == nil {
		return ErrConfigNil
	}
	if cur := s.state.Get(); cur != OpenState && cur != ArmedState {
		return fmt.Errorf("%w: configure from %s", ErrInvalidTransition, cur)
	}

	for _, el := range cfg.Elements() {
		if err := s.hw.SetWindow(ctx, el.ID, el.Window); err != nil {
			return err
		}
		if cfg.Mode() == detector.RegionsOfInterest {
			if err := s.hw.SetRegions(ctx, el.ID, el.Regions); err != nil {
				return err
			}
		}
	}

	if cfg.Mode() != detector.ScalerOnly {
		if err := s.hw.FormatRun(ctx, cfg.Grades(), cfg.ReadoutBins()); err != nil {
			return err
		}
		grades, err := s.hw.ResolutionGrades(ctx)
		if err != nil {
			return err
		}
		if grades != cfg.Grades() {
			return fmt.Errorf("%w: hardware %d, configured %d (%s)", ErrGradeMismatch, grades, cfg.Grades(), cfg.GradeMode())
		}
	}

	ctrl, err := readout.NewController(cfg, s.hw,
		readout.WithLogger(s.logger),
		readout.WithEnergy(s.energy),
		readout.WithMonitor(s.monitor),
	)
	if err != nil {
		return err
	}
	if err := s.hw.Enable(ctx); err != nil {
		return err
	}

	if s.ctrl != nil {
		s.degenerateBase += s.ctrl.Metrics().DegenerateFactors.Load()
	}
	s.cfg, s.ctrl = cfg, ctrl
	s.state.Set(ArmedState)
	s.logger.Info("detector configured",
		"elements", cfg.NumElements(), "mode", cfg.Mode().String(), "grade_mode", cfg.GradeMode().String())

	return nil
}

// AtScanStart stops, clears and starts hardware counting and resets the read cursor.
//
// The scan is single-shot when the frame generator has no configured frames or is still idle
// after counting started.
func (s *Session) AtScanStart(ctx context.Context) error {
	if cur := s.state.Get(); cur != ArmedState {
		return fmt.Errorf("%w: scan start from %s", ErrInvalidTransition, cur)
	}

	frames, err := s.tfg.Frames(ctx)
	if err != nil {
		return err
	}
	if err := s.restart(ctx); err != nil {
		return err
	}
	busy, err := s.tfg.Busy(ctx)
	if err != nil {
		return err
	}

	s.single = frames == 0 || !busy
	s.cursor = 0
	s.state.Set(CountingState)
	s.logger.Info("scan started", "frames", frames, "busy", busy, "single_shot", s.single)

	return nil
}

// AtScanLineStart resets the read cursor. With hardware frame sets it also restarts counting.
func (s *Session) AtScanLineStart(ctx context.Context) error {
	if cur := s.state.Get(); cur != CountingState {
		return fmt.Errorf("%w: scan line start from %s", ErrNotCounting, cur)
	}

	if s.hwFrameSets {
		if err := s.restart(ctx); err != nil {
			return err
		}
	}
	s.cursor = 0

	return nil
}

// AtScanEnd stops hardware counting and returns the session to the armed state.
func (s *Session) AtScanEnd(ctx context.Context) error {
	if cur := s.state.Get(); cur != CountingState {
		return fmt.Errorf("%w: scan end from %s", ErrNotCounting, cur)
	}
	if err := s.hw.Stop(ctx); err != nil {
		return err
	}
	s.state.Set(ArmedState)
	s.logger.Info("scan ended", "cursor", s.cursor)

	return nil
}

// Stop stops hardware counting. It is a no-op unless counting.
func (s *Session) Stop(ctx context.Context) error {
	if !s.state.Get().IsCounting() {
		return nil
	}

	return s.AtScanEnd(ctx)
}

// Close stops counting when active and releases the hardware handles.
func (s *Session) Close(ctx context.Context) error {
	cur := s.state.Get()
	if cur.IsClosed() {
		return nil
	}

	var errs []error
	if cur.IsCounting() {
		if err := s.hw.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if cur.IsConfigured() {
		if err := s.hw.Disable(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.hw.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	s.state.Set(ClosedState)
	s.logger.Info("session closed")

	return errors.Join(errs...)
}

// Readout reads the frame at the cursor, delivers it to the sink and advances the cursor.
//
// In a single-shot scan frame 0 is read and the cursor does not move. On failure the cursor is
// left unchanged so the same frame is read again by the next call.
func (s *Session) Readout(ctx context.Context) (readout.FrameRecord, error) {
	if cur := s.state.Get(); cur != CountingState {
		return readout.FrameRecord{}, fmt.Errorf("%w: readout in %s", ErrNotCounting, cur)
	}

	idx := s.cursor
	if s.single {
		idx = 0
	}

	records, err := s.read(ctx, idx, idx)
	if err != nil {
		return readout.FrameRecord{}, err
	}
	if !s.single {
		s.cursor++
	}

	return records[0], nil
}

// ReadoutRange reads the inclusive frame range [low, high] and delivers every record to the
// sink. The cursor is not changed.
func (s *Session) ReadoutRange(ctx context.Context, low, high int) ([]readout.FrameRecord, error) {
	if cur := s.state.Get(); !cur.IsConfigured() {
		return nil, fmt.Errorf("%w: range readout in %s", ErrNotConfigured, cur)
	}

	return s.read(ctx, low, high)
}

// PendingFrameCount returns the number of frames the hardware has completed.
//
// The raw counter advances twice per frame; an odd raw value is rounded down to the last
// completed frame.
func (s *Session) PendingFrameCount(ctx context.Context) (int, error) {
	if cur := s.state.Get(); cur.IsClosed() {
		return 0, fmt.Errorf("%w: pending frames in %s", ErrInvalidTransition, cur)
	}

	raw, err := s.tfg.RawFrameTicks(ctx)
	if err != nil {
		return 0, err
	}

	return framesFromTicks(raw), nil
}

// WaitForFrames blocks until at least n frames have completed, ctx is done, or the configured
// wait timeout elapses, in which case ErrTimeout is returned.
func (s *Session) WaitForFrames(ctx context.Context, n int) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	err := poll.Until(waitCtx, s.pollInterval, func(ctx context.Context) (bool, error) {
		done, err := s.PendingFrameCount(ctx)
		if err != nil {
			return false, err
		}

		return done >= n, nil
	})
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %d frames after %s", ErrTimeout, n, s.waitTimeout)
	}

	return err
}

func (s *Session) read(ctx context.Context, low, high int) ([]readout.FrameRecord, error) {
	records, err := s.ctrl.Read(ctx, low, high)
	s.metrics.DegenerateFactors.Store(s.degenerateBase + s.ctrl.Metrics().DegenerateFactors.Load())
	if err != nil {
		s.metrics.FramesFailed.Add(uint64(max(high-low+1, 1))) //nolint:gosec
		s.logger.Warn("frame read failed", "low", low, "high", high, "error", err)

		return nil, err
	}

	for i := range records {
		if err := s.sink.Accept(ctx, records[i]); err != nil {
			s.metrics.FramesFailed.Add(uint64(len(records) - i)) //nolint:gosec
			s.logger.Warn("frame delivery failed", "frame", records[i].Frame, "error", err)

			return nil, &readout.FrameError{Low: records[i].Frame, High: high, Err: err}
		}
		s.metrics.FramesRead.Add(1)
	}

	return records, nil
}

func (s *Session) restart(ctx context.Context) error {
	if err := s.hw.Stop(ctx); err != nil {
		return err
	}
	if err := s.hw.Clear(ctx); err != nil {
		return err
	}

	return s.hw.Start(ctx)
}

func framesFromTicks(raw int) int {
	if raw%2 == 1 {
		raw--
	}

	return raw / 2
}
