package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
	"github.com/arloliu/go-xspress/gateway"
	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/readout"
	"github.com/arloliu/go-xspress/sink"
)

type rig struct {
	sim  *gateway.Simulator
	sink *sink.MemorySink
	s    *Session
}

func newRig(t *testing.T, grades int, opts ...Option) *rig {
	t.Helper()

	sim := gateway.NewSimulator("xsp1", 2, grades)

	return newRigOn(t, sim, gateway.NewTFG(sim), opts...)
}

func newRigOn(t *testing.T, sim *gateway.Simulator, tfg gateway.FrameGenerator, opts ...Option) *rig {
	t.Helper()

	client, err := gateway.NewClient(sim, gateway.WithClientLogger(logger.Discard()))
	require.NoError(t, err)

	mem := sink.NewMemorySink()
	opts = append([]Option{
		WithLogger(logger.Discard()),
		WithSink(mem),
		WithPollInterval(time.Millisecond),
	}, opts...)
	s, err := New(client, tfg, opts...)
	require.NoError(t, err)

	return &rig{sim: sim, sink: mem, s: s}
}

func scalerConfig(t *testing.T, opts ...detector.Option) *detector.Configuration {
	t.Helper()

	els := []detector.Element{
		{ID: 0, Window: detector.Window{Lo: 0, Hi: 3}},
		{ID: 1, Window: detector.Window{Lo: 1, Hi: 2}},
	}
	cfg, err := detector.NewConfiguration(els, append([]detector.Option{detector.WithSpectrumLength(4)}, opts...)...)
	require.NoError(t, err)

	return cfg
}

// loadFrames loads n frames whose windowed counts are 10·(f+1) on each element.
func (r *rig) loadFrames(n int) {
	for f := range n {
		w := frame.Counter(10 * (f + 1))
		r.sim.LoadScalers(f, []frame.ScalerQuad{
			{AllEvents: w + 5, Windowed: w, ClockTicks: 8_000_000},
			{AllEvents: w + 5, Windowed: w, ClockTicks: 8_000_000},
		})
	}
	r.sim.SetFrameCount(n)
}

func (r *rig) arm(t *testing.T, cfg *detector.Configuration) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, r.s.Open(ctx))
	require.NoError(t, r.s.Configure(ctx, cfg))
}

func TestNew(t *testing.T) {
	sim := gateway.NewSimulator("xsp1", 1, 1)

	_, err := New(nil, gateway.NewTFG(sim))
	require.ErrorIs(t, err, ErrHardwareNil)

	client, err := gateway.NewClient(sim)
	require.NoError(t, err)
	_, err = New(client, nil)
	require.ErrorIs(t, err, ErrFrameGeneratorNil)

	_, err = New(client, gateway.NewTFG(sim), WithPollInterval(0))
	require.Error(t, err)
	_, err = New(client, gateway.NewTFG(sim), WithWaitTimeout(-time.Second))
	require.Error(t, err)

	s, err := New(client, gateway.NewTFG(sim))
	require.NoError(t, err)
	assert.Equal(t, ClosedState, s.State())
	assert.Nil(t, s.Configuration())
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{ClosedState, "closed"},
		{OpenState, "open"},
		{ArmedState, "armed"},
		{CountingState, "counting"},
		{State(9), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	cfg := scalerConfig(t)

	require.ErrorIs(t, r.s.Configure(ctx, cfg), ErrInvalidTransition)
	require.ErrorIs(t, r.s.AtScanStart(ctx), ErrInvalidTransition)
	_, err := r.s.Readout(ctx)
	require.ErrorIs(t, err, ErrNotCounting)

	require.NoError(t, r.s.Open(ctx))
	assert.Equal(t, OpenState, r.s.State())
	require.ErrorIs(t, r.s.Open(ctx), ErrInvalidTransition)
	require.ErrorIs(t, r.s.Configure(ctx, nil), ErrConfigNil)

	require.NoError(t, r.s.Configure(ctx, cfg))
	assert.Equal(t, ArmedState, r.s.State())
	assert.Same(t, cfg, r.s.Configuration())
	w, ok := r.sim.Window(1)
	require.True(t, ok)
	assert.Equal(t, detector.Window{Lo: 1, Hi: 2}, w)
	assert.True(t, r.sim.Enabled())

	require.NoError(t, r.s.AtScanStart(ctx))
	assert.Equal(t, CountingState, r.s.State())
	assert.True(t, r.sim.Running())
	require.ErrorIs(t, r.s.Configure(ctx, cfg), ErrInvalidTransition)
	require.ErrorIs(t, r.s.AtScanStart(ctx), ErrInvalidTransition)

	require.NoError(t, r.s.AtScanEnd(ctx))
	assert.Equal(t, ArmedState, r.s.State())
	assert.False(t, r.sim.Running())
	require.ErrorIs(t, r.s.AtScanEnd(ctx), ErrNotCounting)
	require.NoError(t, r.s.Stop(ctx))

	require.NoError(t, r.s.Close(ctx))
	assert.Equal(t, ClosedState, r.s.State())
	assert.Equal(t, 0, r.sim.OpenHandles())
	assert.False(t, r.sim.Enabled())
	require.NoError(t, r.s.Close(ctx))
}

func TestSession_CloseWhileCounting(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	require.NoError(t, r.s.Close(ctx))
	assert.False(t, r.sim.Running())
	assert.Equal(t, 0, r.sim.OpenHandles())
}

func TestSession_Readout(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(3)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	for f := range 3 {
		rec, err := r.s.Readout(ctx)
		require.NoError(t, err)
		assert.Equal(t, f, rec.Frame)
		assert.InDelta(t, float64(20*(f+1)), rec.FF, 1e-9)
		assert.Equal(t, readout.Units, rec.Units)
		assert.Equal(t, f+1, r.s.Cursor())
	}

	assert.Equal(t, 3, r.sink.Len())
	assert.Equal(t, uint64(3), r.s.Metrics().FramesRead.Load())
	assert.Equal(t, uint64(0), r.s.Metrics().DegenerateFactors.Load())

	require.NoError(t, r.s.AtScanLineStart(ctx))
	assert.Equal(t, 0, r.s.Cursor())
}

func TestSession_SingleShot(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(1)
	r.sim.SetFrameCount(0)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	for range 2 {
		rec, err := r.s.Readout(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Frame)
		assert.Equal(t, 0, r.s.Cursor())
	}
}

// idleTFG reports an idle frame generator regardless of the hardware state.
type idleTFG struct {
	gateway.FrameGenerator
}

func (idleTFG) Busy(context.Context) (bool, error) { return false, nil }

func TestSession_SingleShotWhenIdle(t *testing.T) {
	ctx := context.Background()
	sim := gateway.NewSimulator("xsp1", 2, 1)
	r := newRigOn(t, sim, idleTFG{gateway.NewTFG(sim)})
	r.loadFrames(3)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	for range 2 {
		rec, err := r.s.Readout(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Frame)
		assert.Equal(t, 0, r.s.Cursor())
	}
}

func TestSession_MultiFrameWhenBusy(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(3)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))
	require.True(t, r.sim.Running())

	for i := range 2 {
		rec, err := r.s.Readout(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Frame)
		assert.Equal(t, i+1, r.s.Cursor())
	}
}

func TestSession_ScanStartBusyFailure(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(1)
	r.arm(t, scalerConfig(t))

	r.sim.FailNext("tfg-status", errors.New("link down"))
	err := r.s.AtScanStart(ctx)
	require.ErrorIs(t, err, gateway.ErrTransport)
	assert.Equal(t, ArmedState, r.s.State())

	require.NoError(t, r.s.AtScanStart(ctx))
	assert.Equal(t, CountingState, r.s.State())
}

func TestSession_SparseElementIDs(t *testing.T) {
	ctx := context.Background()
	sim := gateway.NewSimulator("xsp1", 3, 1)
	r := newRigOn(t, sim, gateway.NewTFG(sim))
	sim.LoadScalers(0, []frame.ScalerQuad{
		{AllEvents: 1, Windowed: 1, ClockTicks: 8_000_000},
		{AllEvents: 111, Windowed: 111, ClockTicks: 8_000_000},
		{AllEvents: 222, Windowed: 222, ClockTicks: 8_000_000},
	})
	sim.SetFrameCount(1)

	cfg, err := detector.NewConfiguration([]detector.Element{
		{ID: 0, Window: detector.Window{Lo: 0, Hi: 3}},
		{ID: 2, Window: detector.Window{Lo: 1, Hi: 2}},
	}, detector.WithSpectrumLength(4))
	require.NoError(t, err)
	r.arm(t, cfg)

	w, ok := sim.Window(2)
	require.True(t, ok)
	assert.Equal(t, detector.Window{Lo: 1, Hi: 2}, w)
	_, ok = sim.Window(1)
	assert.False(t, ok)

	require.NoError(t, r.s.AtScanStart(ctx))
	rec, err := r.s.Readout(ctx)
	require.NoError(t, err)
	require.Len(t, rec.ElementCounts, 2)
	assert.InDelta(t, 1.0, rec.ElementCounts[0], 1e-9)
	assert.InDelta(t, 222.0, rec.ElementCounts[1], 1e-9)
	assert.Equal(t, []frame.Counter{1, 0, 1, 8_000_000, 222, 0, 222, 8_000_000}, rec.RawScalers)
}

func TestSession_ReadoutFailureKeepsCursor(t *testing.T) {
	ctx := context.Background()
	logs := logger.NewRecorder(logger.InfoLevel)
	r := newRig(t, 1, WithLogger(logs))
	r.loadFrames(2)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	r.sim.FailNext("read", errors.New("link down"))
	_, err := r.s.Readout(ctx)
	require.ErrorIs(t, err, gateway.ErrTransport)

	var fe *readout.FrameError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, fe.Low)
	assert.Equal(t, 0, r.s.Cursor())
	assert.Equal(t, uint64(1), r.s.Metrics().FramesFailed.Load())
	assert.Equal(t, CountingState, r.s.State())

	warns := logs.Find("frame read failed")
	require.Len(t, warns, 1)
	assert.Equal(t, logger.WarnLevel, warns[0].Level)
	assert.Equal(t, "session", warns[0].Attrs[logger.ComponentKey])
	assert.Equal(t, 0, warns[0].Attrs["low"])

	rec, err := r.s.Readout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Frame)
	assert.Equal(t, 1, r.s.Cursor())
}

func TestSession_SinkFailureKeepsCursor(t *testing.T) {
	ctx := context.Background()
	errFull := errors.New("sink full")
	calls := 0
	failOnce := sink.Func(func(context.Context, readout.FrameRecord) error {
		calls++
		if calls == 1 {
			return errFull
		}
		return nil
	})

	r := newRig(t, 1, WithSink(failOnce))
	r.loadFrames(1)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	_, err := r.s.Readout(ctx)
	require.ErrorIs(t, err, errFull)
	assert.Equal(t, 0, r.s.Cursor())

	_, err = r.s.Readout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, r.s.Cursor())
}

func TestSession_ReadoutRange(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(4)

	require.NoError(t, r.s.Open(ctx))
	_, err := r.s.ReadoutRange(ctx, 0, 1)
	require.ErrorIs(t, err, ErrNotConfigured)

	require.NoError(t, r.s.Configure(ctx, scalerConfig(t)))
	require.NoError(t, r.s.AtScanStart(ctx))

	records, err := r.s.ReadoutRange(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 1, records[0].Frame)
	assert.Equal(t, 3, records[2].Frame)
	assert.Equal(t, 0, r.s.Cursor())
	assert.Equal(t, 3, r.sink.Len())

	_, err = r.s.ReadoutRange(ctx, 3, 1)
	require.ErrorIs(t, err, readout.ErrInvalidRange)

	require.NoError(t, r.s.AtScanEnd(ctx))
	records, err = r.s.ReadoutRange(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSession_DegenerateFactors(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.sim.SetFrameCount(5)
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	rec, err := r.s.Readout(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, rec.Factors)
	assert.Equal(t, uint64(2), r.s.Metrics().DegenerateFactors.Load())
}

func TestFramesFromTicks(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{raw: 0, want: 0},
		{raw: 1, want: 0},
		{raw: 2, want: 1},
		{raw: 7, want: 3},
		{raw: 8, want: 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, framesFromTicks(tt.raw), "raw %d", tt.raw)
	}
}

func TestSession_PendingFrameCount(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)

	_, err := r.s.PendingFrameCount(ctx)
	require.ErrorIs(t, err, ErrInvalidTransition)

	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	r.sim.SetRawTicks(7)
	n, err := r.s.PendingFrameCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	r.sim.SetRawTicks(8)
	n, err = r.s.PendingFrameCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSession_WaitForFrames(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1, WithWaitTimeout(5*time.Second))
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	go func() {
		for range 3 {
			time.Sleep(5 * time.Millisecond)
			r.sim.CompleteFrames(1)
		}
	}()

	require.NoError(t, r.s.WaitForFrames(ctx, 3))
	n, err := r.s.PendingFrameCount(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 3)
}

func TestSession_WaitForFramesTimeout(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1, WithWaitTimeout(20*time.Millisecond))
	r.arm(t, scalerConfig(t))
	require.NoError(t, r.s.AtScanStart(ctx))

	err := r.s.WaitForFrames(ctx, 1)
	require.ErrorIs(t, err, ErrTimeout)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err = r.s.WaitForFrames(cctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrTimeout)
}

func TestSession_ScanLineStart(t *testing.T) {
	tests := []struct {
		name      string
		frameSets bool
		starts    int64
	}{
		{name: "software frame sets", frameSets: false, starts: 2},
		{name: "hardware frame sets", frameSets: true, starts: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := newRig(t, 1, WithHardwareFrameSets(tt.frameSets))
			r.loadFrames(2)
			r.arm(t, scalerConfig(t))

			require.ErrorIs(t, r.s.AtScanLineStart(ctx), ErrNotCounting)
			require.NoError(t, r.s.AtScanStart(ctx))
			_, err := r.s.Readout(ctx)
			require.NoError(t, err)

			require.NoError(t, r.s.AtScanLineStart(ctx))
			assert.Equal(t, 0, r.s.Cursor())
			assert.Equal(t, tt.starts, r.sim.Commands("start"))
		})
	}
}

func TestSession_ConfigureRegions(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 2)

	regions := []detector.Region{
		{Kind: detector.VirtualScalar, Start: 2, End: 4, Name: "peak"},
		{Kind: detector.PartialSpectrum, Start: 6, End: 7, Name: "tail"},
	}
	els := []detector.Element{
		{ID: 0, Window: detector.Window{Lo: 0, Hi: 9}, Regions: regions},
		{ID: 1, Window: detector.Window{Lo: 0, Hi: 9}, Regions: regions},
	}
	cfg, err := detector.NewConfiguration(els,
		detector.WithSpectrumLength(10),
		detector.WithMode(detector.RegionsOfInterest),
		detector.WithGradeMode(detector.GradeThreshold),
	)
	require.NoError(t, err)

	r.arm(t, cfg)
	assert.Len(t, r.sim.Regions(1), 2)
	grades, bins := r.sim.RunFormat()
	assert.Equal(t, 2, grades)
	assert.Equal(t, cfg.ROILength(), bins)

	require.NoError(t, r.s.AtScanStart(ctx))
	rec, err := r.s.Readout(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"peak", "tail", detector.OutRegionName}, rec.RegionNames)
}

func TestSession_GradeMismatch(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)

	cfg := scalerConfig(t, detector.WithMode(detector.FullSpectrum), detector.WithGradeMode(detector.GradeThreshold))
	require.NoError(t, r.s.Open(ctx))

	err := r.s.Configure(ctx, cfg)
	require.ErrorIs(t, err, ErrGradeMismatch)
	assert.Equal(t, OpenState, r.s.State())
}

func TestSession_FullSpectrum(t *testing.T) {
	ctx := context.Background()
	r := newRig(t, 1)
	r.loadFrames(1)
	r.sim.LoadSpectrum(0, [][][]frame.Counter{
		{{1, 2, 3, 4}},
		{{5, 6, 7, 8}},
	})

	cfg := scalerConfig(t, detector.WithMode(detector.FullSpectrum), detector.WithSummedSpectrum(true))
	r.arm(t, cfg)
	require.NoError(t, r.s.AtScanStart(ctx))

	rec, err := r.s.Readout(ctx)
	require.NoError(t, err)
	require.Len(t, rec.Spectra, 2)
	require.NotNil(t, rec.Summed)
	assert.InDeltaSlice(t, []float64{6, 8, 10, 12}, rec.Summed.Data, 1e-9)
}
