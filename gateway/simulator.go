package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
)

type handleKind uint8

const (
	mcaHandle handleKind = iota + 1
	scalerHandle
)

// Simulator is an in-memory Gateway emulating the detector electronics and frame generator.
//
// Frame data is loaded with LoadScalers and LoadSpectrum; frames that were never loaded read as
// zeros. Frame progress is driven explicitly with CompleteFrames or SetRawTicks.
// It is safe for concurrent use.
type Simulator struct {
	system   string
	channels int
	grades   int

	mu         sync.Mutex
	nextHandle int64
	handles    map[int64]handleKind
	runGrades  int
	runBins    int
	windows    map[int]detector.Window
	regions    map[int][]detector.Region
	scalers    map[int][]frame.ScalerQuad
	spectra    map[int][][][]frame.Counter
	frameCount int
	ticks      int
	running    bool
	enabled    bool
	failNext   map[string]error
	shortRead  int

	histogram *xsync.MapOf[string, *xsync.Counter]
}

var _ Gateway = (*Simulator)(nil)

// NewSimulator creates a simulator for the named system with the given number of channels,
// producing the given number of resolution grades.
func NewSimulator(system string, channels, grades int) *Simulator {
	return &Simulator{
		system:     system,
		channels:   channels,
		grades:     grades,
		nextHandle: 1,
		handles:    make(map[int64]handleKind),
		runGrades:  grades,
		windows:    make(map[int]detector.Window),
		regions:    make(map[int][]detector.Region),
		scalers:    make(map[int][]frame.ScalerQuad),
		spectra:    make(map[int][][][]frame.Counter),
		failNext:   make(map[string]error),
		histogram:  xsync.NewMapOf[string, *xsync.Counter](),
	}
}

// LoadScalers stores the scaler quads of frame f, one per channel.
func (s *Simulator) LoadScalers(f int, quads []frame.ScalerQuad) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scalers[f] = append([]frame.ScalerQuad(nil), quads...)
}

// LoadSpectrum stores the graded spectra of frame f indexed [channel][grade][bin].
func (s *Simulator) LoadSpectrum(f int, data [][][]frame.Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spectra[f] = data
}

// SetFrameCount sets the number of frames configured in the frame generator.
func (s *Simulator) SetFrameCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frameCount = n
}

// CompleteFrames advances the raw frame counter by n whole frames.
func (s *Simulator) CompleteFrames(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks += 2 * n
}

// SetRawTicks sets the raw frame counter.
func (s *Simulator) SetRawTicks(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks = v
}

// FailNext makes the next command with the given verb fail with err.
func (s *Simulator) FailNext(verb string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failNext[verb] = err
}

// ShortenNextRead makes the next binary read return n fewer words than requested.
func (s *Simulator) ShortenNextRead(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shortRead = n
}

// Window returns the window programmed for element det.
func (s *Simulator) Window(det int) (detector.Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[det]

	return w, ok
}

// Regions returns the regions programmed for element det.
func (s *Simulator) Regions(det int) []detector.Region {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.regions[det]
}

// RunFormat returns the grades and bins of the last format-run command.
func (s *Simulator) RunFormat() (grades, bins int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runGrades, s.runBins
}

// Running reports whether hardware counting is started.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Enabled reports whether counting is enabled.
func (s *Simulator) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

// OpenHandles returns the number of open hardware handles.
func (s *Simulator) OpenHandles() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.handles)
}

// Commands returns how many commands with the given verb were received.
func (s *Simulator) Commands(verb string) int64 {
	c, ok := s.histogram.Load(verb)
	if !ok {
		return 0
	}

	return c.Value()
}

// SendCommand implements Gateway.
func (s *Simulator) SendCommand(ctx context.Context, cmd string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return None, err
	}

	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return None, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	verb := s.verb(fields)
	if err := s.consumeFailure(verb); err != nil {
		return None, err
	}

	switch verb {
	case "open-mca":
		return s.open(fields, mcaHandle)
	case "open-scalers":
		return s.open(fields, scalerHandle)
	case "close":
		return s.closeHandle(fields)
	case "set-window":
		return s.setWindow(fields)
	case "set-roi":
		return s.setROI(fields)
	case "format-run":
		return s.formatRun(fields)
	case "get-res-grades":
		if err := s.checkSystem(fields); err != nil {
			return None, err
		}
		return Int(int64(s.grades)), nil
	case "enable", "disable", "clear", "start", "stop":
		return s.counting(verb, fields)
	case "tfg-frames":
		return Int(int64(s.frameCount)), nil
	case "tfg-status":
		if s.running {
			return Int(1), nil
		}
		return Int(0), nil
	case "tfg-ticks":
		return Int(int64(s.ticks)), nil
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}

// ReadBinary implements Gateway.
func (s *Simulator) ReadBinary(ctx context.Context, cmd string, _ int) ([]int32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := strings.Fields(cmd)
	if len(fields) != 11 || fields[0] != "read" || fields[7] != "from" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.count("read")
	if err := s.consumeFailure("read"); err != nil {
		return nil, err
	}

	box, err := atoiAll(fields[1:7])
	if err != nil {
		return nil, err
	}
	h, err := strconv.ParseInt(fields[8], 10, 64)
	if err != nil {
		return nil, err
	}
	kind, ok := s.handles[h]
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %d", ErrCommandFailed, h)
	}

	x0, y0, t0, dx, dy, dt := box[0], box[1], box[2], box[3], box[4], box[5]
	out := make([]int32, 0, dx*dy*dt)
	for t := t0; t < t0+dt; t++ {
		for y := y0; y < y0+dy; y++ {
			for x := x0; x < x0+dx; x++ {
				out = append(out, s.word(kind, t, y, x))
			}
		}
	}

	if s.shortRead > 0 {
		n := min(s.shortRead, len(out))
		out = out[:len(out)-n]
		s.shortRead = 0
	}
	return out, nil
}

func (s *Simulator) word(kind handleKind, t, y, x int) int32 {
	if kind == scalerHandle {
		quads, ok := s.scalers[t]
		if !ok || y >= len(quads) || x >= frame.ScalersPerChannel {
			return 0
		}
		return quads[y].Slice()[x].Wire()
	}

	data, ok := s.spectra[t]
	if !ok || s.runGrades <= 0 {
		return 0
	}
	ch, g := y/s.runGrades, y%s.runGrades
	if ch >= len(data) || g >= len(data[ch]) || x >= len(data[ch][g]) {
		return 0
	}

	return data[ch][g][x].Wire()
}

// verb normalises the command name used for failure injection and the histogram.
func (s *Simulator) verb(fields []string) string {
	var v string
	switch {
	case fields[0] == "xspress2" && len(fields) > 1:
		v = fields[1]
	case fields[0] == "tfg":
		switch strings.Join(fields, " ") {
		case cmdTFGFrames:
			v = "tfg-frames"
		case cmdTFGStatus:
			v = "tfg-status"
		case cmdTFGTicks:
			v = "tfg-ticks"
		default:
			v = "tfg"
		}
	default:
		v = fields[0]
	}
	s.count(v)

	return v
}

func (s *Simulator) count(verb string) {
	c, _ := s.histogram.LoadOrCompute(verb, xsync.NewCounter)
	c.Inc()
}

func (s *Simulator) consumeFailure(verb string) error {
	err, ok := s.failNext[verb]
	if !ok {
		return nil
	}
	delete(s.failNext, verb)

	return err
}

func (s *Simulator) checkSystem(fields []string) error {
	if len(fields) < 3 || strings.Trim(fields[2], "'") != s.system {
		return fmt.Errorf("%w: unknown system in %q", ErrCommandFailed, strings.Join(fields, " "))
	}

	return nil
}

func (s *Simulator) open(fields []string, kind handleKind) (Reply, error) {
	if s.checkSystem(fields) != nil {
		return Int(-1), nil
	}
	h := s.nextHandle
	s.nextHandle++
	s.handles[h] = kind

	return Int(h), nil
}

func (s *Simulator) closeHandle(fields []string) (Reply, error) {
	if len(fields) != 2 {
		return None, fmt.Errorf("%w: close", ErrUnknownCommand)
	}
	h, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return None, err
	}
	if _, ok := s.handles[h]; !ok {
		return Int(-1), nil
	}
	delete(s.handles, h)

	return None, nil
}

func (s *Simulator) setWindow(fields []string) (Reply, error) {
	if err := s.checkSystem(fields); err != nil {
		return None, err
	}
	args, err := atoiAll(fields[3:])
	if err != nil || len(args) != 3 {
		return None, fmt.Errorf("%w: set-window", ErrUnknownCommand)
	}
	if args[0] < 0 || args[0] >= s.channels {
		return Int(-1), nil
	}
	s.windows[args[0]] = detector.Window{Lo: args[1], Hi: args[2]}

	return Int(0), nil
}

func (s *Simulator) setROI(fields []string) (Reply, error) {
	if err := s.checkSystem(fields); err != nil {
		return None, err
	}
	args, err := atoiAll(fields[3:])
	if err != nil || len(args) < 2 {
		return None, fmt.Errorf("%w: set-roi", ErrUnknownCommand)
	}
	det, n := args[0], args[1]
	if det < 0 || det >= s.channels || len(args) != 2+3*n {
		return Int(-1), nil
	}

	regions := make([]detector.Region, 0, n)
	for i := range n {
		kind := detector.VirtualScalar
		if args[2+3*i] == roiKindSpectrum {
			kind = detector.PartialSpectrum
		}
		regions = append(regions, detector.Region{Kind: kind, Start: args[3+3*i], End: args[4+3*i]})
	}
	s.regions[det] = regions

	return Int(0), nil
}

func (s *Simulator) formatRun(fields []string) (Reply, error) {
	if err := s.checkSystem(fields); err != nil {
		return None, err
	}
	args, err := atoiAll(fields[3:])
	if err != nil || len(args) != 2 {
		return None, fmt.Errorf("%w: format-run", ErrUnknownCommand)
	}
	if args[0] <= 0 || args[1] < 0 {
		return Int(-1), nil
	}
	s.runGrades, s.runBins = args[0], args[1]

	return Int(0), nil
}

func (s *Simulator) counting(verb string, fields []string) (Reply, error) {
	if len(fields) != 2 {
		return None, fmt.Errorf("%w: %s", ErrUnknownCommand, verb)
	}
	h, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return None, err
	}
	if _, ok := s.handles[h]; !ok {
		return Int(-1), nil
	}

	switch verb {
	case "enable":
		s.enabled = true
	case "disable":
		s.enabled = false
	case "clear":
		s.ticks = 0
	case "start":
		s.running = true
	case "stop":
		s.running = false
	}

	return Int(0), nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: bad argument %q", ErrUnknownCommand, f)
		}
		out[i] = v
	}

	return out, nil
}
