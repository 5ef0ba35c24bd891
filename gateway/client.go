package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/go-xspress/detector"
	"github.com/arloliu/go-xspress/frame"
	"github.com/arloliu/go-xspress/logger"
)

// Client is a checked client on top of a Gateway.
//
// Every command reply is checked, every binary read is length checked and decoded into frame
// blocks. A Client holds the two hardware handles (MCA and scalers) between Open and Close.
// It is safe for concurrent use; access to the gateway is serialised.
type Client struct {
	gw      Gateway
	system  string
	logger  logger.Logger
	metrics ClientMetrics

	mu      sync.Mutex
	open    bool
	mca     int64
	scalers int64
}

// NewClient creates a client for gw.
func NewClient(gw Gateway, opts ...ClientOption) (*Client, error) {
	if gw == nil {
		return nil, ErrGatewayNil
	}

	c := &Client{
		gw:     gw,
		system: DefaultSystemName,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}
	c.logger = logger.ForComponent(c.logger, "gateway", "system", c.system)

	return c, nil
}

// System returns the detector system name.
func (c *Client) System() string { return c.system }

// Metrics returns the client metrics.
func (c *Client) Metrics() *ClientMetrics { return &c.metrics }

// IsOpen reports whether the hardware handles are acquired.
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

// Open acquires the MCA and scaler handles.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return ErrAlreadyOpen
	}

	mca, err := c.value(ctx, cmdOpenMCA(c.system))
	if err != nil {
		return err
	}
	scalers, err := c.value(ctx, cmdOpenScalers(c.system))
	if err != nil {
		_, _ = c.send(ctx, cmdClose(mca))
		return err
	}

	c.mca, c.scalers, c.open = mca, scalers, true
	c.logger.Info("hardware handles opened", "mca", mca, "scalers", scalers)

	return nil
}

// Close releases the hardware handles. Closing a client that is not open is a no-op.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	c.open = false

	var errs []error
	for _, h := range []int64{c.mca, c.scalers} {
		if _, err := c.send(ctx, cmdClose(h)); err != nil {
			errs = append(errs, err)
		}
	}
	c.logger.Info("hardware handles closed")

	return errors.Join(errs...)
}

// SetWindow programs the good-event window of detector element det.
func (c *Client) SetWindow(ctx context.Context, det int, w detector.Window) error {
	return c.exec(ctx, cmdSetWindow(c.system, det, w))
}

// SetRegions programs the hardware regions of detector element det.
func (c *Client) SetRegions(ctx context.Context, det int, regions []detector.Region) error {
	return c.exec(ctx, cmdSetROI(c.system, det, regions))
}

// FormatRun formats the MCA memory for the given grade count and bins per grade.
func (c *Client) FormatRun(ctx context.Context, grades, bins int) error {
	return c.exec(ctx, cmdFormatRun(c.system, grades, bins))
}

// ResolutionGrades returns the number of resolution grades the hardware is producing.
func (c *Client) ResolutionGrades(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.value(ctx, cmdResGrades(c.system))
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

// Enable enables counting on both handles.
func (c *Client) Enable(ctx context.Context) error { return c.counting(ctx, "enable") }

// Disable disables counting on both handles.
func (c *Client) Disable(ctx context.Context) error { return c.counting(ctx, "disable") }

// Clear zeroes the hardware memories.
func (c *Client) Clear(ctx context.Context) error { return c.counting(ctx, "clear") }

// Start starts hardware counting.
func (c *Client) Start(ctx context.Context) error { return c.counting(ctx, "start") }

// Stop stops hardware counting.
func (c *Client) Stop(ctx context.Context) error { return c.counting(ctx, "stop") }

// ReadScalers reads the scalers of frames [first, first+frames) for every channel.
func (c *Client) ReadScalers(ctx context.Context, first, frames, channels int) (*frame.ScalerBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrNotOpen
	}

	cmd := cmdRead(c.scalers, 0, 0, first, frame.ScalersPerChannel, channels, frames)
	flat, err := c.read(ctx, cmd, frames*channels*frame.ScalersPerChannel)
	if err != nil {
		return nil, err
	}

	return frame.DecodeScalers(flat, first, frames, channels)
}

// ReadSpectra reads the graded spectra of frames [first, first+frames) for every channel.
func (c *Client) ReadSpectra(ctx context.Context, first, frames, channels, grades, bins int) (*frame.SpectrumBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrNotOpen
	}

	cmd := cmdRead(c.mca, 0, 0, first, bins, channels*grades, frames)
	flat, err := c.read(ctx, cmd, frames*channels*grades*bins)
	if err != nil {
		return nil, err
	}

	return frame.DecodeSpectra(flat, first, frames, channels, grades, bins)
}

func (c *Client) counting(ctx context.Context, verb string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrNotOpen
	}
	for _, h := range []int64{c.scalers, c.mca} {
		if _, err := c.checked(ctx, cmdCounting(verb, h)); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) exec(ctx context.Context, cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.checked(ctx, cmd)

	return err
}

// value sends cmd and requires a valid non-negative reply.
func (c *Client) value(ctx context.Context, cmd string) (int64, error) {
	r, err := c.checked(ctx, cmd)
	if err != nil {
		return 0, err
	}
	if !r.Valid {
		c.metrics.incErrCount()
		return 0, fmt.Errorf("%w: %q returned no value", ErrCommandFailed, cmd)
	}

	return r.Value, nil
}

// checked sends cmd and rejects negative replies.
func (c *Client) checked(ctx context.Context, cmd string) (Reply, error) {
	r, err := c.send(ctx, cmd)
	if err != nil {
		return None, err
	}
	if r.Valid && r.Value < 0 {
		c.metrics.incErrCount()
		c.logger.Error("gateway rejected command", "cmd", cmd, "reply", r.Value)

		return None, fmt.Errorf("%w: %q returned %d", ErrCommandFailed, cmd, r.Value)
	}

	return r, nil
}

func (c *Client) send(ctx context.Context, cmd string) (Reply, error) {
	c.metrics.incCommandCount()
	c.logger.Debug("send command", "cmd", cmd)

	r, err := c.gw.SendCommand(ctx, cmd)
	if err != nil {
		c.metrics.incErrCount()
		return None, fmt.Errorf("%w: %q: %w", ErrTransport, cmd, err)
	}

	return r, nil
}

func (c *Client) read(ctx context.Context, cmd string, expected int) ([]int32, error) {
	c.logger.Debug("read binary", "cmd", cmd, "words", expected)

	flat, err := c.gw.ReadBinary(ctx, cmd, expected)
	if err != nil {
		c.metrics.incErrCount()
		return nil, fmt.Errorf("%w: %q: %w", ErrTransport, cmd, err)
	}
	if len(flat) != expected {
		c.metrics.incErrCount()
		return nil, fmt.Errorf("%w: %q returned %d words, want %d", ErrShortRead, cmd, len(flat), expected)
	}
	c.metrics.incReadCount(len(flat))

	return flat, nil
}
