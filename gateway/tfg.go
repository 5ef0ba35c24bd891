package gateway

import (
	"context"
	"fmt"
)

// TFG is the FrameGenerator backed by the gateway's tfg commands.
type TFG struct {
	gw Gateway
}

var _ FrameGenerator = (*TFG)(nil)

// NewTFG creates a frame generator that talks through gw.
func NewTFG(gw Gateway) *TFG {
	return &TFG{gw: gw}
}

// Frames returns the number of frames configured in the current frame set.
func (t *TFG) Frames(ctx context.Context) (int, error) {
	return t.value(ctx, cmdTFGFrames)
}

// Busy reports whether the frame generator is running.
func (t *TFG) Busy(ctx context.Context) (bool, error) {
	v, err := t.value(ctx, cmdTFGStatus)
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// RawFrameTicks returns the raw frame progress counter. The counter advances twice per frame,
// once when the live period starts and once when it ends.
func (t *TFG) RawFrameTicks(ctx context.Context) (int, error) {
	return t.value(ctx, cmdTFGTicks)
}

func (t *TFG) value(ctx context.Context, cmd string) (int, error) {
	r, err := t.gw.SendCommand(ctx, cmd)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrTransport, cmd, err)
	}
	if !r.Valid || r.Value < 0 {
		return 0, fmt.Errorf("%w: %q returned %s", ErrCommandFailed, cmd, r)
	}

	return int(r.Value), nil
}
