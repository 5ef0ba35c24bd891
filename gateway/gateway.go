package gateway

import (
	"context"
	"strconv"
)

// Reply is the optional integer answer to a text command.
type Reply struct {
	Value int64
	Valid bool
}

// None is the empty reply.
var None = Reply{}

// Int returns a valid reply carrying v.
func Int(v int64) Reply { return Reply{Value: v, Valid: true} }

func (r Reply) String() string {
	if !r.Valid {
		return "none"
	}

	return strconv.FormatInt(r.Value, 10)
}

// Gateway is the transport to the acquisition hardware.
//
// Implementations are used from a single goroutine at a time; callers serialise access.
type Gateway interface {
	// SendCommand sends a text command and returns its optional integer reply.
	SendCommand(ctx context.Context, cmd string) (Reply, error)
	// ReadBinary sends a read command and returns the block of words it produced.
	// expected is the number of words the caller requested.
	ReadBinary(ctx context.Context, cmd string, expected int) ([]int32, error)
}

// FrameGenerator is the hardware timing unit that sequences frames.
type FrameGenerator interface {
	// Frames returns the number of frames configured in the current frame set.
	// Zero means the detector is used in single-shot mode.
	Frames(ctx context.Context) (int, error)
	// Busy reports whether the frame generator is currently running.
	Busy(ctx context.Context) (bool, error)
	// RawFrameTicks returns the raw frame progress counter.
	RawFrameTicks(ctx context.Context) (int, error)
}
