// Package sink delivers frame records produced by a readout session to their consumers.
package sink

import (
	"context"
	"errors"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-xspress/internal/queue"
	"github.com/arloliu/go-xspress/logger"
	"github.com/arloliu/go-xspress/readout"
)

// Sink consumes frame records. Accept is called once per record, in frame order.
type Sink interface {
	Accept(ctx context.Context, rec readout.FrameRecord) error
}

// Func adapts an ordinary function to the Sink interface.
type Func func(ctx context.Context, rec readout.FrameRecord) error

// Accept calls f(ctx, rec).
func (f Func) Accept(ctx context.Context, rec readout.FrameRecord) error {
	return f(ctx, rec)
}

// Discard is a sink that drops every record.
var Discard Sink = Func(func(context.Context, readout.FrameRecord) error { return nil })

// Multi returns a sink that delivers every record to each of sinks in turn.
// All sinks receive the record; their errors are joined.
func Multi(sinks ...Sink) Sink {
	return Func(func(ctx context.Context, rec readout.FrameRecord) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Accept(ctx, rec); err != nil {
				errs = append(errs, err)
			}
		}

		return errors.Join(errs...)
	})
}

// Log returns a sink that logs a one-line summary of every record at info level.
func Log(l logger.Logger) Sink {
	return Func(func(_ context.Context, rec readout.FrameRecord) error {
		l.Info("frame", "frame", rec.Frame, "mode", rec.Mode.String(), "ff", rec.FF, "units", rec.Units)
		return nil
	})
}

// MemorySink keeps records in memory, keyed by frame index and ordered by arrival.
//
// A record delivered twice for the same frame replaces the earlier one.
// MemorySink is safe for concurrent use.
type MemorySink struct {
	records *xsync.MapOf[int, readout.FrameRecord]
	order   queue.Queue[int]
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		records: xsync.NewMapOf[int, readout.FrameRecord](),
		order:   queue.NewLockFreeQueue[int](),
	}
}

// Accept implements Sink.
func (s *MemorySink) Accept(ctx context.Context, rec readout.FrameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, loaded := s.records.LoadAndStore(rec.Frame, rec); !loaded {
		s.order.Enqueue(rec.Frame)
	}

	return nil
}

// Get returns the record of the given frame.
func (s *MemorySink) Get(frame int) (readout.FrameRecord, bool) {
	return s.records.Load(frame)
}

// Len returns the number of frames held.
func (s *MemorySink) Len() int {
	return s.records.Size()
}

// Drain removes and returns every held record in arrival order.
func (s *MemorySink) Drain() []readout.FrameRecord {
	out := make([]readout.FrameRecord, 0, s.order.Length())
	for {
		f, ok := s.order.Dequeue()
		if !ok {
			return out
		}
		if rec, ok := s.records.LoadAndDelete(f); ok {
			out = append(out, rec)
		}
	}
}
