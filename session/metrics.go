package session

import "sync/atomic"

// Metrics contains atomic counters of a session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type Metrics struct {
	// FramesRead indicates the number of frames read and delivered to the sink.
	FramesRead atomic.Uint64
	// FramesFailed indicates the number of frames whose read or delivery failed.
	FramesFailed atomic.Uint64
	// DegenerateFactors indicates the number of dead-time factors replaced by 1.0.
	DegenerateFactors atomic.Uint64
}
