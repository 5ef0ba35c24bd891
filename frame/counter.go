package frame

import "strconv"

// Counter is an unsigned 32-bit hardware count.
type Counter uint32

// CounterFromWire reinterprets a signed 32-bit wire word as an unsigned count.
func CounterFromWire(w int32) Counter {
	return Counter(uint32(w)) //nolint:gosec
}

// Wire returns the signed 32-bit word carrying c on the wire.
func (c Counter) Wire() int32 {
	return int32(uint32(c)) //nolint:gosec
}

// Float returns c as a float64.
func (c Counter) Float() float64 { return float64(c) }

func (c Counter) String() string { return strconv.FormatUint(uint64(c), 10) }

// ScalersPerChannel is the number of hardware scalers reported per channel and frame.
const ScalersPerChannel = 4

// ScalerQuad holds the four raw hardware scalers of one element in one frame.
type ScalerQuad struct {
	AllEvents  Counter
	Resets     Counter
	Windowed   Counter
	ClockTicks Counter
}

// Slice returns the quad in wire order.
func (q ScalerQuad) Slice() []Counter {
	return []Counter{q.AllEvents, q.Resets, q.Windowed, q.ClockTicks}
}

func quadFrom(c []Counter) ScalerQuad {
	return ScalerQuad{
		AllEvents:  c[0],
		Resets:     c[1],
		Windowed:   c[2],
		ClockTicks: c[3],
	}
}
