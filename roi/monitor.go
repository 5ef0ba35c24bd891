package roi

// Monitor is an optional monitor-channel value used to normalise ALL-grade virtual scalars.
type Monitor struct {
	value float64
	ok    bool
}

// NoMonitor leaves readings unnormalised.
var NoMonitor = Monitor{}

// MonitorValue returns a supplied monitor value. Zero is treated as not supplied.
func MonitorValue(v float64) Monitor {
	return Monitor{value: v, ok: v != 0}
}

// Value returns the monitor value and whether it was supplied.
func (m Monitor) Value() (float64, bool) { return m.value, m.ok }
