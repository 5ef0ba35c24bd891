package gateway

import "sync/atomic"

// ClientMetrics contains atomic metrics for a gateway client.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// CommandCount indicates the number of text commands sent.
	CommandCount atomic.Uint64
	// ReadCount indicates the number of binary reads issued.
	ReadCount atomic.Uint64
	// WordsRead indicates the number of 32-bit words received by binary reads.
	WordsRead atomic.Uint64
	// ErrCount indicates the number of failed commands and reads.
	ErrCount atomic.Uint64
}

func (m *ClientMetrics) incCommandCount() {
	m.CommandCount.Add(1)
}

func (m *ClientMetrics) incReadCount(words int) {
	m.ReadCount.Add(1)
	m.WordsRead.Add(uint64(words)) //nolint:gosec
}

func (m *ClientMetrics) incErrCount() {
	m.ErrCount.Add(1)
}
