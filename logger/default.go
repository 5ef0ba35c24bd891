package logger

import (
	"io"
	"sync/atomic"
)

var defLogger atomic.Pointer[Logger]

func init() {
	SetDefault(NewSlog(InfoLevel, false))
}

// Default returns the process default logger that components use when none is configured.
func Default() Logger {
	return *defLogger.Load()
}

// SetDefault replaces the process default logger. Components already constructed keep the
// logger they captured. A nil l is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defLogger.Store(&l)
}

// Discard returns a logger that drops every record.
func Discard() Logger {
	return NewSlogWriter(io.Discard, FatalLevel, false)
}
