// Package logger is the structured logging facade of go-xspress.
//
// Every long-lived component derives a child logger tagged with ComponentKey at construction
// time, so a record can always be traced back to the gateway client, the readout controller or
// the scan session that produced it. Components take the process default unless a logger is
// passed through their options; applications install theirs with SetDefault before building
// the pipeline.
//
// Levels follow the cost of the event on the readout path:
//
//   - DebugLevel: per-command and per-frame detail, e.g. gateway commands and substituted dead-time factors.
//   - InfoLevel: session lifecycle (open, configure, scan start and end, close).
//   - WarnLevel: a frame read or delivery failed and will be retried by the next Readout.
//   - ErrorLevel: the gateway rejected a command.
//   - FatalLevel: reserved for programs; library code never logs at this level.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// ComponentKey is the attribute naming the component that emitted a record.
const ComponentKey = "component"

// Logger is the logging interface accepted by every go-xspress component.
//
// Arguments after msg are alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs at FatalLevel and calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
	// With returns a child logger carrying the given attributes. The child shares the parent's level.
	With(keyValues ...any) Logger
	Level() Level
	SetLevel(level Level)
}

// ForComponent tags l with the component name and any extra attributes.
func ForComponent(l Logger, name string, keyValues ...any) Logger {
	return l.With(append([]any{ComponentKey, name}, keyValues...)...)
}
