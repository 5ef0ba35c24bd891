package logger

import "sync"

// Entry is one record captured by a Recorder.
type Entry struct {
	Level Level
	Msg   string
	Attrs map[string]any
}

// Recorder is an in-memory Logger that keeps every record at or above its level. It lets tests
// assert on what a session or controller reported without parsing output.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	level   Level
}

var _ Logger = (*Recorder)(nil)

// NewRecorder creates a recorder that keeps records at level and above.
func NewRecorder(level Level) *Recorder {
	return &Recorder{level: level}
}

func (r *Recorder) Debug(msg string, keysAndValues ...any) { r.add(DebugLevel, msg, keysAndValues) }
func (r *Recorder) Info(msg string, keysAndValues ...any)  { r.add(InfoLevel, msg, keysAndValues) }
func (r *Recorder) Warn(msg string, keysAndValues ...any)  { r.add(WarnLevel, msg, keysAndValues) }
func (r *Recorder) Error(msg string, keysAndValues ...any) { r.add(ErrorLevel, msg, keysAndValues) }

// Fatal records the message without exiting.
func (r *Recorder) Fatal(msg string, keysAndValues ...any) { r.add(FatalLevel, msg, keysAndValues) }

// With returns a child recorder that appends to the same entry list.
func (r *Recorder) With(keyValues ...any) Logger {
	return &recorderChild{root: r, attrs: append([]any(nil), keyValues...)}
}

func (r *Recorder) Level() Level {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.level
}

func (r *Recorder) SetLevel(level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.level = level
}

// Entries returns a copy of the captured records in emission order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Entry(nil), r.entries...)
}

// Find returns the records with the given message.
func (r *Recorder) Find(msg string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Msg == msg {
			out = append(out, e)
		}
	}

	return out
}

func (r *Recorder) add(level Level, msg string, kv []any) {
	r.record(nil, level, msg, kv)
}

func (r *Recorder) record(base []any, level Level, msg string, kv []any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if level < r.level {
		return
	}
	attrs := make(map[string]any, (len(base)+len(kv))/2)
	for _, list := range [][]any{base, kv} {
		for i := 0; i+1 < len(list); i += 2 {
			if k, ok := list[i].(string); ok {
				attrs[k] = list[i+1]
			}
		}
	}
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Attrs: attrs})
}

type recorderChild struct {
	root  *Recorder
	attrs []any
}

func (c *recorderChild) Debug(msg string, kv ...any) { c.root.record(c.attrs, DebugLevel, msg, kv) }
func (c *recorderChild) Info(msg string, kv ...any)  { c.root.record(c.attrs, InfoLevel, msg, kv) }
func (c *recorderChild) Warn(msg string, kv ...any)  { c.root.record(c.attrs, WarnLevel, msg, kv) }
func (c *recorderChild) Error(msg string, kv ...any) { c.root.record(c.attrs, ErrorLevel, msg, kv) }
func (c *recorderChild) Fatal(msg string, kv ...any) { c.root.record(c.attrs, FatalLevel, msg, kv) }

func (c *recorderChild) With(keyValues ...any) Logger {
	attrs := make([]any, 0, len(c.attrs)+len(keyValues))
	attrs = append(attrs, c.attrs...)
	attrs = append(attrs, keyValues...)

	return &recorderChild{root: c.root, attrs: attrs}
}

func (c *recorderChild) Level() Level         { return c.root.Level() }
func (c *recorderChild) SetLevel(level Level) { c.root.SetLevel(level) }
