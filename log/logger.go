package log

import (
	"bytes"
	"math"
	"sync"
	"time"

	"go.jacobcolvin.com/tproll/marker"
)

// Logger renders log calls for one named source and delivers them to the
// [Sink] of its [Core].
//
// Calls at a disabled level return before taking any lock. Enabled calls are
// serialized per Logger: the arguments are buffered, rendered and delivered
// as a whole, so concurrent calls never interleave. Loggers do not contend
// with each other.
//
// Each level has three entry points. The plain form (e.g. [Logger.Info])
// takes a template and arguments as described in [Render]; the Marker form
// additionally tags the record; the Text form logs msg literally without
// scanning it for placeholders:
//
//	logger.Info("loaded {} entries from {}", n, path)
//	logger.WarnMarker(audit, "user {} denied", user)
//	logger.ErrorText("unreachable")
//
// Create instances with [New] or [Core.Logger].
type Logger struct {
	core    *Core
	name    string
	pending []any
	buf     bytes.Buffer
	rec     Record
	mu      sync.Mutex
}

// New creates a [Logger] named name that uses the [Default] core.
func New(name string) *Logger {
	return defaultCore.Logger(name)
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// Core returns the [Core] the logger uses.
func (l *Logger) Core() *Core {
	return l.core
}

// Enabled reports whether calls at level are rendered.
func (l *Logger) Enabled(level Level) bool {
	return l.core.Enabled(level)
}

// Emit logs at level, tagged with m (which may be nil).
func (l *Logger) Emit(level Level, m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(level) {
		l.log(l.name, unstamped, level, m, template, args, nil, false)
	}
}

// LogRecord logs a call that originates elsewhere, such as another logging
// API, under the given logger name. A zero when uses the [TimeSource] of the
// core. A non-nil err is passed as a final argument, so it becomes the
// extracted error.
func (l *Logger) LogRecord(
	name string, when time.Time, level Level, m *marker.Marker, template string, args []any, err error,
) {
	if !l.core.Enabled(level) {
		return
	}

	millis := int64(unstamped)
	if !when.IsZero() {
		millis = when.UnixMilli()
	}

	l.log(name, millis, level, m, template, args, err, false)
}

// unstamped asks log to read the time source.
const unstamped = math.MinInt64

func (l *Logger) log(
	name string, millis int64, level Level, m *marker.Marker,
	template string, args []any, err error, literal bool,
) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.reset()

	st := l.core.state.Load()

	l.pending = append(l.pending, args...)
	if err != nil {
		l.pending = append(l.pending, err)
	}

	if millis == unstamped {
		millis = st.clock.NowMillis()
	}

	var thrown error
	if literal {
		l.buf.WriteString(template)
	} else {
		thrown = render(&l.buf, st.printer, template, l.pending)
	}

	l.rec = Record{
		Logger:  name,
		Time:    millis,
		Level:   level,
		Marker:  m,
		Message: l.buf.Bytes(),
		Err:     thrown,
	}

	st.sink.Deliver(&l.rec)
}

// reset clears the scratch state for the next call. References are cleared
// so buffered arguments can be collected.
func (l *Logger) reset() {
	clear(l.pending)
	l.pending = l.pending[:0]
	l.buf.Reset()
	l.rec = Record{}
}

// Trace logs at [LevelTrace].
func (l *Logger) Trace(template string, args ...any) {
	if l.core.Enabled(LevelTrace) {
		l.log(l.name, unstamped, LevelTrace, nil, template, args, nil, false)
	}
}

// TraceMarker logs at [LevelTrace], tagged with m.
func (l *Logger) TraceMarker(m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(LevelTrace) {
		l.log(l.name, unstamped, LevelTrace, m, template, args, nil, false)
	}
}

// TraceText logs msg literally at [LevelTrace].
func (l *Logger) TraceText(msg string) {
	if l.core.Enabled(LevelTrace) {
		l.log(l.name, unstamped, LevelTrace, nil, msg, nil, nil, true)
	}
}

// Debug logs at [LevelDebug].
func (l *Logger) Debug(template string, args ...any) {
	if l.core.Enabled(LevelDebug) {
		l.log(l.name, unstamped, LevelDebug, nil, template, args, nil, false)
	}
}

// DebugMarker logs at [LevelDebug], tagged with m.
func (l *Logger) DebugMarker(m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(LevelDebug) {
		l.log(l.name, unstamped, LevelDebug, m, template, args, nil, false)
	}
}

// DebugText logs msg literally at [LevelDebug].
func (l *Logger) DebugText(msg string) {
	if l.core.Enabled(LevelDebug) {
		l.log(l.name, unstamped, LevelDebug, nil, msg, nil, nil, true)
	}
}

// Info logs at [LevelInfo].
func (l *Logger) Info(template string, args ...any) {
	if l.core.Enabled(LevelInfo) {
		l.log(l.name, unstamped, LevelInfo, nil, template, args, nil, false)
	}
}

// InfoMarker logs at [LevelInfo], tagged with m.
func (l *Logger) InfoMarker(m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(LevelInfo) {
		l.log(l.name, unstamped, LevelInfo, m, template, args, nil, false)
	}
}

// InfoText logs msg literally at [LevelInfo].
func (l *Logger) InfoText(msg string) {
	if l.core.Enabled(LevelInfo) {
		l.log(l.name, unstamped, LevelInfo, nil, msg, nil, nil, true)
	}
}

// Warn logs at [LevelWarn].
func (l *Logger) Warn(template string, args ...any) {
	if l.core.Enabled(LevelWarn) {
		l.log(l.name, unstamped, LevelWarn, nil, template, args, nil, false)
	}
}

// WarnMarker logs at [LevelWarn], tagged with m.
func (l *Logger) WarnMarker(m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(LevelWarn) {
		l.log(l.name, unstamped, LevelWarn, m, template, args, nil, false)
	}
}

// WarnText logs msg literally at [LevelWarn].
func (l *Logger) WarnText(msg string) {
	if l.core.Enabled(LevelWarn) {
		l.log(l.name, unstamped, LevelWarn, nil, msg, nil, nil, true)
	}
}

// Error logs at [LevelError].
func (l *Logger) Error(template string, args ...any) {
	if l.core.Enabled(LevelError) {
		l.log(l.name, unstamped, LevelError, nil, template, args, nil, false)
	}
}

// ErrorMarker logs at [LevelError], tagged with m.
func (l *Logger) ErrorMarker(m *marker.Marker, template string, args ...any) {
	if l.core.Enabled(LevelError) {
		l.log(l.name, unstamped, LevelError, m, template, args, nil, false)
	}
}

// ErrorText logs msg literally at [LevelError].
func (l *Logger) ErrorText(msg string) {
	if l.core.Enabled(LevelError) {
		l.log(l.name, unstamped, LevelError, nil, msg, nil, nil, true)
	}
}

// Log logs at [LevelLog], which is never disabled.
func (l *Logger) Log(template string, args ...any) {
	l.log(l.name, unstamped, LevelLog, nil, template, args, nil, false)
}

// LogMarker logs at [LevelLog], tagged with m.
func (l *Logger) LogMarker(m *marker.Marker, template string, args ...any) {
	l.log(l.name, unstamped, LevelLog, m, template, args, nil, false)
}

// LogText logs msg literally at [LevelLog].
func (l *Logger) LogText(msg string) {
	l.log(l.name, unstamped, LevelLog, nil, msg, nil, nil, true)
}
