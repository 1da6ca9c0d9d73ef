// Package logrsink implements [logr.LogSink] on top of a [log.Logger], so
// libraries that accept a [logr.Logger] log through the same [log.Core] as
// the rest of the program.
//
// logr verbosity 0 maps to [log.LevelInfo], 1 to [log.LevelDebug], and
// anything higher to [log.LevelTrace]. Key/value pairs are appended to the
// message as "key=value" arguments.
package logrsink

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"go.jacobcolvin.com/tproll/log"
	"go.jacobcolvin.com/tproll/marker"
)

// Marker tags records that arrive through a [Sink].
var Marker = marker.New("logr")

const missingValue = "<no-value>"

// Sink is a [logr.LogSink] writing to a [log.Logger].
//
// Create instances with [New] or [NewSink].
type Sink struct {
	l      *log.Logger
	name   string
	values []any
}

// New returns a [logr.Logger] writing to l.
func New(l *log.Logger) logr.Logger {
	return logr.New(NewSink(l))
}

// NewSink creates a [Sink] writing to l under the name of l.
func NewSink(l *log.Logger) *Sink {
	return &Sink{l: l, name: l.Name()}
}

// Init implements [logr.LogSink].
func (s *Sink) Init(logr.RuntimeInfo) {}

// Enabled implements [logr.LogSink].
func (s *Sink) Enabled(level int) bool {
	return s.l.Enabled(Level(level))
}

// Info implements [logr.LogSink].
func (s *Sink) Info(level int, msg string, keysAndValues ...any) {
	s.log(Level(level), msg, keysAndValues, nil)
}

// Error implements [logr.LogSink].
func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	s.log(log.LevelError, msg, keysAndValues, err)
}

func (s *Sink) log(level log.Level, msg string, keysAndValues []any, err error) {
	if !s.l.Enabled(level) {
		return
	}

	args := make([]any, 0, (len(s.values)+len(keysAndValues)+1)/2)
	args = appendPairs(args, s.values)
	args = appendPairs(args, keysAndValues)

	s.l.LogRecord(s.name, time.Time{}, level, Marker, log.EscapeTemplate(msg), args, err)
}

// WithValues implements [logr.LogSink].
func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	s2 := *s
	s2.values = append(append([]any(nil), s.values...), keysAndValues...)

	return &s2
}

// WithName implements [logr.LogSink]. Names are joined with "/".
func (s *Sink) WithName(name string) logr.LogSink {
	s2 := *s
	if s.name == "" {
		s2.name = name
	} else {
		s2.name = s.name + "/" + name
	}

	return &s2
}

// Level maps a logr verbosity to a [log.Level].
func Level(v int) log.Level {
	switch {
	case v <= 0:
		return log.LevelInfo
	case v == 1:
		return log.LevelDebug
	}

	return log.LevelTrace
}

func appendPairs(args, kv []any) []any {
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}

		var value any = missingValue
		if i+1 < len(kv) {
			value = kv[i+1]
		}

		if m, ok := value.(logr.Marshaler); ok {
			value = m.MarshalLog()
		}

		args = append(args, log.Attr{Key: key, Value: value})
	}

	return args
}
