package log

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"
)

const (
	writerTimeLayout = "15:04:05.000"

	ansiReset = "\x1b[0m"
)

var levelColors = [...]string{
	LevelTrace: "\x1b[90m",
	LevelDebug: "\x1b[36m",
	LevelInfo:  "\x1b[32m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
	LevelLog:   "\x1b[35m",
}

// stackTracer is implemented by errors created with github.com/pkg/errors.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// WriterSink is a [Sink] that writes one line per record to an [io.Writer]:
//
//	15:04:05.000 INFO  [name] {marker}: message
//
// An extracted error follows on its own line, with its stack trace when it
// carries one from [github.com/pkg/errors]. Writes are serialized, so a
// WriterSink may be shared by many loggers.
//
// Create instances with [NewWriterSink].
type WriterSink struct {
	w        io.Writer
	location *time.Location
	buf      []byte
	mu       sync.Mutex
	color    bool
}

// WriterOption configures a [WriterSink].
type WriterOption func(*WriterSink)

// WithColor forces ANSI colouring of level names on or off. By default
// colour is used when the writer is a terminal.
func WithColor(color bool) WriterOption {
	return func(s *WriterSink) {
		s.color = color
	}
}

// WithLocation sets the time zone timestamps are shown in. The default is
// [time.Local].
func WithLocation(loc *time.Location) WriterOption {
	return func(s *WriterSink) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewWriterSink creates a [WriterSink] writing to w.
func NewWriterSink(w io.Writer, opts ...WriterOption) *WriterSink {
	s := &WriterSink{
		w:        w,
		location: time.Local,
		color:    isTerminal(w),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // File descriptors fit in int.
}

// Deliver implements [Sink]. Write errors are dropped.
func (s *WriterSink) Deliver(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buf[:0]
	b = time.UnixMilli(r.Time).In(s.location).AppendFormat(b, writerTimeLayout)
	b = append(b, ' ')
	b = s.appendLevel(b, r.Level)
	b = append(b, " ["...)
	b = append(b, r.Logger...)
	b = append(b, ']')

	if r.Marker != nil {
		b = append(b, " {"...)
		b = append(b, r.Marker.String()...)
		b = append(b, '}')
	}

	b = append(b, ": "...)
	b = append(b, r.Message...)
	b = append(b, '\n')

	if r.Err != nil {
		b = appendError(b, r.Err)
	}

	s.buf = b

	//nolint:errcheck // A sink has nowhere to report its own write errors.
	s.w.Write(b)
}

func (s *WriterSink) appendLevel(b []byte, level Level) []byte {
	name := level.String()

	if s.color && level >= LevelTrace && level <= LevelLog {
		b = append(b, levelColors[level]...)
		b = append(b, name...)
		b = append(b, ansiReset...)
	} else {
		b = append(b, name...)
	}

	for i := len(name); i < 5; i++ {
		b = append(b, ' ')
	}

	return b
}

func appendError(b []byte, err error) []byte {
	b = append(b, "  caused by: "...)
	b = append(b, err.Error()...)
	b = append(b, '\n')

	var st stackTracer
	if errors.As(err, &st) {
		for _, frame := range st.StackTrace() {
			b = fmt.Appendf(b, "\tat %n (%s:%d)\n", frame, frame, frame)
		}
	}

	return b
}
