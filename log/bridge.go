package log

import (
	"context"
	"log/slog"

	"go.jacobcolvin.com/tproll/marker"
	"go.jacobcolvin.com/tproll/prettyprint"
)

// SlogMarker tags records that arrive through [NewSlogHandler].
var SlogMarker = marker.New("slog")

// Attr is a key/value argument. It renders as "key=value" in the trailing
// argument list of a message.
type Attr struct {
	Value any
	Key   string
}

// String implements [fmt.Stringer].
func (a Attr) String() string {
	return a.Key + "=" + prettyprint.Default().Sprint(a.Value)
}

// SlogHandler is a [slog.Handler] that routes slog records into a [Logger].
//
// The slog message is logged literally. Attributes become trailing
// arguments rendered as "key=value", with group names joined by dots. An
// attribute holding an error becomes the extracted error instead. Records
// are tagged with [SlogMarker].
//
// Create instances with [NewSlogHandler].
type SlogHandler struct {
	l      *Logger
	prefix string
	attrs  []any
}

// NewSlogHandler creates a [SlogHandler] logging through l.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{l: l}
}

// Enabled implements [slog.Handler].
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.l.Enabled(LevelFromSlog(level))
}

// Handle implements [slog.Handler].
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	level := LevelFromSlog(r.Level)
	if !h.l.Enabled(level) {
		return nil
	}

	args := make([]any, 0, len(h.attrs)+r.NumAttrs())
	args = append(args, h.attrs...)

	var thrown error

	r.Attrs(func(a slog.Attr) bool {
		args = appendSlogAttr(args, &thrown, h.prefix, a)
		return true
	})

	h.l.LogRecord(h.l.name, r.Time, level, SlogMarker, EscapeTemplate(r.Message), args, thrown)

	return nil
}

// WithAttrs implements [slog.Handler]. Errors in attrs are rendered as text
// rather than extracted.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h2 := *h
	h2.attrs = append([]any(nil), h.attrs...)

	for _, a := range attrs {
		h2.attrs = appendSlogAttr(h2.attrs, nil, h.prefix, a)
	}

	return &h2
}

// WithGroup implements [slog.Handler].
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.prefix = h.prefix + name + "."

	return &h2
}

// appendSlogAttr appends a as [Attr] arguments, flattening groups. When
// thrown is non-nil, error values are stored there instead of appended.
func appendSlogAttr(args []any, thrown *error, prefix string, a slog.Attr) []any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return args
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := prefix
		if a.Key != "" {
			group = prefix + a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			args = appendSlogAttr(args, thrown, group, ga)
		}

		return args

	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && thrown != nil {
			*thrown = err
			return args
		}

	default:
	}

	return append(args, Attr{Key: prefix + a.Key, Value: a.Value.Any()})
}
