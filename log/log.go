package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	charmlog "charm.land/log/v2"
)

// Format represents the log output format.
type Format string

const (
	// FormatSimple outputs one plain line per record through a [WriterSink].
	FormatSimple Format = "simple"
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs human-friendly styled text.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandlerFromStrings creates a [slog.Handler] by strings. The simple
// format has no handler and is rejected.
func NewHandlerFromStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	logLvl, err := ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := ParseFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	h := NewHandler(w, logLvl, logFmt)
	if h == nil {
		return nil, fmt.Errorf("%w: %w: no handler for %q", ErrInvalidArgument, ErrUnknownLogFormat, logFmt)
	}

	return h, nil
}

// NewHandler creates a [slog.Handler] with the specified level and format.
// It returns nil for [FormatSimple], which is not backed by slog.
//
// Level names include TRACE and LOG for records coming from a [SlogSink].
func NewHandler(w io.Writer, logLvl Level, logFmt Format) slog.Handler {
	switch logFmt {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       logLvl.SlogLevel(),
			ReplaceAttr: replaceLevelAttr,
		})

	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       logLvl.SlogLevel(),
			ReplaceAttr: replaceLevelAttr,
		})

	case FormatText:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(logLvl.SlogLevel()),
			ReportTimestamp: true,
		})

	case FormatSimple:
	}

	return nil
}

func replaceLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	switch lvl {
	case slogLevelTrace:
		a.Value = slog.StringValue(LevelTrace.String())
	case slogLevelLog:
		a.Value = slog.StringValue(LevelLog.String())
	}

	return a
}

// ParseFormat parses a log format string and returns the corresponding
// [Format].
func ParseFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatSimple, FormatJSON, FormatLogfmt, FormatText}, logFmt) {
		return logFmt, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// GetAllFormatStrings returns the format names accepted by [ParseFormat].
func GetAllFormatStrings() []string {
	return []string{
		string(FormatSimple),
		string(FormatJSON),
		string(FormatLogfmt),
		string(FormatText),
	}
}

// SlogSink is a [Sink] that hands records to a [slog.Handler]. The rendered
// message becomes the slog message; the logger name, marker and extracted
// error are added as "logger", "marker" and "error" attributes.
//
// Create instances with [NewSlogSink].
type SlogSink struct {
	h slog.Handler
}

// NewSlogSink creates a [SlogSink] delivering to h.
func NewSlogSink(h slog.Handler) *SlogSink {
	return &SlogSink{h: h}
}

// Deliver implements [Sink]. Handler errors are dropped.
func (s *SlogSink) Deliver(r *Record) {
	ctx := context.Background()

	lvl := r.Level.SlogLevel()
	if !s.h.Enabled(ctx, lvl) {
		return
	}

	rec := slog.NewRecord(r.Timestamp(), lvl, string(r.Message), 0)
	rec.AddAttrs(slog.String("logger", r.Logger))

	if r.Marker != nil {
		rec.AddAttrs(slog.String("marker", r.Marker.String()))
	}

	if r.Err != nil {
		rec.AddAttrs(slog.Any("error", r.Err))
	}

	//nolint:errcheck // A sink has nowhere to report handler errors.
	s.h.Handle(ctx, rec)
}

// NewSink creates the [Sink] for format: a [WriterSink] for [FormatSimple],
// otherwise a [SlogSink] over [NewHandler]. The handler level is set to
// [LevelTrace] since the [Core] level already filters calls.
func NewSink(w io.Writer, logFmt Format, opts ...WriterOption) (Sink, error) {
	if logFmt == FormatSimple {
		return NewWriterSink(w, opts...), nil
	}

	h := NewHandler(w, LevelTrace, logFmt)
	if h == nil {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidArgument, ErrUnknownLogFormat, logFmt)
	}

	return NewSlogSink(h), nil
}
