package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity. Levels are ordered from [LevelTrace] to
// [LevelError]; [LevelLog] is outside the order and is always enabled.
type Level int8

const (
	// LevelTrace is the most verbose severity.
	LevelTrace Level = iota + 1
	// LevelDebug is for diagnostic messages.
	LevelDebug
	// LevelInfo is the default severity.
	LevelInfo
	// LevelWarn is for unexpected but recoverable situations.
	LevelWarn
	// LevelError is for failures.
	LevelError
	// LevelLog is always enabled. It is used for messages about logging
	// itself, such as level changes.
	LevelLog
)

// slog levels for the severities slog does not define.
const (
	slogLevelTrace = slog.LevelDebug - 4
	slogLevelLog   = slog.LevelError + 4
)

var levelNames = [...]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelLog:   "LOG",
}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if l >= LevelTrace && l <= LevelLog {
		return levelNames[l]
	}

	return fmt.Sprintf("LEVEL(%d)", int8(l))
}

// valid reports whether l is a level that can be set as a threshold.
func (l Level) valid() bool {
	return l >= LevelTrace && l <= LevelError
}

// SlogLevel returns the [slog.Level] equivalent of l.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slogLevelTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelLog:
		return slogLevelLog
	}

	return slog.LevelInfo
}

// LevelFromSlog maps a [slog.Level] onto the closest [Level] at or below it.
func LevelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelDebug:
		return LevelTrace
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	}

	return LevelError
}

// ParseLevel parses a log level string (case insensitive) and returns the
// corresponding [Level]. [LevelLog] cannot be parsed because it cannot be
// used as a threshold.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetAllLevelStrings returns the level names accepted by [ParseLevel], from
// most to least verbose.
func GetAllLevelStrings() []string {
	return []string{"trace", "debug", "info", "warn", "error"}
}
